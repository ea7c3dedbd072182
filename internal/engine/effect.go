package engine

import (
	"fmt"
	"math/rand/v2"
)

// DraftEffect 抽选效果的执行上下文
// Hands 是所有玩家传牌之后的手牌，效果可以修改任意玩家
type DraftEffect struct {
	Drafter    int           // 抽到该卡的玩家
	NumPlayers int           // 玩家总数
	Direction  PassDirection // 本轮传牌方向
	Hands      []Cards       // 按玩家 id 索引的手牌
	Deck       *Deck         // 牌堆
	Rng        *rand.Rand    // 游戏唯一的随机源
}

// DraftHook 抽选效果函数
type DraftHook func(fx *DraftEffect) error

// Receiver 刚被抽过的那手牌传到了谁手里
func (fx *DraftEffect) Receiver() int {
	n := fx.NumPlayers
	switch fx.Direction {
	case PassRight:
		return (fx.Drafter + n - 1) % n
	default:
		return (fx.Drafter + 1) % n
	}
}

// reshuffleReceiverHand 神秘茶：把下家收到的手牌全部放回牌堆，再抽同样数量的新牌
func reshuffleReceiverHand(fx *DraftEffect) error {
	if fx.NumPlayers <= 0 || len(fx.Hands) != fx.NumPlayers {
		return fmt.Errorf("hands for %d players, expected %d", len(fx.Hands), fx.NumPlayers)
	}
	receiver := fx.Receiver()
	hand := fx.Hands[receiver]
	size := hand.Total()

	for _, k := range hand.Kinds() {
		for i := 0; i < hand[k]; i++ {
			fx.Deck.Extend(k)
		}
	}

	fresh := make(Cards, size)
	for i := 0; i < size; i++ {
		card, ok := fx.Deck.Draw(fx.Rng)
		if !ok {
			return fmt.Errorf("deck exhausted after %d of %d cards for player %d", i, size, receiver)
		}
		fresh[card]++
	}

	fx.Hands[receiver] = fresh
	return nil
}
