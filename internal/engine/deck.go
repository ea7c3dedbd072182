package engine

import "math/rand/v2"

// Deck 未抽取的牌池
// 按种类计数，而不是一张张的牌；抽牌按剩余数量加权，不放回
type Deck struct {
	cards   [kindCount]int
	total   int
	initial Cards // 自动重洗时恢复的初始分布，nil 表示从未设置
}

// NewDeck 创建空牌堆
func NewDeck() *Deck {
	return &Deck{}
}

// NewDeckWithCards 用给定分布创建牌堆，并把它记录为初始分布
func NewDeckWithCards(cards Cards) *Deck {
	d := NewDeck()
	d.SetInitialDistribution(cards)
	for _, k := range cards.Kinds() {
		d.Add(k, cards[k])
	}
	return d
}

// Add 增加某种卡牌
func (d *Deck) Add(kind CardKind, count int) {
	if !kind.Valid() || count <= 0 {
		return
	}
	d.cards[kind] += count
	d.total += count
}

// SetInitialDistribution 记录自动重洗时恢复的分布
// 与 Add 相互独立：效果可能已经改变了牌池，重洗时要回到最初的配比
func (d *Deck) SetInitialDistribution(distribution Cards) {
	d.initial = distribution.Clone()
}

// HasInitialDistribution 是否设置过初始分布
func (d *Deck) HasInitialDistribution() bool {
	return d.initial != nil
}

// reshuffle 恢复为初始分布（整副重置，不是回收弃牌）
func (d *Deck) reshuffle() {
	d.cards = [kindCount]int{}
	d.total = 0
	for k, n := range d.initial {
		if k.Valid() && n > 0 {
			d.cards[k] = n
			d.total += n
		}
	}
}

// Draw 抽一张牌
// 牌堆为空时，如果有初始分布则自动重洗，否则返回 false
func (d *Deck) Draw(rng *rand.Rand) (CardKind, bool) {
	if d.total == 0 {
		if !d.HasInitialDistribution() {
			return 0, false
		}
		d.reshuffle()
		if d.total == 0 {
			return 0, false
		}
	}

	pick := rng.IntN(d.total)
	for k := CardKind(0); k < kindCount; k++ {
		n := d.cards[k]
		if pick < n {
			d.cards[k]--
			d.total--
			return k, true
		}
		pick -= n
	}

	return 0, false
}

// Extend 把单张卡牌逐一放回牌池
func (d *Deck) Extend(kinds ...CardKind) {
	for _, k := range kinds {
		d.Add(k, 1)
	}
}

// Size 剩余张数
func (d *Deck) Size() int {
	return d.total
}

// Count 某种卡牌剩余张数
func (d *Deck) Count(kind CardKind) int {
	if !kind.Valid() {
		return 0
	}
	return d.cards[kind]
}
