package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noMysteryDistribution 去掉神秘茶，使结算不受抽选效果影响
func noMysteryDistribution() Cards {
	d := DefaultDistribution()
	delete(d, MysteryTea)
	return d
}

func newTestGame(t *testing.T, players int, seed uint64, dist Cards, rounds int) *Game {
	t.Helper()
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin"}[:players]
	g, err := NewGame(Config{
		PlayerNames:  names,
		Seed:         SeedPtr(seed),
		Distribution: dist,
		RoundCount:   rounds,
	})
	require.NoError(t, err)
	return g
}

// setHands 直接替换手牌，便于构造场景
func setHands(g *Game, hands ...Cards) {
	for i, h := range hands {
		g.players[i].Hand = h.Clone()
	}
}

// submitAll 标记全部玩家并结算
func submitAll(t *testing.T, g *Game, subs []*Submission) error {
	t.Helper()
	for i := range subs {
		require.NoError(t, g.MarkPlayerSelected(i))
	}
	return g.ProcessTurn(subs)
}

// pick 从手牌中选出给定的牌，返回提交
func pick(t *testing.T, g *Game, playerID int, kinds ...CardKind) *Submission {
	t.Helper()
	hand, err := g.PlayerHand(playerID)
	require.NoError(t, err)
	selected := NewCards(kinds...)
	for _, k := range kinds {
		require.True(t, hand.Remove(k, 1), "玩家 %d 手中没有 %s", playerID, k)
	}
	return &Submission{Selected: selected, Remaining: hand}
}

// cardsInPlay 牌堆 + 所有手牌 + 公开区 + 加成区
func cardsInPlay(g *Game) int {
	total := g.DeckSize()
	for _, p := range g.players {
		total += p.Hand.Total() + p.Public.Total() + p.Boosted.Total()
	}
	return total
}

func TestNewGame_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"one player", Config{PlayerNames: []string{"solo"}}},
		{"six players", Config{PlayerNames: []string{"a", "b", "c", "d", "e", "f"}}},
		{"negative rounds", Config{PlayerNames: []string{"a", "b"}, RoundCount: -1}},
		{"negative count", Config{PlayerNames: []string{"a", "b"}, Distribution: Cards{ThaiTea: -3}}},
		{"unknown kind", Config{PlayerNames: []string{"a", "b"}, Distribution: Cards{CardKind(77): 30}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGame(tt.cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestNewGame_NotEnoughCards(t *testing.T) {
	_, err := NewGame(Config{
		PlayerNames:  []string{"a", "b"},
		Distribution: Cards{MangoTea: 19},
	})
	assert.True(t, errors.Is(err, ErrNotEnoughCards), "got %v", err)
}

func TestNewGame_Deal(t *testing.T) {
	for players, handSize := range cardsPerPlayer {
		g := newTestGame(t, players, 5, nil, 0)

		assert.Equal(t, DefaultRoundCount, g.RoundCount())
		assert.Equal(t, 1, g.Round())
		assert.Equal(t, 1, g.Turn())
		assert.Equal(t, 124-players*handSize, g.DeckSize())
		for i := 0; i < players; i++ {
			hand, err := g.PlayerHand(i)
			require.NoError(t, err)
			assert.Equal(t, handSize, hand.Total(), "%d 人局每人 %d 张", players, handSize)

			state, err := g.PlayerTurnState(i)
			require.NoError(t, err)
			assert.Equal(t, TurnNotSelected, state)
		}
	}
}

func TestNewGame_SeedReported(t *testing.T) {
	g, err := NewGame(Config{PlayerNames: []string{"a", "b", "c"}})
	require.NoError(t, err)

	replay := newTestGame(t, 3, g.Seed(), nil, 0)
	for i := 0; i < 3; i++ {
		want, _ := g.PlayerHand(i)
		got, _ := replay.PlayerHand(i)
		assert.Equal(t, want, got)
	}
}

func TestValidateHandSubmission(t *testing.T) {
	g := newTestGame(t, 2, 1, nil, 1)
	setHands(g, Cards{ThaiTea: 2, MangoTea: 1}, Cards{MatchaTea: 3})

	assert.NoError(t, g.ValidateHandSubmission(0, Cards{ThaiTea: 1}, Cards{ThaiTea: 1, MangoTea: 1}))
	assert.NoError(t, g.ValidateHandSubmission(0, Cards{}, Cards{ThaiTea: 2, MangoTea: 1}))

	err := g.ValidateHandSubmission(0, Cards{ThaiTea: 1}, Cards{ThaiTea: 1})
	assert.True(t, errors.Is(err, ErrInvalidSubmission))

	err = g.ValidateHandSubmission(0, Cards{LycheeTea: 1}, Cards{ThaiTea: 2, MangoTea: 1})
	assert.True(t, errors.Is(err, ErrInvalidSubmission))

	err = g.ValidateHandSubmission(1, Cards{MatchaTea: -1}, Cards{MatchaTea: 4})
	assert.True(t, errors.Is(err, ErrInvalidSubmission))

	err = g.ValidateHandSubmission(2, Cards{}, Cards{})
	assert.True(t, errors.Is(err, ErrInvalidPlayer))
}

func TestProcessTurn_RequiresAllPlayers(t *testing.T) {
	g := newTestGame(t, 3, 1, nil, 1)
	require.NoError(t, g.MarkPlayerSelected(0))
	assert.False(t, g.AllPlayersSelected())

	err := g.ProcessTurn(make([]*Submission, 3))
	assert.True(t, errors.Is(err, ErrTurnIncomplete))

	require.NoError(t, g.MarkPlayerSelected(1))
	require.NoError(t, g.MarkPlayerSelected(2))
	err = g.ProcessTurn(make([]*Submission, 2))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	assert.True(t, errors.Is(g.MarkPlayerSelected(3), ErrInvalidPlayer))
}

func TestProcessTurn_AtomicValidation(t *testing.T) {
	g := newTestGame(t, 2, 1, nil, 1)
	setHands(g, Cards{ThaiTea: 2}, Cards{MatchaTea: 2})

	err := submitAll(t, g, []*Submission{
		{Selected: Cards{ThaiTea: 1}, Remaining: Cards{ThaiTea: 1}},
		{Selected: Cards{MatchaTea: 1}, Remaining: Cards{MatchaTea: 2}},
	})
	require.True(t, errors.Is(err, ErrInvalidSubmission))

	assert.Equal(t, Cards{ThaiTea: 2}, g.players[0].Hand)
	assert.True(t, g.players[0].Public.IsEmpty(), "校验失败时不应修改任何玩家")
	assert.Equal(t, 1, g.Turn())
}

func TestProcessTurn_PassLeftAndConservation(t *testing.T) {
	g := newTestGame(t, 3, 21, noMysteryDistribution(), 3)
	before := cardsInPlay(g)

	hands := make([]Cards, 3)
	subs := make([]*Submission, 3)
	for i := 0; i < 3; i++ {
		hands[i], _ = g.PlayerHand(i)
		subs[i] = pick(t, g, i, hands[i].Kinds()[0])
		require.True(t, subs[i].Selected.Merge(subs[i].Remaining).Equal(hands[i]))
	}

	require.NoError(t, submitAll(t, g, subs))
	assert.Equal(t, before, cardsInPlay(g), "没有抽选效果时卡牌总数守恒")
	assert.Equal(t, 2, g.Turn())

	for i := 0; i < 3; i++ {
		got, _ := g.PlayerHand(i)
		assert.Equal(t, subs[(i+2)%3].Remaining, got, "第 1 轮向左传：玩家 %d 收到 %d 的手牌", i, (i+2)%3)

		pub, _ := g.PlayerPublic(i)
		assert.Equal(t, subs[i].Selected.Total(), pub.Public.Total()+pub.Boosted.Total())

		state, _ := g.PlayerTurnState(i)
		assert.Equal(t, TurnNotSelected, state)
	}
}

func TestProcessTurn_PassRight(t *testing.T) {
	g := newTestGame(t, 3, 21, noMysteryDistribution(), 3)
	g.round = 2
	setHands(g,
		Cards{ThaiTea: 2},
		Cards{MatchaTea: 2},
		Cards{MangoTea: 2},
	)

	subs := []*Submission{
		pick(t, g, 0, ThaiTea),
		pick(t, g, 1, MatchaTea),
		pick(t, g, 2, MangoTea),
	}
	require.NoError(t, submitAll(t, g, subs))

	assert.Equal(t, PassRight, g.Status().PassDirection)
	assert.Equal(t, Cards{MatchaTea: 1}, g.players[0].Hand)
	assert.Equal(t, Cards{MangoTea: 1}, g.players[1].Hand)
	assert.Equal(t, Cards{ThaiTea: 1}, g.players[2].Hand)
}

func TestProcessTurn_AbsentSubmissionPassesHand(t *testing.T) {
	g := newTestGame(t, 2, 3, noMysteryDistribution(), 1)
	setHands(g, Cards{ThaiTea: 2}, Cards{MatchaTea: 2})

	require.NoError(t, submitAll(t, g, []*Submission{pick(t, g, 0, ThaiTea), nil}))

	assert.Equal(t, Cards{MatchaTea: 2}, g.players[0].Hand)
	assert.Equal(t, Cards{ThaiTea: 1}, g.players[1].Hand)
	assert.True(t, g.players[1].Public.IsEmpty())
}

func TestProcessTurn_PairingCap(t *testing.T) {
	g := newTestGame(t, 2, 3, nil, 1)
	g.players[0].Public = Cards{PoppingBubbles: 1}
	setHands(g, Cards{MangoTea: 2, ThaiTea: 1}, Cards{MatchaTea: 3})

	require.NoError(t, submitAll(t, g, []*Submission{
		{Selected: Cards{MangoTea: 2}, Remaining: Cards{ThaiTea: 1}},
		pick(t, g, 1, MatchaTea),
	}))

	p := g.players[0]
	assert.Equal(t, Cards{MangoTea: 1}, p.Boosted)
	assert.Equal(t, Cards{MangoTea: 1}, p.Public)
	_, ok := p.Public[PoppingBubbles]
	assert.False(t, ok, "用完的爆爆珠应从公开区移除")
}

func TestProcessTurn_BoostersDraftedTogetherDoNotPair(t *testing.T) {
	g := newTestGame(t, 2, 3, nil, 1)
	setHands(g, Cards{PoppingBubbles: 1, LycheeTea: 1, ThaiTea: 1}, Cards{MatchaTea: 3})

	require.NoError(t, submitAll(t, g, []*Submission{
		{Selected: Cards{PoppingBubbles: 1, LycheeTea: 1}, Remaining: Cards{ThaiTea: 1}},
		pick(t, g, 1, MatchaTea),
	}))

	p := g.players[0]
	assert.True(t, p.Boosted.IsEmpty())
	assert.Equal(t, Cards{PoppingBubbles: 1, LycheeTea: 1}, p.Public)

	// 下一回合再抽果茶即可配对
	setHands(g, Cards{LycheeTea: 1, ThaiTea: 1}, Cards{MatchaTea: 2})
	require.NoError(t, submitAll(t, g, []*Submission{
		pick(t, g, 0, LycheeTea),
		pick(t, g, 1, MatchaTea),
	}))
	assert.Equal(t, Cards{LycheeTea: 1}, p.Boosted)
	assert.Equal(t, Cards{LycheeTea: 1}, p.Public)
}

func TestProcessTurn_MysteryTeaReplacesReceiverHand(t *testing.T) {
	for _, round := range []int{1, 2} {
		g := newTestGame(t, 3, 8, nil, 3)
		g.round = round
		g.deck = NewDeckWithCards(Cards{LycheeTea: 30})
		setHands(g,
			Cards{MysteryTea: 1, ThaiTea: 2},
			Cards{MatchaTea: 3},
			Cards{MangoTea: 3},
		)

		subs := []*Submission{
			pick(t, g, 0, MysteryTea),
			pick(t, g, 1, MatchaTea),
			pick(t, g, 2, MangoTea),
		}
		require.NoError(t, submitAll(t, g, subs))

		receiver := 1
		untouched := map[int]Cards{0: {MangoTea: 2}, 2: {MatchaTea: 2}}
		if round == 2 {
			receiver = 2
			untouched = map[int]Cards{0: {MatchaTea: 2}, 1: {MangoTea: 2}}
		}

		assert.Equal(t, 2, g.players[receiver].Hand.Total(), "第 %d 轮接收者 %d 手牌张数不变", round, receiver)
		for id, want := range untouched {
			assert.Equal(t, want, g.players[id].Hand, "第 %d 轮玩家 %d 不受影响", round, id)
		}
		assert.Equal(t, 30, g.DeckSize())
		assert.Equal(t, 1, g.players[0].Public.Count(MysteryTea))
	}
}

func TestDrinkTray(t *testing.T) {
	g := newTestGame(t, 2, 4, nil, 1)
	setHands(g, Cards{ThaiTea: 2}, Cards{MatchaTea: 2})

	assert.True(t, errors.Is(g.ActivateDrinkTray(0), ErrNoDrinkTray))
	assert.True(t, errors.Is(g.UndoDrinkTray(0), ErrDrinkTrayState))

	g.players[0].Public = Cards{DrinkTray: 1, MatchaTea: 1}
	require.NoError(t, g.ActivateDrinkTray(0))
	assert.True(t, g.DrinkTrayActivated(0))
	assert.Equal(t, 2, g.SelectionLimit(0))
	assert.Equal(t, 1, g.SelectionLimit(1))
	assert.Equal(t, Cards{ThaiTea: 2, DrinkTray: 1}, g.players[0].Hand)
	assert.Equal(t, Cards{MatchaTea: 1}, g.players[0].Public)
	assert.True(t, errors.Is(g.ActivateDrinkTray(0), ErrDrinkTrayState), "同一回合只能激活一次")

	require.NoError(t, g.UndoDrinkTray(0))
	assert.False(t, g.DrinkTrayActivated(0))
	assert.Equal(t, Cards{ThaiTea: 2}, g.players[0].Hand)
	assert.Equal(t, Cards{DrinkTray: 1, MatchaTea: 1}, g.players[0].Public)

	require.NoError(t, g.ActivateDrinkTray(0))
	require.NoError(t, g.MarkPlayerSelected(0))
	assert.True(t, errors.Is(g.UndoDrinkTray(0), ErrAlreadySubmitted))

	require.NoError(t, g.MarkPlayerSelected(1))
	require.NoError(t, g.ProcessTurn([]*Submission{
		{Selected: Cards{ThaiTea: 2}, Remaining: Cards{DrinkTray: 1}},
		pick(t, g, 1, MatchaTea),
	}))

	assert.False(t, g.DrinkTrayActivated(0), "新回合重置托盘状态")
	assert.Equal(t, 2, g.players[0].Public.Count(ThaiTea))
	assert.Equal(t, Cards{DrinkTray: 1}, g.players[1].Hand, "托盘随手牌传出")
}

func TestRoundAdvance(t *testing.T) {
	g := newTestGame(t, 2, 6, noMysteryDistribution(), 2)
	setHands(g, Cards{ThaiTea: 1}, Cards{MatchaTea: 1})
	deckBefore := g.DeckSize()

	require.NoError(t, submitAll(t, g, []*Submission{
		pick(t, g, 0, ThaiTea),
		pick(t, g, 1, MatchaTea),
	}))

	status := g.Status()
	assert.Equal(t, 2, status.Round)
	assert.Equal(t, 1, status.Turn)
	assert.Equal(t, PassRight, status.PassDirection)
	assert.False(t, status.IsGameOver)
	assert.Equal(t, []PlayerTurnState{TurnNotSelected, TurnNotSelected}, status.PlayerTurnStates)
	assert.Equal(t, 10, g.players[0].Hand.Total())
	assert.Equal(t, 10, g.players[1].Hand.Total())
	assert.Equal(t, deckBefore-20, g.DeckSize())
}

func TestGameOver(t *testing.T) {
	g := newTestGame(t, 2, 6, noMysteryDistribution(), 2)
	g.round = 2
	setHands(g, Cards{ThaiTea: 1}, Cards{MatchaTea: 1})
	deckBefore := g.DeckSize()

	require.NoError(t, submitAll(t, g, []*Submission{
		pick(t, g, 0, ThaiTea),
		pick(t, g, 1, MatchaTea),
	}))

	assert.True(t, g.IsGameOver())
	assert.True(t, g.Status().IsGameOver)
	assert.Equal(t, deckBefore, g.DeckSize(), "游戏结束后不再发牌")
	assert.True(t, errors.Is(g.StartNewRound(), ErrRoundLimit))
	assert.True(t, errors.Is(g.ProcessTurn(make([]*Submission, 2)), ErrGameOver))
	assert.True(t, errors.Is(g.ActivateDrinkTray(0), ErrGameOver))
}

// playOut 每位玩家每回合选手中编号最小的牌，直到游戏结束
func playOut(t *testing.T, g *Game, step func()) {
	t.Helper()
	playOutPicking(t, g, func(hand Cards) CardKind { return hand.Kinds()[0] }, step)
}

// playOutPicking 每回合每位玩家按 choose 选一张牌，直到游戏结束
func playOutPicking(t *testing.T, g *Game, choose func(hand Cards) CardKind, step func()) {
	t.Helper()
	for turns := 0; !g.IsGameOver(); turns++ {
		require.Less(t, turns, 100, "游戏应在有限回合内结束")
		subs := make([]*Submission, g.NumPlayers())
		for i := range subs {
			hand, err := g.PlayerHand(i)
			require.NoError(t, err)
			subs[i] = pick(t, g, i, choose(hand))
		}
		require.NoError(t, submitAll(t, g, subs))
		if step != nil {
			step()
		}
	}
}

func TestDeterminism(t *testing.T) {
	dist := DefaultDistribution()
	dist[MysteryTea] = 20

	mysteryDrafts := 0
	preferMystery := func(hand Cards) CardKind {
		if hand.Count(MysteryTea) > 0 {
			mysteryDrafts++
			return MysteryTea
		}
		return hand.Kinds()[0]
	}

	type step struct {
		public []PlayerPublic
		hands  []Cards
	}
	capture := func(t *testing.T, g *Game) step {
		st := step{public: g.PlayersPublic()}
		for id := 0; id < g.NumPlayers(); id++ {
			hand, err := g.PlayerHand(id)
			require.NoError(t, err)
			st.hands = append(st.hands, hand)
		}
		return st
	}

	a := newTestGame(t, 4, 2024, dist, 0)
	b := newTestGame(t, 4, 2024, dist, 0)

	var steps []step
	playOutPicking(t, a, preferMystery, func() { steps = append(steps, capture(t, a)) })
	require.Positive(t, mysteryDrafts, "对局中应抽到过神秘茶")

	i := 0
	playOutPicking(t, b, preferMystery, func() {
		require.Less(t, i, len(steps))
		got := capture(t, b)
		assert.Equal(t, steps[i].public, got.public, "第 %d 步公开状态不一致", i)
		for id := range got.hands {
			assert.True(t, steps[i].hands[id].Equal(got.hands[id]), "第 %d 步玩家 %d 手牌不一致", i, id)
		}
		i++
	})
	assert.Equal(t, len(steps), i)

	for id := 0; id < 4; id++ {
		ta, ba, err := a.CalculatePlayerScore(id)
		require.NoError(t, err)
		tb, bb, err := b.CalculatePlayerScore(id)
		require.NoError(t, err)
		assert.Equal(t, ta, tb)
		assert.Equal(t, ba, bb)
	}
}

func TestFullGame_PublicMatchesDraftedCards(t *testing.T) {
	g := newTestGame(t, 5, 77, nil, 0)
	playOut(t, g, nil)

	drafted := 0
	for _, p := range g.PlayersPublic() {
		drafted += p.Public.Total() + p.Boosted.Total()
	}
	// 被消耗的爆爆珠不再计入公开区
	consumed := 0
	for _, p := range g.PlayersPublic() {
		consumed += p.Boosted.Total()
	}
	assert.Equal(t, 5*7*DefaultRoundCount, drafted+consumed)
	assert.Equal(t, DefaultRoundCount, g.Round())
}

func TestScenario_TwoPlayerMochi(t *testing.T) {
	g := newTestGame(t, 2, 12345, Cards{MochiIceCream: 20}, 1)

	for turn := 0; turn < 5; turn++ {
		require.NoError(t, submitAll(t, g, []*Submission{
			pick(t, g, 0, MochiIceCream),
			pick(t, g, 1, MochiIceCream),
		}))
	}

	total, breakdown, err := g.CalculatePlayerScore(0)
	require.NoError(t, err)
	// 双方都没有珍珠，并列最少各扣 3 分
	assert.Equal(t, []CategoryScore{
		{Category: "Mochi Ice Cream", Points: 15},
		{Category: "Tapioca Pearl Majority/Minority", Points: -3},
	}, breakdown.Categories)
	assert.Equal(t, 12.0, total)

	_, _, err = g.CalculatePlayerScore(2)
	assert.True(t, errors.Is(err, ErrInvalidPlayer))
}
