package engine

import (
	"encoding/binary"
	"log/slog"
	"math/rand/v2"
)

// Submission 玩家本回合的提交：选中的牌 + 剩余手牌
type Submission struct {
	Selected  Cards `json:"selected_cards"`
	Remaining Cards `json:"remaining_hand"`
}

// Game 规则引擎
// 单线程、同步、无锁；调用方负责串行访问
type Game struct {
	seed       uint64
	rng        *rand.Rand
	deck       *Deck
	players    []*Player
	round      int
	turn       int
	roundCount int
	turnStates []PlayerTurnState
	trayActive []bool // 本回合是否激活了饮料托盘
	logger     *slog.Logger
}

// NewGame 创建游戏并发放第一轮手牌
func NewGame(cfg Config) (*Game, error) {
	numPlayers := len(cfg.PlayerNames)
	if numPlayers < MinPlayers {
		return nil, ErrInvalidConfig.WithContext("players", numPlayers)
	}

	handSize, ok := CardsPerPlayer(numPlayers)
	if !ok {
		return nil, ErrInvalidConfig.WithContext("players", numPlayers)
	}

	if cfg.RoundCount < 0 {
		return nil, ErrInvalidConfig.WithContext("roundCount", cfg.RoundCount)
	}
	roundCount := cfg.RoundCount
	if roundCount == 0 {
		roundCount = DefaultRoundCount
	}

	distribution := cfg.Distribution
	if distribution == nil {
		distribution = DefaultDistribution()
	}
	if err := distribution.validate(); err != nil {
		return nil, ErrInvalidConfig.WithCause(err)
	}

	var seed uint64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed = rand.Uint64()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := &Game{
		seed:       seed,
		rng:        newRNG(seed),
		deck:       NewDeckWithCards(distribution),
		players:    make([]*Player, numPlayers),
		round:      1,
		turn:       1,
		roundCount: roundCount,
		turnStates: make([]PlayerTurnState, numPlayers),
		trayActive: make([]bool, numPlayers),
		logger:     logger.With("seed", seed),
	}
	for i, name := range cfg.PlayerNames {
		g.players[i] = newPlayer(i, name)
	}
	g.ResetTurnStates()

	if err := g.deal(handSize); err != nil {
		return nil, err
	}

	g.logger.Debug("game created",
		"players", numPlayers,
		"roundCount", roundCount,
		"handSize", handSize,
		"deckSize", g.deck.Size())

	return g, nil
}

// newRNG 用 64 位种子派生 ChaCha8 随机源
func newRNG(seed uint64) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return rand.New(rand.NewChaCha8(key))
}

// deal 每位玩家按玩家 id 顺序抽 handSize 张
func (g *Game) deal(handSize int) error {
	needed := len(g.players) * handSize
	if g.deck.Size() < needed {
		return ErrNotEnoughCards.
			WithContext("needed", needed).
			WithContext("deckSize", g.deck.Size())
	}

	for _, p := range g.players {
		for i := 0; i < handSize; i++ {
			card, ok := g.deck.Draw(g.rng)
			if !ok {
				return ErrNotEnoughCards.WithContext("player", p.ID)
			}
			p.Hand.Add(card, 1)
		}
	}
	return nil
}

func (g *Game) checkPlayer(playerID int) error {
	if playerID < 0 || playerID >= len(g.players) {
		return ErrInvalidPlayer.WithContext("player", playerID)
	}
	return nil
}

// ============== 回合提交 ==============

// ValidateHandSubmission 校验 selected ∪ remaining 是否恰好等于当前手牌
// 这是唯一的结构性校验，不限制选取数量（数量策略由调用方在 ProcessTurn 之前执行）
func (g *Game) ValidateHandSubmission(playerID int, selected, remaining Cards) error {
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	if err := selected.validate(); err != nil {
		return ErrInvalidSubmission.WithCause(err).WithContext("player", playerID)
	}
	if err := remaining.validate(); err != nil {
		return ErrInvalidSubmission.WithCause(err).WithContext("player", playerID)
	}
	if !selected.Merge(remaining).Equal(g.players[playerID].Hand) {
		return ErrInvalidSubmission.WithContext("player", playerID)
	}
	return nil
}

// MarkPlayerSelected 标记玩家已确认本回合的选择
func (g *Game) MarkPlayerSelected(playerID int) error {
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	g.turnStates[playerID] = TurnSelected
	return nil
}

// AllPlayersSelected 是否所有玩家都已提交
func (g *Game) AllPlayersSelected() bool {
	for _, s := range g.turnStates {
		if s != TurnSelected {
			return false
		}
	}
	return true
}

// ResetTurnStates 重置所有玩家的回合状态
func (g *Game) ResetTurnStates() {
	for i := range g.turnStates {
		g.turnStates[i] = TurnNotSelected
		g.trayActive[i] = false
	}
}

// ============== 饮料托盘 ==============

// ActivateDrinkTray 把一张公开区的饮料托盘收回手牌，本回合可多选一张
func (g *Game) ActivateDrinkTray(playerID int) error {
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	if g.IsGameOver() {
		return ErrGameOver
	}
	if g.turnStates[playerID] == TurnSelected {
		return ErrAlreadySubmitted.WithContext("player", playerID)
	}
	if g.trayActive[playerID] {
		return ErrDrinkTrayState.WithContext("player", playerID)
	}

	p := g.players[playerID]
	if !p.Public.Remove(DrinkTray, 1) {
		return ErrNoDrinkTray.WithContext("player", playerID)
	}
	p.Hand.Add(DrinkTray, 1)
	g.trayActive[playerID] = true
	return nil
}

// UndoDrinkTray 撤销本回合的托盘激活，把托盘放回公开区
func (g *Game) UndoDrinkTray(playerID int) error {
	if err := g.checkPlayer(playerID); err != nil {
		return err
	}
	if g.turnStates[playerID] == TurnSelected {
		return ErrAlreadySubmitted.WithContext("player", playerID)
	}
	if !g.trayActive[playerID] {
		return ErrDrinkTrayState.WithContext("player", playerID)
	}

	p := g.players[playerID]
	if !p.Hand.Remove(DrinkTray, 1) {
		return ErrNoDrinkTray.WithContext("player", playerID)
	}
	p.Public.Add(DrinkTray, 1)
	g.trayActive[playerID] = false
	return nil
}

// DrinkTrayActivated 本回合是否激活了托盘
func (g *Game) DrinkTrayActivated(playerID int) bool {
	if g.checkPlayer(playerID) != nil {
		return false
	}
	return g.trayActive[playerID]
}

// SelectionLimit 本回合最多可选的张数
func (g *Game) SelectionLimit(playerID int) int {
	if g.DrinkTrayActivated(playerID) {
		return 2
	}
	return 1
}

// ============== 回合结算 ==============

// ProcessTurn 结算一个回合
// submissions 按玩家 id 索引，nil 表示该玩家本回合没有提交（手牌原样传出）
func (g *Game) ProcessTurn(submissions []*Submission) error {
	if g.IsGameOver() {
		return ErrGameOver
	}
	if !g.AllPlayersSelected() {
		return ErrTurnIncomplete
	}
	if len(submissions) != len(g.players) {
		return ErrInvalidConfig.
			WithContext("submissions", len(submissions)).
			WithContext("players", len(g.players))
	}

	// 先整体校验，任何一份不合法都不修改状态
	for id, sub := range submissions {
		if sub == nil {
			continue
		}
		if err := g.ValidateHandSubmission(id, sub.Selected, sub.Remaining); err != nil {
			return err
		}
	}

	hooks := make([]DraftHook, len(g.players))
	for id, sub := range submissions {
		if sub == nil {
			continue
		}
		p := g.players[id]
		hooks[id] = draftInto(p, sub.Selected)
		p.Hand = sub.Remaining.Clone()
	}

	if g.allHandsEmpty() {
		g.logger.Debug("round finished", "round", g.round, "turn", g.turn)
		if g.round < g.roundCount {
			return g.StartNewRound()
		}
		g.logger.Debug("game over", "round", g.round)
		return nil
	}

	g.passHands()

	hands := make([]Cards, len(g.players))
	for i, p := range g.players {
		hands[i] = p.Hand
	}

	var hookErr error
	direction := g.PassDirection()
	for id, hook := range hooks {
		if hook == nil {
			continue
		}
		fx := &DraftEffect{
			Drafter:    id,
			NumPlayers: len(g.players),
			Direction:  direction,
			Hands:      hands,
			Deck:       g.deck,
			Rng:        g.rng,
		}
		if err := hook(fx); err != nil {
			hookErr = ErrEffectFailed.WithCause(err).WithContext("player", id)
			break
		}
	}

	for i, p := range g.players {
		p.Hand = hands[i]
	}

	g.NextTurn()
	return hookErr
}

// draftInto 把选中的牌放进玩家公开区，果茶优先与已有的爆爆珠配对
// 返回本回合需要触发的抽选效果（同一玩家只保留最后一个）
func draftInto(p *Player, selected Cards) DraftHook {
	var hook DraftHook
	// 只能与提交前已经公开的爆爆珠配对
	boosters := p.Public.Count(PoppingBubbles)

	for _, kind := range selected.Kinds() {
		count := selected[kind]
		if kind.IsFruitTea() {
			boost := min(count, boosters)
			if boost > 0 {
				p.Boosted.Add(kind, boost)
				p.Public.Remove(PoppingBubbles, boost)
				boosters -= boost
			}
			p.Public.Add(kind, count-boost)
		} else {
			p.Public.Add(kind, count)
		}

		if h := kind.OnDraft(); h != nil {
			hook = h
		}
	}
	return hook
}

// passHands 按本轮方向整体轮转手牌
func (g *Game) passHands() {
	n := len(g.players)
	hands := make([]Cards, n)
	for i, p := range g.players {
		hands[i] = p.Hand
	}

	direction := g.PassDirection()
	for i, p := range g.players {
		if direction == PassLeft {
			p.Hand = hands[(i+n-1)%n]
		} else {
			p.Hand = hands[(i+1)%n]
		}
	}
}

func (g *Game) allHandsEmpty() bool {
	for _, p := range g.players {
		if !p.Hand.IsEmpty() {
			return false
		}
	}
	return true
}

// StartNewRound 发新一轮手牌
func (g *Game) StartNewRound() error {
	if g.round >= g.roundCount {
		return ErrRoundLimit.WithContext("round", g.round)
	}

	handSize, ok := CardsPerPlayer(len(g.players))
	if !ok {
		return ErrInvalidConfig.WithContext("players", len(g.players))
	}

	if err := g.deal(handSize); err != nil {
		return err
	}
	g.round++
	g.turn = 1
	g.ResetTurnStates()

	g.logger.Debug("round started", "round", g.round, "deckSize", g.deck.Size())
	return nil
}

// NextTurn 进入下一回合
func (g *Game) NextTurn() {
	g.turn++
	g.ResetTurnStates()
}

// IsGameOver 最后一轮且所有手牌为空
func (g *Game) IsGameOver() bool {
	return g.round >= g.roundCount && g.allHandsEmpty()
}

// ============== 查询 ==============

// PlayerHand 获取玩家手牌（拷贝）
func (g *Game) PlayerHand(playerID int) (Cards, error) {
	if err := g.checkPlayer(playerID); err != nil {
		return nil, err
	}
	return g.players[playerID].Hand.Clone(), nil
}

// PlayersPublic 获取所有玩家的公开信息
func (g *Game) PlayersPublic() []PlayerPublic {
	out := make([]PlayerPublic, len(g.players))
	for i, p := range g.players {
		out[i] = p.ToPublic()
	}
	return out
}

// PlayerPublic 获取单个玩家的公开信息
func (g *Game) PlayerPublic(playerID int) (PlayerPublic, error) {
	if err := g.checkPlayer(playerID); err != nil {
		return PlayerPublic{}, err
	}
	return g.players[playerID].ToPublic(), nil
}

// Status 获取当前游戏状态
func (g *Game) Status() GameStatus {
	states := make([]PlayerTurnState, len(g.turnStates))
	copy(states, g.turnStates)
	return GameStatus{
		Round:            g.round,
		Turn:             g.turn,
		RoundCount:       g.roundCount,
		PassDirection:    g.PassDirection(),
		IsGameOver:       g.IsGameOver(),
		PlayerTurnStates: states,
	}
}

// PlayerTurnState 获取玩家回合状态
func (g *Game) PlayerTurnState(playerID int) (PlayerTurnState, error) {
	if err := g.checkPlayer(playerID); err != nil {
		return "", err
	}
	return g.turnStates[playerID], nil
}

// PassDirection 本轮传牌方向
func (g *Game) PassDirection() PassDirection {
	return PassDirectionForRound(g.round)
}

func (g *Game) Seed() uint64    { return g.seed }
func (g *Game) Round() int      { return g.round }
func (g *Game) Turn() int       { return g.turn }
func (g *Game) RoundCount() int { return g.roundCount }
func (g *Game) NumPlayers() int { return len(g.players) }
func (g *Game) DeckSize() int   { return g.deck.Size() }

// CalculatePlayerScore 计算玩家得分及明细
func (g *Game) CalculatePlayerScore(playerID int) (float64, ScoreBreakdown, error) {
	if err := g.checkPlayer(playerID); err != nil {
		return 0, ScoreBreakdown{}, err
	}
	breakdown := ScorePlayer(playerID, g.PlayersPublic())
	return breakdown.Total, breakdown, nil
}
