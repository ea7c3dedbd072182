package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/model"
	"sudooom.boba/internal/protocol"
	"sudooom.boba/internal/task"
	appErrors "sudooom.boba/pkg/errors"
)

// Notifier 向玩家推送消息
type Notifier interface {
	SendUpdate(ctx context.Context, gameID string, update *protocol.GameUpdate) error
	SendEnded(ctx context.Context, gameID string, ended *protocol.GameEnded) error
}

// StatusStore 保存对局公开快照
type StatusStore interface {
	SaveSnapshot(ctx context.Context, snapshot *protocol.Snapshot) error
}

// ResultRecorder 持久化最终结果
type ResultRecorder interface {
	SaveResult(ctx context.Context, result *model.GameResult) error
}

// Options 会话的外部协作方，均可为空
type Options struct {
	Notifier    Notifier
	Store       StatusStore
	Recorder    ResultRecorder
	Scheduler   *task.Scheduler
	TurnTimeout time.Duration // <= 0 表示不限时
	Logger      *slog.Logger
}

// Session 一局游戏的唯一所有者
// 规则引擎本身不加锁，所有调用都在 mu 内串行执行
type Session struct {
	mu         sync.Mutex
	id         string
	game       *engine.Game
	opts       Options
	pending    []*engine.Submission
	ended      *protocol.GameEnded
	lastActive time.Time
	timerID    string
	logger     *slog.Logger
}

// New 创建会话（尚未推送任何消息，需调用 Start）
func New(id string, cfg engine.Config, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "Session", "gameId", id)

	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	game, err := engine.NewGame(cfg)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:         id,
		game:       game,
		opts:       opts,
		pending:    make([]*engine.Submission, game.NumPlayers()),
		lastActive: time.Now(),
		timerID:    "turn:" + id,
		logger:     logger,
	}, nil
}

// Start 推送初始手牌并开始计时
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("game started", "players", s.game.NumPlayers(), "seed", s.game.Seed())
	s.broadcastLocked(ctx)
	s.saveSnapshotLocked(ctx)
	s.armTimerLocked()
}

func (s *Session) ID() string { return s.id }

// LastActive 最近一次玩家操作的时间
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Ended 对局结束信息，未结束时返回 false
func (s *Session) Ended() (*protocol.GameEnded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended, s.ended != nil
}

func (s *Session) checkActiveLocked() error {
	if s.ended != nil {
		return appErrors.ErrGameEnded
	}
	return nil
}

// ============== 玩家操作 ==============

// Submit 提交选择，全部玩家提交后立即结算
func (s *Session) Submit(ctx context.Context, playerID int, selected, remaining engine.Cards) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	s.lastActive = time.Now()

	state, err := s.game.PlayerTurnState(playerID)
	if err != nil {
		return err
	}
	if state == engine.TurnSelected {
		return engine.ErrAlreadySubmitted.WithContext("player", playerID)
	}
	if err := s.checkSelectionLocked(playerID, selected); err != nil {
		return err
	}
	if err := s.game.ValidateHandSubmission(playerID, selected, remaining); err != nil {
		return err
	}

	s.pending[playerID] = &engine.Submission{
		Selected:  selected.Clone(),
		Remaining: remaining.Clone(),
	}
	if err := s.game.MarkPlayerSelected(playerID); err != nil {
		return err
	}
	s.logger.Debug("player submitted", "player", playerID, "selected", selected.Total())

	if s.game.AllPlayersSelected() {
		s.resolveLocked(ctx)
		return nil
	}
	s.broadcastLocked(ctx)
	return nil
}

// checkSelectionLocked 选牌数量策略：手牌非空时至少选一张，最多 SelectionLimit 张，且都可选
func (s *Session) checkSelectionLocked(playerID int, selected engine.Cards) error {
	hand, err := s.game.PlayerHand(playerID)
	if err != nil {
		return err
	}

	total := selected.Total()
	if total == 0 && !hand.IsEmpty() {
		return appErrors.ErrSelectionRule.Wrap(errors.New("select at least one card"))
	}
	if limit := s.game.SelectionLimit(playerID); total > limit {
		return appErrors.ErrSelectionRule.Wrap(fmt.Errorf("selected %d cards, limit is %d", total, limit))
	}
	for _, kind := range selected.Kinds() {
		if !kind.Selectable() {
			return appErrors.ErrSelectionRule.Wrap(fmt.Errorf("%s cannot be selected", kind))
		}
	}
	return nil
}

// ToggleDrinkTray 激活或撤销饮料托盘
func (s *Session) ToggleDrinkTray(ctx context.Context, playerID int, activate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	s.lastActive = time.Now()

	var err error
	if activate {
		err = s.game.ActivateDrinkTray(playerID)
	} else {
		err = s.game.UndoDrinkTray(playerID)
	}
	if err != nil {
		return err
	}

	s.logger.Debug("drink tray toggled", "player", playerID, "activate", activate)
	s.broadcastLocked(ctx)
	return nil
}

// Disconnect 玩家断线或离开，对所有人结束对局
func (s *Session) Disconnect(ctx context.Context, playerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended != nil {
		return nil
	}
	if playerID < 0 || playerID >= s.game.NumPlayers() {
		return engine.ErrInvalidPlayer.WithContext("player", playerID)
	}

	s.logger.Warn("player disconnected, ending game", "player", playerID)
	s.finishLocked(ctx, protocol.EndReason{Kind: protocol.EndPlayerDisconnected, PlayerID: &playerID})
	return nil
}

// Abort 中止对局（主机关闭、长时间无操作等）
func (s *Session) Abort(ctx context.Context, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended != nil {
		return
	}
	s.finishLocked(ctx, protocol.EndReason{Kind: protocol.EndAborted, Detail: detail})
}

// ============== 查询 ==============

// Update 单个玩家的对局视图
func (s *Session) Update(playerID int) (*protocol.GameUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(playerID)
}

// Snapshot 公开快照
func (s *Session) Snapshot() *protocol.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) updateLocked(playerID int) (*protocol.GameUpdate, error) {
	hand, err := s.game.PlayerHand(playerID)
	if err != nil {
		return nil, err
	}
	return &protocol.GameUpdate{
		PlayerID:       playerID,
		Hand:           hand,
		PlayersPublic:  s.game.PlayersPublic(),
		GameStatus:     s.game.Status(),
		SelectionLimit: s.game.SelectionLimit(playerID),
	}, nil
}

func (s *Session) snapshotLocked() *protocol.Snapshot {
	return &protocol.Snapshot{
		GameID:        s.id,
		Seed:          s.game.Seed(),
		PlayersPublic: s.game.PlayersPublic(),
		GameStatus:    s.game.Status(),
		DeckSize:      s.game.DeckSize(),
		Ended:         s.ended,
		UpdatedAt:     time.Now().UnixMilli(),
	}
}

// ============== 结算 ==============

func (s *Session) resolveLocked(ctx context.Context) {
	s.cancelTimerLocked()

	submissions := s.pending
	s.pending = make([]*engine.Submission, s.game.NumPlayers())

	round, turn := s.game.Round(), s.game.Turn()
	err := s.game.ProcessTurn(submissions)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrEffectFailed):
		// 回合已推进，只是效果没有完整执行
		s.logger.Error("draft effect failed", "round", round, "turn", turn, "error", err)
	default:
		s.logger.Error("turn resolution failed", "round", round, "turn", turn, "error", err)
		s.finishLocked(ctx, protocol.EndReason{Kind: protocol.EndAborted, Detail: err.Error()})
		return
	}

	s.logger.Debug("turn resolved", "round", round, "turn", turn)

	if s.game.IsGameOver() {
		s.finishLocked(ctx, protocol.EndReason{Kind: protocol.EndCompleted})
		return
	}

	s.broadcastLocked(ctx)
	s.saveSnapshotLocked(ctx)
	s.armTimerLocked()
}

func (s *Session) finishLocked(ctx context.Context, reason protocol.EndReason) {
	s.cancelTimerLocked()

	scores := s.finalScoresLocked()
	s.ended = &protocol.GameEnded{FinalScores: scores, Reason: reason}
	s.logger.Info("game ended", "reason", reason.String())

	if n := s.opts.Notifier; n != nil {
		if err := n.SendEnded(ctx, s.id, s.ended); err != nil {
			s.logger.Error("failed to send game ended", "error", err)
		}
	}
	s.saveSnapshotLocked(ctx)

	if r := s.opts.Recorder; r != nil {
		result := &model.GameResult{
			GameID:     s.id,
			Seed:       s.game.Seed(),
			RoundCount: s.game.RoundCount(),
			Reason:     reason,
			Scores:     scores,
			FinishedAt: time.Now(),
		}
		if err := r.SaveResult(ctx, result); err != nil {
			s.logger.Error("failed to save result", "error", err)
		}
	}
}

func (s *Session) finalScoresLocked() []protocol.FinalScore {
	players := s.game.PlayersPublic()
	scores := make([]protocol.FinalScore, len(players))
	for i, p := range players {
		breakdown := engine.ScorePlayer(i, players)
		scores[i] = protocol.FinalScore{
			PlayerID:  p.ID,
			Name:      p.Name,
			Score:     breakdown.Total,
			Breakdown: breakdown,
		}
	}
	return scores
}

func (s *Session) broadcastLocked(ctx context.Context) {
	n := s.opts.Notifier
	if n == nil {
		return
	}
	for id := 0; id < s.game.NumPlayers(); id++ {
		update, err := s.updateLocked(id)
		if err != nil {
			continue
		}
		if err := n.SendUpdate(ctx, s.id, update); err != nil {
			s.logger.Error("failed to send update", "player", id, "error", err)
		}
	}
}

func (s *Session) saveSnapshotLocked(ctx context.Context) {
	if st := s.opts.Store; st != nil {
		if err := st.SaveSnapshot(ctx, s.snapshotLocked()); err != nil {
			s.logger.Error("failed to save snapshot", "error", err)
		}
	}
}

// ============== 回合超时 ==============

func (s *Session) armTimerLocked() {
	if s.opts.Scheduler == nil || s.opts.TurnTimeout <= 0 {
		return
	}

	round, turn := s.game.Round(), s.game.Turn()
	err := s.opts.Scheduler.AfterFunc(s.timerID, s.id, s.opts.TurnTimeout, func(ctx context.Context, _ *task.Task) error {
		s.expireTurn(ctx, round, turn)
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to arm turn timer", "error", err)
	}
}

func (s *Session) cancelTimerLocked() {
	if s.opts.Scheduler != nil {
		s.opts.Scheduler.Cancel(s.timerID)
	}
}

// expireTurn 超时后替未提交的玩家选择手中编号最小的可选牌
func (s *Session) expireTurn(ctx context.Context, round, turn int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended != nil || s.game.Round() != round || s.game.Turn() != turn {
		return
	}

	for id := 0; id < s.game.NumPlayers(); id++ {
		state, err := s.game.PlayerTurnState(id)
		if err != nil || state == engine.TurnSelected {
			continue
		}
		if err := s.game.MarkPlayerSelected(id); err != nil {
			s.logger.Error("auto-select failed", "player", id, "round", round, "turn", turn, "error", err)
			continue
		}
		s.pending[id] = s.defaultSubmissionLocked(id)
		s.logger.Info("turn timed out, auto-selecting", "player", id, "round", round, "turn", turn)
	}
	s.resolveLocked(ctx)
}

func (s *Session) defaultSubmissionLocked(playerID int) *engine.Submission {
	hand, err := s.game.PlayerHand(playerID)
	if err != nil {
		return nil
	}
	for _, kind := range hand.Kinds() {
		if !kind.Selectable() {
			continue
		}
		remaining := hand.Clone()
		remaining.Remove(kind, 1)
		return &engine.Submission{Selected: engine.NewCards(kind), Remaining: remaining}
	}
	return nil
}
