package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/snowflake"
	appErrors "sudooom.boba/pkg/errors"
)

// ManagerConfig 会话管理配置
type ManagerConfig struct {
	MaxSessions   int           // <= 0 表示不限
	EvictTimeout  time.Duration // 无操作超过该时长的会话会被中止
	EvictInterval time.Duration
}

// Manager 会话管理器
type Manager struct {
	sessions sync.Map // gameId -> *Session
	count    atomic.Int64

	node *snowflake.Node
	opts Options
	cfg  ManagerConfig

	evictTicker *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once

	logger *slog.Logger
}

// NewManager 创建会话管理器并启动淘汰循环
func NewManager(node *snowflake.Node, opts Options, cfg ManagerConfig) *Manager {
	if cfg.EvictInterval <= 0 {
		cfg.EvictInterval = time.Minute
	}
	m := &Manager{
		node:     node,
		opts:     opts,
		cfg:      cfg,
		stopChan: make(chan struct{}),
		logger:   slog.Default().With("component", "SessionManager"),
	}
	if cfg.EvictTimeout > 0 {
		m.evictTicker = time.NewTicker(cfg.EvictInterval)
		go m.evictLoop()
	}
	return m
}

// Create 创建并开始一局游戏，gameID 为空时生成新 id
func (m *Manager) Create(ctx context.Context, gameID string, cfg engine.Config) (*Session, error) {
	// 先占名额，失败再归还，保证并发创建不会超过上限
	if !m.reserve() {
		return nil, appErrors.ErrTooManyGames
	}
	if gameID == "" {
		gameID = m.node.Generate().String()
	}

	s, err := New(gameID, cfg, m.opts)
	if err != nil {
		m.count.Add(-1)
		return nil, err
	}
	if _, loaded := m.sessions.LoadOrStore(gameID, s); loaded {
		m.count.Add(-1)
		return nil, appErrors.ErrLobbyStarted
	}

	s.Start(ctx)
	m.logger.Info("Created session", "gameId", gameID, "players", len(cfg.PlayerNames))
	return s, nil
}

func (m *Manager) reserve() bool {
	limit := int64(m.cfg.MaxSessions)
	if limit <= 0 {
		m.count.Add(1)
		return true
	}
	for {
		n := m.count.Load()
		if n >= limit {
			return false
		}
		if m.count.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Get 获取会话
func (m *Manager) Get(gameID string) (*Session, bool) {
	val, ok := m.sessions.Load(gameID)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// Remove 移除会话
func (m *Manager) Remove(gameID string) {
	if _, ok := m.sessions.LoadAndDelete(gameID); ok {
		m.count.Add(-1)
		m.logger.Info("Removed session", "gameId", gameID)
	}
}

// Count 当前会话数
func (m *Manager) Count() int {
	return int(m.count.Load())
}

func (m *Manager) evictLoop() {
	for {
		select {
		case now := <-m.evictTicker.C:
			m.evictInactive(context.Background(), now)
		case <-m.stopChan:
			m.logger.Info("Evict loop stopped")
			return
		}
	}
}

// evictInactive 中止并移除长时间无操作的会话；已结束的会话同样按无操作时长回收
func (m *Manager) evictInactive(ctx context.Context, now time.Time) int {
	var toEvict []*Session
	m.sessions.Range(func(_, value any) bool {
		s := value.(*Session)
		if now.Sub(s.LastActive()) > m.cfg.EvictTimeout {
			toEvict = append(toEvict, s)
		}
		return true
	})

	for _, s := range toEvict {
		s.Abort(ctx, "inactive")
		m.Remove(s.ID())
		m.logger.Info("Evicted inactive session", "gameId", s.ID())
	}
	return len(toEvict)
}

// Shutdown 停止淘汰循环并中止所有进行中的对局
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down SessionManager")

	m.stopOnce.Do(func() {
		close(m.stopChan)
		if m.evictTicker != nil {
			m.evictTicker.Stop()
		}
	})

	m.sessions.Range(func(key, value any) bool {
		if err := ctx.Err(); err != nil {
			return false
		}
		s := value.(*Session)
		s.Abort(ctx, "host shutdown")
		return true
	})

	m.logger.Info("SessionManager shutdown complete", "sessions", m.Count())
	return ctx.Err()
}
