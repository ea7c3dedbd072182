package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

const (
	StateConnected    = "connected"
	StateDisconnected = "disconnected"
	StateDisabled     = "disabled"
)

// Status 健康状态
type Status struct {
	NATS     string `json:"nats"`
	Redis    string `json:"redis"`
	Database string `json:"database"`
	Sessions int    `json:"sessions"`
}

// Healthy 已启用的依赖都连通
func (s *Status) Healthy() bool {
	for _, state := range []string{s.NATS, s.Redis, s.Database} {
		if state == StateDisconnected {
			return false
		}
	}
	return true
}

// SessionCounter 当前会话数
type SessionCounter interface {
	Count() int
}

// Checker 健康检查器，未配置的依赖报告为 disabled
type Checker struct {
	nc          *nats.Conn
	redisClient *redis.Client
	db          *pgxpool.Pool
	sessions    SessionCounter
	timeout     time.Duration
}

// NewChecker 创建健康检查器，参数均可为空
func NewChecker(nc *nats.Conn, redisClient *redis.Client, db *pgxpool.Pool, sessions SessionCounter) *Checker {
	return &Checker{
		nc:          nc,
		redisClient: redisClient,
		db:          db,
		sessions:    sessions,
		timeout:     2 * time.Second,
	}
}

// Check 执行健康检查
func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{
		NATS:     StateDisabled,
		Redis:    StateDisabled,
		Database: StateDisabled,
	}

	if h.nc != nil {
		status.NATS = state(h.nc.IsConnected())
	}

	if h.redisClient != nil {
		redisCtx, cancel := context.WithTimeout(ctx, h.timeout)
		status.Redis = state(h.redisClient.Ping(redisCtx).Err() == nil)
		cancel()
	}

	if h.db != nil {
		dbCtx, cancel := context.WithTimeout(ctx, h.timeout)
		status.Database = state(h.db.Ping(dbCtx) == nil)
		cancel()
	}

	if h.sessions != nil {
		status.Sessions = h.sessions.Count()
	}
	return status
}

// IsHealthy 检查是否健康
func (h *Checker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx).Healthy()
}

func state(ok bool) string {
	if ok {
		return StateConnected
	}
	return StateDisconnected
}
