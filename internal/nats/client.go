package nats

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"sudooom.boba/internal/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 2 * time.Second
)

// Client 主机到 NATS 的连接
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewClient 连接 NATS，断线后按配置自动重连
func NewClient(cfg config.NATSConfig) (*Client, error) {
	logger := slog.Default().With("component", "nats")

	conn, err := nats.Connect(cfg.URL, connectOptions(cfg, logger)...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}
	logger.Info("Connected to NATS", "url", conn.ConnectedUrl(), "serverId", conn.ConnectedServerId())
	return &Client{conn: conn, logger: logger}, nil
}

func connectOptions(cfg config.NATSConfig, logger *slog.Logger) []nats.Option {
	return []nats.Option{
		nats.Name("boba-host"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		// 慢消费者等异步错误只会从这里冒出来
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			logger.Error("NATS async error", "subject", subject, "error", err)
		}),
	}
}

// Conn 底层连接
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// Ping 与服务器往返一次
func (c *Client) Ping() error {
	if c.conn == nil {
		return nats.ErrConnectionClosed
	}
	return c.conn.FlushTimeout(pingTimeout)
}

// Close 排空订阅后关闭，排空失败则直接关闭
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("NATS drain failed, closing", "error", err)
		c.conn.Close()
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}
