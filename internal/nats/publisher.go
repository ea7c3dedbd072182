package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"sudooom.boba/internal/protocol"
)

// Publisher 主机 -> 玩家推送
type Publisher struct {
	nc       *nats.Conn
	subjects Subjects
	logger   *slog.Logger
}

// NewPublisher 创建推送器
func NewPublisher(nc *nats.Conn, subjects Subjects) *Publisher {
	return &Publisher{
		nc:       nc,
		subjects: subjects,
		logger:   slog.Default().With("component", "nats.Publisher"),
	}
}

// SendUpdate 推送单个玩家的对局视图，只发往该玩家自己的 Subject
func (p *Publisher) SendUpdate(_ context.Context, gameID string, update *protocol.GameUpdate) error {
	msg := &protocol.HostMessage{GameID: gameID, Payload: protocol.HostPayload{GameUpdate: update}}
	return p.publish(p.subjects.Player(gameID, update.PlayerID), msg)
}

// SendEnded 广播对局结束
func (p *Publisher) SendEnded(_ context.Context, gameID string, ended *protocol.GameEnded) error {
	msg := &protocol.HostMessage{GameID: gameID, Payload: protocol.HostPayload{GameEnded: ended}}
	return p.publish(p.subjects.Broadcast(gameID), msg)
}

// SendError 只发给出错的玩家
func (p *Publisher) SendError(_ context.Context, gameID string, playerID int, e *protocol.Error) error {
	msg := &protocol.HostMessage{GameID: gameID, Payload: protocol.HostPayload{Error: e}}
	return p.publish(p.subjects.Player(gameID, playerID), msg)
}

func (p *Publisher) publish(subject string, msg *protocol.HostMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal message", "error", err)
		return err
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish", "subject", subject, "error", err)
		return err
	}
	p.logger.Debug("Published message", "subject", subject)
	return nil
}
