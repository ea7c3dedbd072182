package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/protocol"
	appErrors "sudooom.boba/pkg/errors"
)

// 传输层失败时回给玩家的提示
const (
	msgBusy          = "服务繁忙，请稍后重试"
	msgHandlerFailed = "请求处理失败"
)

// RequestHandler 处理一条玩家请求并返回回复
type RequestHandler interface {
	HandleClientMessage(ctx context.Context, msg *protocol.ClientMessage) *protocol.HostMessage
}

// SubscriberConfig Worker Pool 配置
type SubscriberConfig struct {
	WorkerCount int // Worker 数量
	BufferSize  int // 消息缓冲区大小
}

// RequestSubscriber 玩家请求订阅器
// 同一对局的请求由会话内部加锁串行化，worker 之间不需要按对局分片
type RequestSubscriber struct {
	nc           *nats.Conn
	subject      string
	handler      RequestHandler
	logger       *slog.Logger
	subscription *nats.Subscription
	config       SubscriberConfig
	msgChan      chan *nats.Msg
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc
}

// NewRequestSubscriber 创建订阅器
func NewRequestSubscriber(nc *nats.Conn, subjects Subjects, handler RequestHandler, config SubscriberConfig) *RequestSubscriber {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 16
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}

	return &RequestSubscriber{
		nc:      nc,
		subject: subjects.Requests(),
		handler: handler,
		logger:  slog.Default().With("component", "nats.Subscriber"),
		config:  config,
	}
}

// Start 启动订阅
func (s *RequestSubscriber) Start(ctx context.Context) error {
	s.msgChan = make(chan *nats.Msg, s.config.BufferSize)

	workerCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(workerCtx)
	}

	sub, err := s.nc.QueueSubscribe(s.subject, QueueGroupHost, func(msg *nats.Msg) {
		select {
		case s.msgChan <- msg:
		default:
			s.logger.Warn("Request buffer full, dropping request", "bufferSize", s.config.BufferSize)
			s.respond(msg, errorReply("", engine.External(msgBusy)))
		}
	})
	if err != nil {
		cancel()
		return err
	}

	s.subscription = sub
	s.logger.Info("NATS subscriber started",
		"subject", s.subject,
		"workerCount", s.config.WorkerCount,
		"bufferSize", s.config.BufferSize,
	)
	return nil
}

func (s *RequestSubscriber) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.msgChan:
			if !ok {
				return
			}
			s.respond(msg, s.handle(ctx, msg.Data))
		}
	}
}

// handle 解码并分发一条请求，解码失败时直接回复错误
func (s *RequestSubscriber) handle(ctx context.Context, data []byte) (reply *protocol.HostMessage) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Request handler panic", "panic", r)
			reply = errorReply("", engine.External(msgHandlerFailed))
		}
	}()

	msg, err := protocol.DecodeClientMessage(data)
	if err != nil {
		s.logger.Warn("Invalid client message", "error", err)
		return errorReply("", appErrors.ErrInvalidParams.Wrap(err))
	}
	return s.handler.HandleClientMessage(ctx, msg)
}

func (s *RequestSubscriber) respond(msg *nats.Msg, reply *protocol.HostMessage) {
	if msg.Reply == "" || reply == nil {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("Failed to marshal reply", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Error("Failed to respond", "error", err)
	}
}

// Stop 停止订阅
func (s *RequestSubscriber) Stop() error {
	if s.subscription != nil {
		if err := s.subscription.Unsubscribe(); err != nil {
			s.logger.Error("Failed to unsubscribe", "error", err)
		}
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	s.wg.Wait()
	s.logger.Info("NATS subscriber stopped")
	return nil
}

// GetBufferUsage 缓冲区使用情况
func (s *RequestSubscriber) GetBufferUsage() (used, capacity int) {
	if s.msgChan == nil {
		return 0, s.config.BufferSize
	}
	return len(s.msgChan), cap(s.msgChan)
}

func errorReply(gameID string, err error) *protocol.HostMessage {
	return &protocol.HostMessage{
		GameID: gameID,
		Payload: protocol.HostPayload{Error: &protocol.Error{
			Code:    appErrors.GetCode(err),
			Message: appErrors.GetMessage(err),
		}},
	}
}
