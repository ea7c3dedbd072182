package handler

import (
	"context"
	"log/slog"

	"sudooom.boba/internal/protocol"
	"sudooom.boba/internal/session"
	"sudooom.boba/internal/token"
	appErrors "sudooom.boba/pkg/errors"
)

// SessionFinder 按对局 id 查找会话
type SessionFinder interface {
	Get(gameID string) (*session.Session, bool)
}

// SeatVerifier 校验座位凭证
type SeatVerifier interface {
	ValidateFor(tokenString, gameID string) (*token.SeatClaims, error)
}

// GameHandler 玩家请求处理器
// 座位来自凭证而不是请求体，玩家不能冒充其他座位
type GameHandler struct {
	sessions SessionFinder
	seats    SeatVerifier
	logger   *slog.Logger
}

// NewGameHandler 创建处理器
func NewGameHandler(sessions SessionFinder, seats SeatVerifier) *GameHandler {
	return &GameHandler{
		sessions: sessions,
		seats:    seats,
		logger:   slog.Default().With("component", "GameHandler"),
	}
}

// HandleClientMessage 处理一条玩家请求
// 成功时回复该玩家最新视图（离开时回复结束信息），失败时回复错误
func (h *GameHandler) HandleClientMessage(ctx context.Context, msg *protocol.ClientMessage) *protocol.HostMessage {
	claims, err := h.seats.ValidateFor(msg.Token, msg.GameID)
	if err != nil {
		h.logger.Warn("Rejected seat token", "gameId", msg.GameID, "error", err)
		return errorMessage(msg.GameID, err)
	}

	s, ok := h.sessions.Get(msg.GameID)
	if !ok {
		return errorMessage(msg.GameID, appErrors.ErrGameNotFound)
	}

	playerID := claims.PlayerID
	p := msg.Payload

	switch {
	case p.SubmitTurn != nil:
		err = s.Submit(ctx, playerID, p.SubmitTurn.Selected, p.SubmitTurn.Remaining)
	case p.ToggleDrinkTray != nil:
		err = s.ToggleDrinkTray(ctx, playerID, p.ToggleDrinkTray.Activate)
	case p.Leave != nil:
		err = s.Disconnect(ctx, playerID)
	case p.Sync != nil:
	default:
		err = appErrors.ErrInvalidParams
	}
	if err != nil {
		h.logger.Debug("Request rejected", "gameId", msg.GameID, "player", playerID, "error", err)
		return errorMessage(msg.GameID, err)
	}

	if ended, over := s.Ended(); over {
		return &protocol.HostMessage{GameID: msg.GameID, Payload: protocol.HostPayload{GameEnded: ended}}
	}

	update, err := s.Update(playerID)
	if err != nil {
		return errorMessage(msg.GameID, err)
	}
	return &protocol.HostMessage{GameID: msg.GameID, Payload: protocol.HostPayload{GameUpdate: update}}
}

func errorMessage(gameID string, err error) *protocol.HostMessage {
	return &protocol.HostMessage{
		GameID: gameID,
		Payload: protocol.HostPayload{Error: &protocol.Error{
			Code:    appErrors.GetCode(err),
			Message: appErrors.GetMessage(err),
		}},
	}
}
