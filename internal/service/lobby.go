package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/model"
	"sudooom.boba/internal/session"
	"sudooom.boba/internal/snowflake"
	"sudooom.boba/internal/token"
	appErrors "sudooom.boba/pkg/errors"
)

// LobbyRepository 大厅存储
type LobbyRepository interface {
	Create(ctx context.Context, lobby *model.Lobby) error
	Get(ctx context.Context, lobbyID string) (*model.Lobby, error)
	Join(ctx context.Context, lobbyID, name, proof, issued string) (*model.Lobby, int, error)
	MarkStarted(ctx context.Context, lobbyID, host, secret string) (*model.Lobby, error)
	Delete(ctx context.Context, lobbyID string) error
}

// CreateLobbyRequest 创建大厅请求
type CreateLobbyRequest struct {
	Host       string  `json:"host" binding:"required,min=1,max=32"`
	RoundCount int     `json:"round_count" binding:"min=0,max=10"`
	Seed       *uint64 `json:"seed"`
}

// JoinLobbyRequest 加入大厅请求，重连时带上原座位密钥
type JoinLobbyRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=32"`
	Secret string `json:"secret"`
}

// StartGameRequest 开局请求
type StartGameRequest struct {
	Host   string `json:"host" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// ClaimSeatRequest 开局后领取座位凭证
type ClaimSeatRequest struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// LobbyTicket 入座结果，Secret 只返回给入座的玩家本人
type LobbyTicket struct {
	Lobby  *model.Lobby `json:"lobby"`
	Seat   int          `json:"seat"`
	Secret string       `json:"secret"`
}

// SeatTicket 座位凭证
type SeatTicket struct {
	GameID    string `json:"game_id"`
	PlayerID  int    `json:"player_id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// StartGameResponse 开局响应，只含房主自己的凭证，其他玩家各自领取
type StartGameResponse struct {
	GameID  string     `json:"game_id"`
	Seed    uint64     `json:"seed"`
	Players []string   `json:"players"`
	Seat    SeatTicket `json:"seat"`
}

// GameDefaults 开局时使用的默认规则
type GameDefaults struct {
	RoundCount   int
	Distribution engine.Cards
}

// LobbyService 大厅服务：开局前的组队，开局后交给会话管理器
// 对局 id 与大厅 id 相同
type LobbyService struct {
	lobbies  LobbyRepository
	sessions *session.Manager
	tokens   *token.Service
	sfNode   *snowflake.Node
	defaults GameDefaults
	logger   *slog.Logger
}

// NewLobbyService 创建大厅服务
func NewLobbyService(
	lobbies LobbyRepository,
	sessions *session.Manager,
	tokens *token.Service,
	sfNode *snowflake.Node,
	defaults GameDefaults,
) *LobbyService {
	return &LobbyService{
		lobbies:  lobbies,
		sessions: sessions,
		tokens:   tokens,
		sfNode:   sfNode,
		defaults: defaults,
		logger:   slog.Default().With("component", "LobbyService"),
	}
}

// CreateLobby 创建大厅，房主占 0 号座位
func (s *LobbyService) CreateLobby(ctx context.Context, req *CreateLobbyRequest) (*LobbyTicket, error) {
	rounds := req.RoundCount
	if rounds == 0 {
		rounds = s.defaults.RoundCount
	}
	secret, err := newSeatSecret()
	if err != nil {
		return nil, appErrors.ErrServerError.Wrap(err)
	}

	lobby := &model.Lobby{
		ID:         s.sfNode.Generate().String(),
		Host:       req.Host,
		RoundCount: rounds,
		Seed:       req.Seed,
		Status:     model.LobbyWaiting,
		Players:    []string{req.Host},
		Secrets:    []string{secret},
		CreatedAt:  time.Now(),
	}
	if err := s.lobbies.Create(ctx, lobby); err != nil {
		return nil, err
	}

	s.logger.Info("Lobby created", "lobbyId", lobby.ID, "host", lobby.Host)
	return &LobbyTicket{Lobby: lobby, Seat: 0, Secret: secret}, nil
}

// JoinLobby 加入大厅；带着原密钥的同名玩家找回原座位
func (s *LobbyService) JoinLobby(ctx context.Context, lobbyID string, req *JoinLobbyRequest) (*LobbyTicket, error) {
	issued, err := newSeatSecret()
	if err != nil {
		return nil, appErrors.ErrServerError.Wrap(err)
	}
	lobby, seat, err := s.lobbies.Join(ctx, lobbyID, req.Name, req.Secret, issued)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Player joined lobby", "lobbyId", lobbyID, "name", req.Name, "seat", seat)
	return &LobbyTicket{Lobby: lobby, Seat: seat, Secret: lobby.Secrets[seat]}, nil
}

// GetLobby 查询大厅
func (s *LobbyService) GetLobby(ctx context.Context, lobbyID string) (*model.Lobby, error) {
	lobby, err := s.lobbies.Get(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	lobby.Secrets = nil
	return lobby, nil
}

// StartGame 房主开局：创建会话，只给房主签发自己的凭证
func (s *LobbyService) StartGame(ctx context.Context, lobbyID string, req *StartGameRequest) (*StartGameResponse, error) {
	lobby, err := s.lobbies.MarkStarted(ctx, lobbyID, req.Host, req.Secret)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, lobby.ID, engine.Config{
		PlayerNames:  lobby.Players,
		Seed:         lobby.Seed,
		Distribution: s.defaults.Distribution,
		RoundCount:   lobby.RoundCount,
	})
	if err != nil {
		s.logger.Error("Failed to start game", "lobbyId", lobbyID, "error", err)
		// 大厅已标记开局，留着只会是一个进不去的房间
		if delErr := s.lobbies.Delete(ctx, lobbyID); delErr != nil {
			s.logger.Warn("Failed to delete lobby", "lobbyId", lobbyID, "error", delErr)
		}
		return nil, err
	}

	ticket, err := s.issue(sess.ID(), 0, lobby.Host)
	if err != nil {
		return nil, err
	}
	resp := &StartGameResponse{
		GameID:  sess.ID(),
		Seed:    sess.Snapshot().Seed,
		Players: lobby.Players,
		Seat:    *ticket,
	}

	s.logger.Info("Game started", "gameId", resp.GameID, "players", len(lobby.Players), "seed", resp.Seed)
	return resp, nil
}

// ClaimSeat 开局后玩家凭座位密钥领取座位凭证，重连时也走这里
// 名字不存在与密钥不对返回同一个错误
func (s *LobbyService) ClaimSeat(ctx context.Context, lobbyID string, req *ClaimSeatRequest) (*SeatTicket, error) {
	lobby, err := s.lobbies.Get(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if lobby.Status != model.LobbyStarted {
		return nil, appErrors.ErrGameNotFound
	}
	seat, ok := lobby.Seat(req.Name)
	if !ok || !lobby.CheckSecret(seat, req.Secret) {
		return nil, appErrors.ErrSeatSecret
	}
	return s.issue(lobby.ID, seat, req.Name)
}

// newSeatSecret 随机座位密钥
func newSeatSecret() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *LobbyService) issue(gameID string, seat int, name string) (*SeatTicket, error) {
	tok, expiresAt, err := s.tokens.Issue(gameID, seat, name)
	if err != nil {
		return nil, appErrors.ErrServerError.Wrap(err)
	}
	return &SeatTicket{
		GameID:    gameID,
		PlayerID:  seat,
		Name:      name,
		Token:     tok,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}
