package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sudooom.boba/internal/model"
	appErrors "sudooom.boba/pkg/errors"
)

// maxTxRetries 乐观锁冲突时的重试次数
const maxTxRetries = 5

// lobbyRecord Redis 中保存的大厅，比公开视图多出座位密钥
type lobbyRecord struct {
	*model.Lobby
	Secrets []string `json:"secrets"`
}

func encodeLobby(lobby *model.Lobby) ([]byte, error) {
	data, err := json.Marshal(lobbyRecord{Lobby: lobby, Secrets: lobby.Secrets})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lobby: %w", err)
	}
	return data, nil
}

func decodeLobby(data []byte) (*model.Lobby, error) {
	record := lobbyRecord{Lobby: &model.Lobby{}}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lobby: %w", err)
	}
	record.Lobby.Secrets = record.Secrets
	return record.Lobby, nil
}

// LobbyStore 大厅存储，整个大厅以 JSON 保存在一个 Key 中
// 加入和开局用 WATCH 事务保证座位号不冲突
type LobbyStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewLobbyStore 创建大厅存储
func NewLobbyStore(client *redis.Client, ttl time.Duration) *LobbyStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LobbyStore{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "LobbyStore"),
	}
}

// Create 保存新大厅，id 已存在时返回 ErrLobbyStarted
func (s *LobbyStore) Create(ctx context.Context, lobby *model.Lobby) error {
	data, err := encodeLobby(lobby)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, BuildLobbyKey(lobby.ID), data, s.ttl).Result()
	if err != nil {
		return appErrors.ErrStorageError.Wrap(err)
	}
	if !ok {
		return appErrors.ErrLobbyStarted
	}
	return nil
}

// Get 读取大厅
func (s *LobbyStore) Get(ctx context.Context, lobbyID string) (*model.Lobby, error) {
	return s.get(ctx, s.client, lobbyID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *LobbyStore) get(ctx context.Context, c getter, lobbyID string) (*model.Lobby, error) {
	data, err := c.Get(ctx, BuildLobbyKey(lobbyID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrLobbyNotFound
		}
		return nil, appErrors.ErrStorageError.Wrap(err)
	}

	return decodeLobby(data)
}

// update 在 WATCH 事务中读取、修改并写回大厅
func (s *LobbyStore) update(ctx context.Context, lobbyID string, fn func(*model.Lobby) error) (*model.Lobby, error) {
	key := BuildLobbyKey(lobbyID)
	var result *model.Lobby

	txf := func(tx *redis.Tx) error {
		lobby, err := s.get(ctx, tx, lobbyID)
		if err != nil {
			return err
		}
		if err := fn(lobby); err != nil {
			return err
		}
		data, err := encodeLobby(lobby)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		if err == nil {
			result = lobby
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("Lobby update conflict, retrying", "lobbyId", lobbyID, "attempt", i+1)
			continue
		}
		return result, err
	}
	return nil, appErrors.ErrStorageError.Wrap(fmt.Errorf("lobby %s: too many concurrent updates", lobbyID))
}

// Join 加入大厅，返回座位号
// 同名玩家需带上原座位密钥 proof 才能找回座位；新玩家以 issued 为密钥
func (s *LobbyStore) Join(ctx context.Context, lobbyID, name, proof, issued string) (*model.Lobby, int, error) {
	seat := -1
	lobby, err := s.update(ctx, lobbyID, func(l *model.Lobby) error {
		var err error
		seat, err = l.AddPlayer(name, proof, issued)
		return err
	})
	if err != nil {
		return nil, -1, err
	}
	return lobby, seat, nil
}

// MarkStarted 标记大厅已开局，只有持有 0 号座位密钥的房主可以开局
func (s *LobbyStore) MarkStarted(ctx context.Context, lobbyID, host, secret string) (*model.Lobby, error) {
	return s.update(ctx, lobbyID, func(l *model.Lobby) error {
		return l.Start(host, secret)
	})
}

// Delete 删除大厅
func (s *LobbyStore) Delete(ctx context.Context, lobbyID string) error {
	if err := s.client.Del(ctx, BuildLobbyKey(lobbyID)).Err(); err != nil {
		return appErrors.ErrStorageError.Wrap(err)
	}
	return nil
}
