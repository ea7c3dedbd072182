package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sudooom.boba/internal/protocol"
	appErrors "sudooom.boba/pkg/errors"
)

// StatusStore 对局公开快照缓存，供 HTTP 查询和旁观
// 快照不含手牌，可以对任何人公开
type StatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusStore 创建快照存储
func NewStatusStore(client *redis.Client, ttl time.Duration) *StatusStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &StatusStore{client: client, ttl: ttl}
}

// SaveSnapshot 覆盖保存快照并续期
func (s *StatusStore) SaveSnapshot(ctx context.Context, snapshot *protocol.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, BuildStatusKey(snapshot.GameID), data, s.ttl).Err(); err != nil {
		return appErrors.ErrStorageError.Wrap(err)
	}
	return nil
}

// LoadSnapshot 读取快照
func (s *StatusStore) LoadSnapshot(ctx context.Context, gameID string) (*protocol.Snapshot, error) {
	data, err := s.client.Get(ctx, BuildStatusKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrGameNotFound
		}
		return nil, appErrors.ErrStorageError.Wrap(err)
	}

	var snapshot protocol.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
