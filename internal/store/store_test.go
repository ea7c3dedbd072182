package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/model"
	"sudooom.boba/internal/protocol"
	appErrors "sudooom.boba/pkg/errors"
)

func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 使用测试专用数据库
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("跳过测试：无法连接 Redis: %v", err)
	}

	client.FlushDB(ctx)
	return client
}

func newLobby(id string) *model.Lobby {
	return &model.Lobby{
		ID:         id,
		Host:       "alice",
		RoundCount: 3,
		Status:     model.LobbyWaiting,
		Players:    []string{"alice"},
		Secrets:    []string{"alice-secret"},
		CreatedAt:  time.Now(),
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "boba:lobby:42", BuildLobbyKey("42"))
	assert.Equal(t, "boba:game:42:status", BuildStatusKey("42"))
}

func TestLobbyStore_CreateAndJoin(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()
	s := NewLobbyStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newLobby("l1")))
	assert.True(t, appErrors.Is(s.Create(ctx, newLobby("l1")), appErrors.ErrLobbyStarted))

	ttl, err := client.TTL(ctx, BuildLobbyKey("l1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	lobby, seat, err := s.Join(ctx, "l1", "bob", "", "bob-secret")
	require.NoError(t, err)
	assert.Equal(t, 1, seat)
	assert.Equal(t, []string{"alice", "bob"}, lobby.Players)
	assert.Equal(t, []string{"alice-secret", "bob-secret"}, lobby.Secrets)

	_, seat, err = s.Join(ctx, "l1", "bob", "bob-secret", "other")
	require.NoError(t, err)
	assert.Equal(t, 1, seat, "带原密钥重复加入返回原座位")

	_, _, err = s.Join(ctx, "l1", "bob", "wrong", "other")
	assert.True(t, appErrors.Is(err, appErrors.ErrNameTaken))

	stored, err := s.Get(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice-secret", "bob-secret"}, stored.Secrets, "密钥随大厅一起保存")

	_, _, err = s.Join(ctx, "missing", "bob", "", "x")
	assert.True(t, appErrors.Is(err, appErrors.ErrLobbyNotFound))

	ttl, err = client.TTL(ctx, BuildLobbyKey("l1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "更新保留 TTL")
}

func TestLobbyStore_Full(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()
	s := NewLobbyStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, newLobby("l2")))
	for i := 1; i < engine.MaxPlayers; i++ {
		_, _, err := s.Join(ctx, "l2", fmt.Sprintf("p%d", i), "", fmt.Sprintf("s%d", i))
		require.NoError(t, err)
	}
	_, _, err := s.Join(ctx, "l2", "late", "", "late")
	assert.True(t, appErrors.Is(err, appErrors.ErrLobbyFull))
}

func TestLobbyStore_ConcurrentJoinsGetDistinctSeats(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()
	s := NewLobbyStore(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newLobby("l3")))

	var wg sync.WaitGroup
	seats := make([]int, 3)
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, seats[i], errs[i] = s.Join(ctx, "l3", fmt.Sprintf("p%d", i), "", fmt.Sprintf("s%d", i))
		}(i)
	}
	wg.Wait()

	seen := map[int]bool{}
	for i := range seats {
		if errs[i] != nil {
			continue
		}
		assert.False(t, seen[seats[i]], "座位 %d 被重复分配", seats[i])
		seen[seats[i]] = true
	}

	lobby, err := s.Get(ctx, "l3")
	require.NoError(t, err)
	assert.Len(t, lobby.Players, 1+len(seen))
}

func TestLobbyStore_MarkStarted(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()
	s := NewLobbyStore(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newLobby("l4")))

	_, err := s.MarkStarted(ctx, "l4", "alice", "alice-secret")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEnough))

	_, _, err = s.Join(ctx, "l4", "bob", "", "bob-secret")
	require.NoError(t, err)

	_, err = s.MarkStarted(ctx, "l4", "bob", "bob-secret")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotHost))

	_, err = s.MarkStarted(ctx, "l4", "alice", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotHost), "只知道房主名字不能开局")

	lobby, err := s.MarkStarted(ctx, "l4", "alice", "alice-secret")
	require.NoError(t, err)
	assert.Equal(t, model.LobbyStarted, lobby.Status)

	_, _, err = s.Join(ctx, "l4", "carol", "", "carol-secret")
	assert.True(t, appErrors.Is(err, appErrors.ErrLobbyStarted))

	require.NoError(t, s.Delete(ctx, "l4"))
	_, err = s.Get(ctx, "l4")
	assert.True(t, appErrors.Is(err, appErrors.ErrLobbyNotFound))
}

func TestStatusStore_SaveAndLoad(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()
	s := NewStatusStore(client, time.Minute)
	ctx := context.Background()

	_, err := s.LoadSnapshot(ctx, "g1")
	assert.True(t, appErrors.Is(err, appErrors.ErrGameNotFound))

	snap := &protocol.Snapshot{
		GameID:   "g1",
		Seed:     99,
		DeckSize: 104,
		PlayersPublic: []engine.PlayerPublic{
			{ID: 0, Name: "alice", Public: engine.Cards{engine.ThaiTea: 2}, Boosted: engine.Cards{}},
		},
		GameStatus: engine.GameStatus{Round: 1, Turn: 3, RoundCount: 3, PassDirection: engine.PassLeft},
	}
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	got, err := s.LoadSnapshot(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, uint64(99), got.Seed)
	assert.Equal(t, 3, got.GameStatus.Turn)
	assert.Equal(t, 2, got.PlayersPublic[0].Public.Count(engine.ThaiTea))
}
