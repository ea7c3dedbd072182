package health

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fixedCount int

func (c fixedCount) Count() int { return int(c) }

func TestChecker_AllDisabled(t *testing.T) {
	h := NewChecker(nil, nil, nil, fixedCount(3))
	status := h.Check(context.Background())

	assert.Equal(t, StateDisabled, status.NATS)
	assert.Equal(t, StateDisabled, status.Redis)
	assert.Equal(t, StateDisabled, status.Database)
	assert.Equal(t, 3, status.Sessions)
	assert.True(t, h.IsHealthy(context.Background()))
}

func TestChecker_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	h := NewChecker(nil, client, nil, nil)
	h.timeout = 200 * time.Millisecond
	status := h.Check(context.Background())

	assert.Equal(t, StateDisconnected, status.Redis)
	assert.False(t, status.Healthy())
}
