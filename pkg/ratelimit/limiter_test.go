package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemory()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "login:ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, retry, err := l.Allow(ctx, "login:ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	// Other keys have their own bucket.
	ok, _, _ = l.Allow(ctx, "login:ip:5.6.7.8", 3, time.Minute)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _, _ = l.Allow(ctx, "login:ip:1.2.3.4", 3, time.Minute)
	assert.True(t, ok, "a new window resets the count")
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client, err := ConnectRedis(ctx, addr, "", 0)
	require.NoError(t, err)
	defer client.Close()

	l := NewRedis(client)
	key := "test:" + uuid.NewString()
	defer client.Del(ctx, l.Prefix+key)

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, key, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, retry, err := l.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Minute)
}
