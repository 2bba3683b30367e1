package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, l Limiter, key string) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, key))
		require.NoError(t, l.Fail(ctx, key))
	}
	assert.ErrorIs(t, l.Allow(ctx, key), ErrTooManyAttempts)
	assert.NoError(t, l.Allow(ctx, key+"-other"))

	require.NoError(t, l.Reset(ctx, key))
	assert.NoError(t, l.Allow(ctx, key))
}

func TestMemoryLimiter(t *testing.T) {
	exercise(t, NewMemoryLimiter(3, time.Minute), "mario@example.com")
}

func TestMemoryLimiterWindowExpires(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, 15*time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, l.Fail(ctx, "k"))
	require.NoError(t, l.Fail(ctx, "k"))
	assert.ErrorIs(t, l.Allow(ctx, "k"), ErrTooManyAttempts)

	now = now.Add(15 * time.Minute)
	assert.NoError(t, l.Allow(ctx, "k"))
	require.NoError(t, l.Fail(ctx, "k"))
	assert.NoError(t, l.Allow(ctx, "k"))
}

func TestMemoryLimiterDropsAbandonedKeys(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, 15*time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, l.Fail(ctx, fmt.Sprintf("user%d@example.com", i)))
	}
	assert.Len(t, l.entries, 1000)

	now = now.Add(10 * time.Minute)
	require.NoError(t, l.Fail(ctx, "late@example.com"))
	assert.Len(t, l.entries, 1001)

	now = now.Add(6 * time.Minute)
	require.NoError(t, l.Fail(ctx, "fresh@example.com"))
	assert.Len(t, l.entries, 2)
	assert.Contains(t, l.entries, "late@example.com")
	assert.Contains(t, l.entries, "fresh@example.com")
}

func TestDefaults(t *testing.T) {
	l := NewMemoryLimiter(0, 0)
	assert.Equal(t, DefaultMaxAttempts, l.max)
	assert.Equal(t, DefaultWindow, l.window)
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	exercise(t, NewRedisLimiter(client, 3, time.Minute), "test-"+t.Name())
}
