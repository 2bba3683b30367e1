// Package ratelimit counts failed login attempts per key and blocks a key
// once it reaches the limit within the window.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTooManyAttempts = errors.New("too many attempts")

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// Limiter tracks failures for a key (typically a normalised email).
type Limiter interface {
	// Allow returns ErrTooManyAttempts while key is blocked.
	Allow(ctx context.Context, key string) error
	// Fail records a failed attempt.
	Fail(ctx context.Context, key string) error
	// Reset forgets the failures of key.
	Reset(ctx context.Context, key string) error
}

// RedisLimiter keeps counters in Redis so the limit holds across server
// instances.
type RedisLimiter struct {
	client redis.Cmdable
	max    int
	window time.Duration
	prefix string
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client redis.Cmdable, maxAttempts int, win time.Duration) *RedisLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if win <= 0 {
		win = DefaultWindow
	}
	return &RedisLimiter{client: client, max: maxAttempts, window: win, prefix: "prevengo:login:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	val, err := l.client.Get(ctx, l.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ratelimit: get: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("ratelimit: counter %q: %w", val, err)
	}
	if n >= l.max {
		return ErrTooManyAttempts
	}
	return nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	k := l.prefix + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: incr: %w", err)
	}
	// The window starts with the first failure.
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("ratelimit: expire: %w", err)
		}
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

type bucket struct {
	start time.Time
	count int
}

// MemoryLimiter is the single-process fallback used when no Redis address
// is configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	entries map[string]*bucket
	swept   time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(maxAttempts int, win time.Duration) *MemoryLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if win <= 0 {
		win = DefaultWindow
	}
	return &MemoryLimiter{max: maxAttempts, window: win, now: time.Now, entries: map[string]*bucket{}}
}

// current returns the live window of key, dropping an expired one.
func (l *MemoryLimiter) current(key string) *bucket {
	w, ok := l.entries[key]
	if ok && l.now().Sub(w.start) >= l.window {
		delete(l.entries, key)
		return nil
	}
	return w
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w := l.current(key); w != nil && w.count >= l.max {
		return ErrTooManyAttempts
	}
	return nil
}

// sweep drops every expired window, at most once per window length, so keys
// that never come back do not accumulate.
func (l *MemoryLimiter) sweep() {
	now := l.now()
	if now.Sub(l.swept) < l.window {
		return
	}
	l.swept = now
	for k, w := range l.entries {
		if now.Sub(w.start) >= l.window {
			delete(l.entries, k)
		}
	}
}

func (l *MemoryLimiter) Fail(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep()
	w := l.current(key)
	if w == nil {
		w = &bucket{start: l.now()}
		l.entries[key] = w
	}
	w.count++
	return nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}
