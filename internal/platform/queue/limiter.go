package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per key inside a fixed window.
type LoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, maxAttempts: int64(maxAttempts), window: window}
}

func limiterKey(key string) string { return "login_failures:" + key }

func (l *LoginLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Get(ctx, limiterKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading login failures: %w", err)
	}
	return n >= l.maxAttempts, nil
}

func (l *LoginLimiter) Fail(ctx context.Context, key string) error {
	k := limiterKey(key)
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("counting login failure: %w", err)
	}
	// the window starts at the first failure
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("setting login failure window: %w", err)
		}
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, limiterKey(key)).Err()
}
