// Package limiter provides fixed-window rate limiting backed by Redis.
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskito/backend/ports"
)

// RedisLimiter counts requests per key in fixed windows. Counters live in a
// Redis key per (key, window) bucket and expire with the window, so stale
// buckets clean themselves up.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

var _ ports.RateLimiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a new Redis-backed fixed-window limiter
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "taskito:ratelimit:",
		limit:  limit,
		window: window,
	}
}

// Allow increments the counter for key's current window and reports whether
// the request fits the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (ports.LimitResult, error) {
	now := time.Now()
	bucket := now.Truncate(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, bucket.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return ports.LimitResult{}, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return ports.LimitResult{
		Allowed:    count <= l.limit,
		Remaining:  remaining,
		RetryAfter: time.Until(bucket.Add(l.window)),
	}, nil
}
