package ports

import (
	"context"
	"time"
)

// LimitResult reports the outcome of a rate-limit check.
type LimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter counts requests per key over a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (LimitResult, error)
}
