package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/taskito/backend/ports"
)

// MemoryLimiter is an in-process fixed-window limiter for tests and
// single-instance setups.
type MemoryLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
	window time.Duration
}

var _ ports.RateLimiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter creates a new in-memory fixed-window limiter
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		counts: make(map[string]int),
		limit:  limit,
		window: window,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (ports.LimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	bucket := now.Truncate(l.window)
	bucketKey := key + ":" + bucket.Format(time.RFC3339Nano)

	l.counts[bucketKey]++
	count := l.counts[bucketKey]

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
