package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold is the number of tracked keys above which expired entries are dropped.
const sweepThreshold = 10000

type counter struct {
	count   int
	expires time.Time
}

// MemoryLimiter keeps counters in process memory. It is safe for concurrent use
// but only limits requests served by this process.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	counters map[string]*counter
}

// NewMemoryLimiter creates an in-process limiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:      cfg,
		now:      time.Now,
		counters: make(map[string]*counter),
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.counters) > sweepThreshold {
		l.sweep(now)
	}

	c, ok := l.counters[key]
	if !ok || !now.Before(c.expires) {
		c = &counter{}
		l.counters[key] = c
	}

	if c.count >= l.cfg.Limit {
		return Result{Allowed: false, Count: c.count, RetryAfter: c.expires.Sub(now)}, nil
	}

	c.count++
	c.expires = now.Add(l.cfg.Window)
	return Result{Allowed: true, Count: c.count, RetryAfter: l.cfg.Window}, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for k, c := range l.counters {
		if !now.Before(c.expires) {
			delete(l.counters, k)
		}
	}
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}
