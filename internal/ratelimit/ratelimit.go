// Package ratelimit implements fixed-window request counting per client key.
//
// A counter starts at zero, is incremented by every allowed request, and
// expires one window after the most recent allowed request. Once the counter
// reaches the limit further requests are rejected without touching it, so
// the key unlocks exactly one window after its last accepted request.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// KeyPrefix namespaces limiter counters in a shared cache.
const KeyPrefix = "ratelimit:"

// Result describes one limiter decision.
type Result struct {
	Allowed bool
	// Count is the counter value after the decision.
	Count int
	// RetryAfter is how long until the counter expires.
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Config holds the limit and window shared by all implementations.
type Config struct {
	Limit  int
	Window time.Duration
}

// Validate checks that the limit and window are positive.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate window must be positive, got %s", c.Window)
	}
	return nil
}
