package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// allowScript reads the counter, rejects at the limit without modifying it,
// otherwise increments it and pushes its expiry one window out. Running it as
// a script makes the read and the increment a single atomic step.
//
// KEYS[1] counter key, ARGV[1] limit, ARGV[2] window in milliseconds.
// Returns {allowed (0|1), count, ttl ms}.
var allowScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= limit then
	return {0, current, redis.call('PTTL', KEYS[1])}
end
current = redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], window)
return {1, current, window}
`)

// RedisLimiter keeps counters in Redis so every server instance shares them.
type RedisLimiter struct {
	client redis.Scripter
	cfg    Config
}

// NewRedisLimiter creates a limiter backed by client.
func NewRedisLimiter(client redis.Scripter, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	raw, err := allowScript.Run(ctx, l.client,
		[]string{KeyPrefix + key},
		l.cfg.Limit, l.cfg.Window.Milliseconds(),
	).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return Result{}, fmt.Errorf("unexpected rate limit reply: %v", raw)
	}
	nums := make([]int64, len(values))
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return Result{}, fmt.Errorf("unexpected rate limit reply element %d: %v", i, v)
		}
		nums[i] = n
	}

	res := Result{Allowed: nums[0] == 1, Count: int(nums[1])}
	if nums[2] > 0 {
		res.RetryAfter = time.Duration(nums[2]) * time.Millisecond
	}
	return res, nil
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
