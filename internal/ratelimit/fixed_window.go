// Package ratelimit throttles login attempts with a Redis-backed fixed window.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

const (
	defaultPrefix = "lodge:ratelimit"
	redisTimeout  = 2 * time.Second
)

// FixedWindowLimiter limits requests per key in a fixed time window.
// Counters live in Redis so every server instance shares them.
type FixedWindowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	client *redis.Client
	prefix string
}

// Options configures NewFixedWindowLimiter.
type Options struct {
	Addr     string
	Password string
	Prefix   string
	Limit    int
	Window   time.Duration
	Now      func() time.Time
}

// NewFixedWindowLimiter creates a Redis-backed limiter.
func NewFixedWindowLimiter(opts Options) (*FixedWindowLimiter, error) {
	if opts.Limit <= 0 || opts.Window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &FixedWindowLimiter{
		limit:  opts.Limit,
		window: opts.Window,
		now:    now,
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: opts.Password,
		}),
		prefix: prefix,
	}, nil
}

// Allow reports whether key is within quota. Redis failures fail closed.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	if windowMs <= 0 {
		return true
	}
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false
	}
	return count <= int64(l.limit)
}

// Ping checks that Redis is reachable.
func (l *FixedWindowLimiter) Ping(ctx context.Context) error {
	if l == nil {
		return errors.New("rate limiter is nil")
	}
	return l.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (l *FixedWindowLimiter) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}
