package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestLimiter(t *testing.T, addr string, limit int, now func() time.Time) *FixedWindowLimiter {
	t.Helper()
	limiter, err := NewFixedWindowLimiter(Options{Addr: addr, Prefix: "test:ratelimit", Limit: limit, Window: time.Minute, Now: now})
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter
}

func TestFixedWindowLimiter(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter := newTestLimiter(t, redis.Addr(), 2, nil)
	ctx := context.Background()

	if !limiter.Allow(ctx, "10.0.0.1") {
		t.Fatalf("first request should pass")
	}
	if !limiter.Allow(ctx, "10.0.0.1") {
		t.Fatalf("second request should pass")
	}
	if limiter.Allow(ctx, "10.0.0.1") {
		t.Fatalf("third request should be blocked")
	}
	if !limiter.Allow(ctx, "10.0.0.2") {
		t.Fatalf("other keys have their own quota")
	}
}

func TestFixedWindowLimiterNextWindow(t *testing.T) {
	redis := miniredis.RunT(t)
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, redis.Addr(), 1, func() time.Time { return now })
	ctx := context.Background()

	if !limiter.Allow(ctx, "ip") {
		t.Fatalf("first request should pass")
	}
	if limiter.Allow(ctx, "ip") {
		t.Fatalf("second request in the same window should be blocked")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow(ctx, "ip") {
		t.Fatalf("a new window should reset the quota")
	}
}

func TestFixedWindowLimiterFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter := newTestLimiter(t, redis.Addr(), 1, nil)
	redis.Close()

	if limiter.Allow(context.Background(), "ip") {
		t.Fatalf("limiter should fail closed on redis errors")
	}
	if err := limiter.Ping(context.Background()); err == nil {
		t.Fatalf("ping should fail once redis is gone")
	}
}

func TestNewFixedWindowLimiterRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing addr", Options{Limit: 1, Window: time.Second}},
		{"zero limit", Options{Addr: "localhost:6379", Window: time.Second}},
		{"zero window", Options{Addr: "localhost:6379", Limit: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := NewFixedWindowLimiter(tt.opts)
			if err == nil || limiter != nil {
				t.Fatalf("expected constructor error")
			}
		})
	}
}

func TestNilLimiterDenies(t *testing.T) {
	var limiter *FixedWindowLimiter
	if limiter.Allow(context.Background(), "ip") {
		t.Fatalf("nil limiter must deny")
	}
	if err := limiter.Close(); err != nil {
		t.Fatalf("closing a nil limiter: %v", err)
	}
}
