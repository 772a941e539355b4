package server

import (
	"testing"
	"time"
)

func TestRateLimiter_PerIPBuckets(t *testing.T) {
	rl := newRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	if !rl.allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("second request in the same instant should be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatal("other IPs have their own bucket")
	}
	now = now.Add(time.Second)
	if !rl.allow("10.0.0.1") {
		t.Fatal("bucket should refill after one second")
	}
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	rl := newRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	rl.allow("10.0.0.1")
	now = now.Add(visitorIdle + sweepInterval)
	rl.allow("10.0.0.2")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Fatal("idle visitor should be swept")
	}
	if len(rl.visitors) != 1 {
		t.Fatalf("expected 1 visitor, got %d", len(rl.visitors))
	}
}
