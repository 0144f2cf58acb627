package api

import (
	"testing"
	"time"
)

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("1.2.3.4") || !l.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("1.2.3.4") {
		t.Error("third request inside the window should be rejected")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("other IPs have their own window")
	}

	now = now.Add(59 * time.Second)
	if l.Allow("1.2.3.4") {
		t.Error("window has not elapsed yet")
	}

	now = now.Add(time.Second)
	if !l.Allow("1.2.3.4") {
		t.Error("requests older than the window should expire")
	}
}

func TestRateLimiter_SweepDropsIdle(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(5, time.Second)
	l.now = func() time.Time { return now }

	l.Allow("idle")
	now = now.Add(2 * time.Second)
	l.sweep(now)

	if _, ok := l.hits["idle"]; ok {
		t.Error("expected idle bucket to be swept")
	}
}
