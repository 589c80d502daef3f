package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestTokenBucketBurstAndRefill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	tb := NewTokenBucket(Config{RequestsPerSec: 4, Burst: 2})
	tb.now = clock.now
	tb.last = clock.t

	if !tb.Allow() || !tb.Allow() {
		t.Fatalf("expected burst of two")
	}
	if tb.Allow() {
		t.Fatalf("expected bucket to be empty")
	}

	clock.t = clock.t.Add(250 * time.Millisecond)
	if !tb.Allow() {
		t.Fatalf("expected one token after 250ms at 4 rps")
	}
	if tb.Allow() {
		t.Fatalf("expected only one token to refill")
	}
}

func TestTokenBucketWaitRespectsContext(t *testing.T) {
	tb := NewTokenBucket(Config{RequestsPerSec: 0.5, Burst: 1})
	if err := tb.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tb.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestFixedDelaySpacesRequests(t *testing.T) {
	fd := NewFixedDelay(Config{FixedDelay: 30 * time.Millisecond})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := fd.Wait(context.Background()); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("expected at least 60ms for three requests, got %v", elapsed)
	}
}

func TestBackoffBounds(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: 10 * time.Second, BackoffMultiplier: 2, MaxRetries: 5}

	if d := Backoff(0, cfg); d != 0 {
		t.Fatalf("expected no backoff before first retry, got %v", d)
	}
	for attempt := 1; attempt <= 8; attempt++ {
		d := Backoff(attempt, cfg)
		if d <= 0 || d > cfg.MaxBackoff {
			t.Fatalf("attempt %d: backoff %v out of bounds", attempt, d)
		}
	}
	if d := Backoff(1, cfg); d < 750*time.Millisecond || d > 1250*time.Millisecond {
		t.Fatalf("expected first backoff within jitter of 1s, got %v", d)
	}
}

func TestRetry(t *testing.T) {
	l := New(Config{Strategy: StrategyNone, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})
	errBusy := errors.New("busy")

	calls := 0
	err := Retry(context.Background(), l, 3, func(err error) bool { return errors.Is(err, errBusy) }, func() error {
		calls++
		if calls < 3 {
			return errBusy
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third call, got err=%v calls=%d", err, calls)
	}

	errFatal := errors.New("fatal")
	calls = 0
	err = Retry(context.Background(), l, 3, func(err error) bool { return errors.Is(err, errBusy) }, func() error {
		calls++
		return errFatal
	})
	if !errors.Is(err, errFatal) || calls != 1 {
		t.Fatalf("expected no retry on fatal error, got err=%v calls=%d", err, calls)
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Strategy != StrategyTokenBucket || cfg.RequestsPerSec != 3 || cfg.Burst != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
