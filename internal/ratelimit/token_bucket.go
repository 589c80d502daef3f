package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket allows bursts of up to Burst requests and refills at
// RequestsPerSec.
type TokenBucket struct {
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
	now    func() time.Time
	mu     sync.Mutex
	config Config
}

// NewTokenBucket returns a full bucket.
func NewTokenBucket(cfg Config) *TokenBucket {
	cfg = cfg.WithDefaults()
	return &TokenBucket{
		rate:   cfg.RequestsPerSec,
		burst:  float64(cfg.Burst),
		tokens: float64(cfg.Burst),
		last:   time.Now(),
		now:    time.Now,
		config: cfg,
	}
}

// Wait takes a token, sleeping until one is available.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		wait := tb.take()
		if wait == 0 {
			return nil
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Allow takes a token if one is available right now.
func (tb *TokenBucket) Allow() bool {
	return tb.take() == 0
}

// RetryAfter returns exponential backoff for attempt.
func (tb *TokenBucket) RetryAfter(attempt int) time.Duration {
	return Backoff(attempt, tb.config)
}

// take consumes a token and returns 0, or returns how long until the next
// token is due.
func (tb *TokenBucket) take() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if elapsed := now.Sub(tb.last); elapsed > 0 {
		tb.tokens += elapsed.Seconds() * tb.rate
		if tb.tokens > tb.burst {
			tb.tokens = tb.burst
		}
		tb.last = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return 0
	}
	return time.Duration((1-tb.tokens)/tb.rate*float64(time.Second)) + time.Nanosecond
}
