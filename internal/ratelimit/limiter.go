// Package ratelimit paces requests to upstream APIs and computes retry
// backoff.
package ratelimit

import (
	"context"
	"time"
)

// Limiter paces outgoing requests.
type Limiter interface {
	// Wait blocks until a request may be sent or ctx is done.
	Wait(ctx context.Context) error
	// RetryAfter returns the backoff before retry number attempt.
	RetryAfter(attempt int) time.Duration
}

// Strategy selects a Limiter implementation.
type Strategy string

const (
	StrategyTokenBucket Strategy = "token_bucket"
	StrategyFixedDelay  Strategy = "fixed_delay"
	StrategyNone        Strategy = "none"
)

// New builds the limiter configured by cfg.
func New(cfg Config) Limiter {
	cfg = cfg.WithDefaults()
	switch cfg.Strategy {
	case StrategyFixedDelay:
		return NewFixedDelay(cfg)
	case StrategyNone:
		return Unlimited{config: cfg}
	default:
		return NewTokenBucket(cfg)
	}
}

// Unlimited never waits. It is used for local mirrors and tests.
type Unlimited struct {
	config Config
}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }

func (u Unlimited) RetryAfter(attempt int) time.Duration {
	return Backoff(attempt, u.config)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
