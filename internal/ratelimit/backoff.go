package ratelimit

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes exponential backoff with +/-25% jitter, capped at
// MaxBackoff.
func Backoff(attempt int, cfg Config) time.Duration {
	if attempt <= 0 {
		return 0
	}
	base := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiplier, float64(attempt-1))
	if base > float64(cfg.MaxBackoff) {
		base = float64(cfg.MaxBackoff)
	}
	d := base + base*0.25*(2*rand.Float64()-1)
	if d < 0 {
		d = 0
	}
	if d > float64(cfg.MaxBackoff) {
		d = float64(cfg.MaxBackoff)
	}
	return time.Duration(d)
}

// Retry runs op until it succeeds, returns a non-retryable error, or runs out
// of attempts. Each try waits on the limiter first.
func Retry(ctx context.Context, l Limiter, maxRetries int, retryable func(error) bool, op func() error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if serr := sleep(ctx, l.RetryAfter(attempt)); serr != nil {
				return serr
			}
		}
		if werr := l.Wait(ctx); werr != nil {
			return werr
		}
		if err = op(); err == nil || !retryable(err) {
			return err
		}
	}
	return err
}
