package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FixedDelay spaces requests at least FixedDelay apart.
type FixedDelay struct {
	delay  time.Duration
	next   time.Time
	now    func() time.Time
	mu     sync.Mutex
	config Config
}

// NewFixedDelay returns a limiter whose first request is not delayed.
func NewFixedDelay(cfg Config) *FixedDelay {
	cfg = cfg.WithDefaults()
	return &FixedDelay{delay: cfg.FixedDelay, now: time.Now, config: cfg}
}

// Wait reserves the next slot and sleeps until it starts.
func (fd *FixedDelay) Wait(ctx context.Context) error {
	fd.mu.Lock()
	now := fd.now()
	start := fd.next
	if start.Before(now) {
		start = now
	}
	fd.next = start.Add(fd.delay)
	fd.mu.Unlock()

	return sleep(ctx, start.Sub(now))
}

// RetryAfter returns exponential backoff for attempt.
func (fd *FixedDelay) RetryAfter(attempt int) time.Duration {
	return Backoff(attempt, fd.config)
}
