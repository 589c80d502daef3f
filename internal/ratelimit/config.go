package ratelimit

import "time"

// Config holds rate limiter and retry settings for one upstream API.
type Config struct {
	Strategy          Strategy      `koanf:"strategy" yaml:"strategy"`
	RequestsPerSec    float64       `koanf:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `koanf:"burst" yaml:"burst"`
	FixedDelay        time.Duration `koanf:"fixed_delay" yaml:"fixed_delay"`
	MaxRetries        int           `koanf:"max_retries" yaml:"max_retries"`
	InitialBackoff    time.Duration `koanf:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff        time.Duration `koanf:"max_backoff" yaml:"max_backoff"`
	BackoffMultiplier float64       `koanf:"backoff_multiplier" yaml:"backoff_multiplier"`
}

// DefaultConfig stays under OpenF1's public limit of 3 requests per second.
func DefaultConfig() Config {
	return Config{
		Strategy:          StrategyTokenBucket,
		RequestsPerSec:    3.0,
		Burst:             3,
		FixedDelay:        400 * time.Millisecond,
		MaxRetries:        4,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Strategy == "" {
		c.Strategy = def.Strategy
	}
	if c.RequestsPerSec <= 0 {
		c.RequestsPerSec = def.RequestsPerSec
	}
	if c.Burst <= 0 {
		c.Burst = def.Burst
	}
	if c.FixedDelay <= 0 {
		c.FixedDelay = def.FixedDelay
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = def.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = def.MaxBackoff
	}
	if c.BackoffMultiplier < 1 {
		c.BackoffMultiplier = def.BackoffMultiplier
	}
	return c
}
