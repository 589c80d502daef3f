// Package config defines the paddock configuration and its loader.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mkoziy/paddock/internal/cache"
	"github.com/mkoziy/paddock/internal/database"
	"github.com/mkoziy/paddock/internal/importer"
	"github.com/mkoziy/paddock/internal/logger"
	"github.com/mkoziy/paddock/internal/metrics"
	"github.com/mkoziy/paddock/internal/ratelimit"
	"github.com/mkoziy/paddock/internal/sources/openf1"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	Database database.Config  `koanf:"database" yaml:"database"`
	Provider Provider         `koanf:"provider" yaml:"provider"`
	Importer importer.Options `koanf:"importer" yaml:"importer"`
	API      API              `koanf:"api" yaml:"api"`
	Metrics  metrics.Config   `koanf:"metrics" yaml:"metrics"`
}

// Provider configures the OpenF1 client.
type Provider struct {
	BaseURL   string           `koanf:"base_url" yaml:"base_url"`
	Timeout   time.Duration    `koanf:"timeout" yaml:"timeout"`
	Telemetry bool             `koanf:"telemetry" yaml:"telemetry"`
	Cache     cache.Config     `koanf:"cache" yaml:"cache"`
	RateLimit ratelimit.Config `koanf:"rate_limit" yaml:"rate_limit"`
}

// API configures the read-only HTTP server.
type API struct {
	Addr string `koanf:"addr" yaml:"addr"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Database: database.Config{
			Driver: database.DriverSQLite,
			DSN:    "file:paddock.db",
		},
		Provider: Provider{
			BaseURL:   openf1.DefaultBaseURL,
			Timeout:   30 * time.Second,
			Telemetry: true,
			Cache:     cache.Config{Enabled: false, Dir: ".paddock-cache"},
			RateLimit: ratelimit.DefaultConfig(),
		},
		API: API{Addr: ":8000"},
	}
}

// Validate reports every invalid field, each wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		invalid("log_level: %v", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		invalid("log_format must be text or json, got %q", c.LogFormat)
	}

	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		invalid("database.driver must be %s or %s, got %q", database.DriverSQLite, database.DriverPostgres, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		invalid("database.dsn must not be empty")
	}

	if u, err := url.Parse(c.Provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid("provider.base_url must be an absolute URL, got %q", c.Provider.BaseURL)
	}
	if c.Provider.Timeout <= 0 {
		invalid("provider.timeout must be positive")
	}
	if c.Provider.Cache.Enabled && c.Provider.Cache.Dir == "" {
		invalid("provider.cache.dir is required when the cache is enabled")
	}
	switch c.Provider.RateLimit.Strategy {
	case "", ratelimit.StrategyTokenBucket, ratelimit.StrategyFixedDelay, ratelimit.StrategyNone:
	default:
		invalid("provider.rate_limit.strategy %q is not supported", c.Provider.RateLimit.Strategy)
	}
	if c.Provider.RateLimit.MaxRetries < 0 {
		invalid("provider.rate_limit.max_retries must not be negative")
	}

	if c.API.Addr == "" {
		invalid("api.addr must not be empty")
	}
	return errors.Join(errs...)
}

// YAML renders the configuration, used by `paddock config` and stored on
// every import run.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}
