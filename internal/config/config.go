// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olgasafonova/dnd5e-mcp-server/tracing"
)

const (
	// DefaultTimeout bounds a single upstream request
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the server to the D&D 5e API
	DefaultUserAgent = "dnd5e-mcp-server/1.0.0 (github.com/olgasafonova/dnd5e-mcp-server)"
)

// Config holds server settings. The upstream base address is fixed and
// intentionally absent here.
type Config struct {
	// Timeout for a single upstream GET; zero disables the client timeout
	Timeout time.Duration `env:"DND5E_TIMEOUT" envDefault:"30s"`

	// UserAgent sent with every upstream request
	UserAgent string `env:"DND5E_USER_AGENT"`

	// LogLevel for the stderr logger
	LogLevel slog.Level `env:"DND5E_LOG_LEVEL" envDefault:"INFO"`

	// HTTPAddr switches the server to streamable HTTP (e.g. ":8080"); empty means stdio
	HTTPAddr string `env:"DND5E_HTTP_ADDR"`

	// RateLimit caps HTTP requests per client IP per minute; zero disables it
	RateLimit int `env:"DND5E_HTTP_RATE_LIMIT" envDefault:"120"`

	// MaxBodySize caps the size of an inbound HTTP request body in bytes
	MaxBodySize int64 `env:"DND5E_HTTP_MAX_BODY" envDefault:"1048576"`

	Tracing tracing.Config
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("DND5E_TIMEOUT must not be negative, got %s", cfg.Timeout)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("DND5E_HTTP_RATE_LIMIT must not be negative, got %d", cfg.RateLimit)
	}
	if cfg.MaxBodySize <= 0 {
		return nil, fmt.Errorf("DND5E_HTTP_MAX_BODY must be positive, got %d", cfg.MaxBodySize)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	cfg.Tracing.ServiceVersion = "1.0.0"
	cfg.Tracing.Normalize()
	return cfg, nil
}

// UsesHTTP reports whether the server should listen on HTTP instead of stdio.
func (c *Config) UsesHTTP() bool {
	return c.HTTPAddr != ""
}
