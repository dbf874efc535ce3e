package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

var configEnv = []string{
	"DND5E_TIMEOUT",
	"DND5E_USER_AGENT",
	"DND5E_LOG_LEVEL",
	"DND5E_HTTP_ADDR",
	"DND5E_HTTP_RATE_LIMIT",
	"DND5E_HTTP_MAX_BODY",
	"OTEL_ENABLED",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_ENVIRONMENT",
	"OTEL_SAMPLE_RATE",
	"OTEL_SERVICE_NAME",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, DefaultUserAgent)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.UsesHTTP() {
		t.Error("expected stdio transport by default")
	}
	if cfg.RateLimit != 120 {
		t.Errorf("RateLimit = %d, want 120", cfg.RateLimit)
	}
	if cfg.MaxBodySize != 1<<20 {
		t.Errorf("MaxBodySize = %d, want %d", cfg.MaxBodySize, 1<<20)
	}
	if cfg.Tracing.Enabled {
		t.Error("expected tracing disabled by default")
	}
	if cfg.Tracing.ServiceName != "dnd5e-mcp-server" {
		t.Errorf("Tracing.ServiceName = %q", cfg.Tracing.ServiceName)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DND5E_TIMEOUT", "5s")
	t.Setenv("DND5E_USER_AGENT", "test-agent/1.0")
	t.Setenv("DND5E_LOG_LEVEL", "DEBUG")
	t.Setenv("DND5E_HTTP_ADDR", ":8080")
	t.Setenv("DND5E_HTTP_RATE_LIMIT", "0")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.UserAgent != "test-agent/1.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if !cfg.UsesHTTP() || cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit = %d, want 0", cfg.RateLimit)
	}
	if !cfg.Tracing.Enabled {
		t.Error("expected tracing enabled by OTLP endpoint")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable timeout", "DND5E_TIMEOUT", "soon"},
		{"negative timeout", "DND5E_TIMEOUT", "-1s"},
		{"unknown log level", "DND5E_LOG_LEVEL", "LOUD"},
		{"negative rate limit", "DND5E_HTTP_RATE_LIMIT", "-5"},
		{"zero body size", "DND5E_HTTP_MAX_BODY", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
