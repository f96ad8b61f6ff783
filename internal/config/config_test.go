package config

import (
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"DB_DRIVER", "DB_PATH", "DB_DSN", "SERVER_PORT", "LOG_LEVEL", "SENTRY_DSN", "ENV",
	"SHUTDOWN_GRACE", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_TTL",
	"PAGE_SIZE", "PAGE_SIZE_MAX", "FILTER_STRICT", "OTEL_ENABLED", "OTEL_ENDPOINT",
}

// clearEnv unsets every variable so that envDefault values apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBDriver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.DBDriver)
	}

	if cfg.DBPath != defaultDBPath {
		t.Errorf("expected default DB path %q, got %q", defaultDBPath, cfg.DBPath)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.Environment != defaultEnvironment {
		t.Errorf("expected default environment %q, got %q", defaultEnvironment, cfg.Environment)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}

	if cfg.PageSize != 20 || cfg.PageSizeMax != 100 {
		t.Errorf("expected page sizes 20/100, got %d/%d", cfg.PageSize, cfg.PageSizeMax)
	}

	if cfg.FilterStrict {
		t.Errorf("expected tolerant filtering by default")
	}

	if cfg.OTelEnabled {
		t.Errorf("expected tracing export to be disabled by default")
	}
}

func TestLoadWithExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://dndtools@localhost/dndtools")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SENTRY_DSN", "dsn")
	t.Setenv("ENV", "production")
	t.Setenv("SHUTDOWN_GRACE", "30s")
	t.Setenv("RATE_LIMIT_TTL", "1m")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("PAGE_SIZE_MAX", "200")
	t.Setenv("FILTER_STRICT", "true")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_ENDPOINT", "localhost:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBDriver != "postgres" {
		t.Errorf("expected normalised driver postgres, got %q", cfg.DBDriver)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.ServerPort)
	}

	if cfg.ShutdownGrace != 30*time.Second {
		t.Errorf("expected shutdown grace 30s, got %s", cfg.ShutdownGrace)
	}

	if cfg.RateLimitTTL != time.Minute {
		t.Errorf("expected rate limit ttl 1m, got %s", cfg.RateLimitTTL)
	}

	if cfg.PageSize != 50 || cfg.PageSizeMax != 200 {
		t.Errorf("expected page sizes 50/200, got %d/%d", cfg.PageSize, cfg.PageSizeMax)
	}

	if !cfg.FilterStrict {
		t.Errorf("expected strict filtering")
	}

	if cfg.SentryDSN != "dsn" {
		t.Errorf("expected Sentry DSN dsn, got %q", cfg.SentryDSN)
	}

	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.Environment)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "invalid")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid port, got nil")
	}

	if !strings.Contains(err.Error(), "parsing environment") {
		t.Fatalf("expected a parsing error, got %v", err)
	}
}

func TestLoadRejectsInconsistentSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":       {"DB_DRIVER": "mysql"},
		"postgres without dsn": {"DB_DRIVER": "postgres"},
		"page size above max":  {"PAGE_SIZE": "500"},
		"tracing without host": {"OTEL_ENABLED": "true"},
		"port out of range":    {"SERVER_PORT": "70000"},
	}

	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range vars {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}
