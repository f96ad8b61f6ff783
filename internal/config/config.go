package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the dndtools server.
type Config struct {
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath   string `env:"DB_PATH" envDefault:"./data/dndtools.db"`
	DBDSN    string `env:"DB_DSN"`

	ServerPort    int           `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN     string        `env:"SENTRY_DSN"`
	Environment   string        `env:"ENV" envDefault:"development"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`

	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	RateLimitTTL   time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`

	PageSize     int  `env:"PAGE_SIZE" envDefault:"20"`
	PageSizeMax  int  `env:"PAGE_SIZE_MAX" envDefault:"100"`
	FilterStrict bool `env:"FILTER_STRICT" envDefault:"false"`

	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

const (
	defaultDBPath        = "./data/dndtools.db"
	defaultServerPort    = 8080
	defaultLogLevel      = "info"
	defaultEnvironment   = "development"
	defaultShutdownGrace = 10 * time.Second
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, eris.Wrap(err, "parsing environment")
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			return eris.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if strings.TrimSpace(c.DBDSN) == "" {
			return eris.New("DB_DSN is required for the postgres driver")
		}
	default:
		return eris.Errorf("invalid DB_DRIVER value: %s", c.DBDriver)
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return eris.Errorf("invalid SERVER_PORT value: %d", c.ServerPort)
	}
	if c.PageSize <= 0 || c.PageSizeMax < c.PageSize {
		return eris.Errorf("invalid page sizes: PAGE_SIZE=%d PAGE_SIZE_MAX=%d", c.PageSize, c.PageSizeMax)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return eris.New("rate limit values must not be negative")
	}
	if c.OTelEnabled && strings.TrimSpace(c.OTelEndpoint) == "" {
		return eris.New("OTEL_ENDPOINT is required when OTEL_ENABLED is set")
	}
	return nil
}
