// Package config loads process settings from the environment (and an optional
// .env file). The db and repo packages never read the environment themselves.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/Skryldev/userdb/db"
)

type Config struct {
	DBDriver   string `env:"DB_DRIVER" default:"mysql"`
	DBHost     string `env:"DB_HOST" default:"localhost"`
	DBPort     int    `env:"DB_PORT" default:"3306"`
	DBUser     string `env:"DB_USER" default:"root"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" default:"my_database"`

	QueryTimeout       time.Duration `env:"DB_QUERY_TIMEOUT" default:"10s"`
	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
	ConnectAttempts    int           `env:"DB_CONNECT_ATTEMPTS" default:"1"`
	ConnectRetryDelay  time.Duration `env:"DB_CONNECT_RETRY_DELAY" default:"1s"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if cfg.DBPort <= 0 || cfg.DBPort > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", cfg.DBPort)
	}
	if cfg.ConnectAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be at least 1, got %d", cfg.ConnectAttempts)
	}
	if _, err := db.LookupDriver(cfg.DBDriver); err != nil {
		return fmt.Errorf("DB_DRIVER: %w", err)
	}
	return nil
}

// Connection returns the connection parameters as a db.ConnectionConfig.
func (c *Config) Connection() db.ConnectionConfig {
	return db.NewConnectionConfig(c.DBHost, c.DBUser, c.DBPassword, c.DBName).
		WithPort(c.DBPort).
		WithDriver(c.DBDriver)
}

// DBConfig returns the handle tuning derived from c, with hooks attached.
func (c *Config) DBConfig(hooks ...db.Hook) db.Config {
	return db.Config{
		DefaultTimeout: c.QueryTimeout,
		ConnectRetry: db.RetryConfig{
			MaxAttempts: c.ConnectAttempts,
			Delay:       c.ConnectRetryDelay,
		},
		Hooks: hooks,
	}
}
