package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	// RedisURL selects the counter store. When empty the server runs on
	// the in-memory store (single instance, nothing survives a restart).
	RedisURL string `env:"REDIS_URL"`

	// PostID namespaces every key the engine writes. One logical keyspace
	// per post/instance.
	PostID string `env:"POST_ID"`

	CacheTTL              time.Duration `env:"CACHE_TTL" default:"5s"`
	CacheEvictionInterval time.Duration `env:"CACHE_EVICTION_INTERVAL" default:"1m"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
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
	if cfg.PostID == "" {
		return fmt.Errorf("POST_ID is required")
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	if cfg.CacheEvictionInterval <= 0 {
		return fmt.Errorf("CACHE_EVICTION_INTERVAL must be positive, got %s", cfg.CacheEvictionInterval)
	}
	return nil
}
