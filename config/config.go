package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server's environment-driven configuration. A .env file
// is loaded first when present; real environment variables win.
type Config struct {
	Addr          string     `env:"ARENA_ADDR" envDefault:":8080"`
	AllowedOrigin string     `env:"ARENA_ALLOWED_ORIGIN"` // empty allows any origin (dev)
	LogLevel      slog.Level `env:"ARENA_LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
