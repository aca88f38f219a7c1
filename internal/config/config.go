// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the Kontrib server.
// Everything comes from environment variables; secrets have no file fallback.
type Config struct {
	// Server
	BindAddr string `env:"BIND_ADDR" env-default:""`
	Port     int    `env:"PORT" env-default:"8080"`

	// Storage
	DBPath string `env:"DB_PATH" env-default:"./data/kontrib.db"`

	// Auth
	JWTSecret      string        `env:"JWT_SECRET" env-default:""`
	TokenTTL       time.Duration `env:"TOKEN_TTL" env-default:"24h"`
	OTPTTL         time.Duration `env:"OTP_TTL" env-default:"5m"`
	OTPMaxAttempts int           `env:"OTP_MAX_ATTEMPTS" env-default:"5"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.OTPMaxAttempts < 1 {
		return nil, fmt.Errorf("OTP_MAX_ATTEMPTS must be at least 1")
	}
	return &cfg, nil
}

// Addr returns the listen address, e.g. ":8080".
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.Port)
}
