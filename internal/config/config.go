// Package config loads server settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned in production when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required in production")

// Config holds every setting the server reads at startup.
type Config struct {
	Port      int           `env:"PORT" envDefault:"8080"`
	DBPath    string        `env:"DB_PATH" envDefault:"./data/duet.db"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFormat is text (colored) or json.
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// RedisAddr enables the distributed settle-up lock when set.
	RedisAddr string `env:"REDIS_ADDR"`

	Production bool `env:"PRODUCTION" envDefault:"false"`

	// GeneratedSecret is true when JWTSecret was generated for this process.
	GeneratedSecret bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Production {
			return nil, ErrMissingJWTSecret
		}
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
