// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and the environment on top.
// - Every loaded Config is validated before it is returned.
package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// ArtifactPath points at the scoring artifact loaded at startup.
	ArtifactPath string `koanf:"artifact_path" validate:"required"`

	// DatabaseURL selects the PostgreSQL store. Empty means in-memory.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxConns caps the pool size; 0 keeps the driver default.
	DBMaxConns int `koanf:"db_max_conns" validate:"gte=0"`

	// SeedPath names a YAML or JSON fixtures file loaded into the in-memory store.
	SeedPath string `koanf:"seed_path"`

	// RedisURL enables the weather cache when set, e.g. redis://localhost:6379/0.
	RedisURL string `koanf:"redis_url"`

	// WeatherCacheTTLSeconds is how long a cached day lives.
	WeatherCacheTTLSeconds int `koanf:"weather_cache_ttl_seconds" validate:"gte=0"`

	// BasePrice is the price before adjustments.
	BasePrice float64 `koanf:"base_price" validate:"gte=0"`

	// Timezone tee times are composed in.
	Timezone string `koanf:"timezone" validate:"required,timezone"`

	// IdempotencyCacheSize bounds the remembered Idempotency-Key set; 0 is unbounded.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size" validate:"gte=0"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		ArtifactPath:           "model/artifact.json",
		DBMaxConns:             10,
		WeatherCacheTTLSeconds: 3600,
		BasePrice:              75,
		Timezone:               "UTC",
		IdempotencyCacheSize:   10_000,
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// WeatherCacheTTL returns the cache TTL as a duration.
func (c *Config) WeatherCacheTTL() time.Duration {
	return time.Duration(c.WeatherCacheTTLSeconds) * time.Second
}
