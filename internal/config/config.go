// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

// Package config loads the StreamVault configuration from layered
// sources with koanf: built-in defaults, then an optional YAML file,
// then environment variables. Later layers win.
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/streamvault/internal/recommend"
)

// Config is the full application configuration.
type Config struct {
	Mongo     MongoConfig      `koanf:"mongo"`
	Server    ServerConfig     `koanf:"server"`
	Security  SecurityConfig   `koanf:"security"`
	Logging   LoggingConfig    `koanf:"logging"`
	Recommend recommend.Config `koanf:"recommend"`
	Refresh   RefreshConfig    `koanf:"refresh"`
}

// MongoConfig configures the document store connection.
type MongoConfig struct {
	URL      string `koanf:"url"`
	Database string `koanf:"database"`

	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// Circuit breaker tripping the store into fail-fast mode when
	// Mongo misbehaves.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerCooldown    time.Duration `koanf:"breaker_cooldown"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests     int           `koanf:"rate_limit_requests"`
	RateLimitWindow       time.Duration `koanf:"rate_limit_window"`
	AuthRateLimitRequests int           `koanf:"auth_rate_limit_requests"`
	RateLimitDisabled     bool          `koanf:"rate_limit_disabled"`
}

// SecurityConfig configures authentication.
type SecurityConfig struct {
	// JWTSecret signs access tokens. Required; there is no insecure
	// default.
	JWTSecret string `koanf:"jwt_secret"`

	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
}

// LoggingConfig configures the zerolog layer.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RefreshConfig configures the background recommendation worker.
type RefreshConfig struct {
	Enabled bool `koanf:"enabled"`

	// Interval between scans for profiles with fresh activity.
	Interval time.Duration `koanf:"interval"`

	// ProfilesPerSecond throttles regeneration so a scan over a large
	// profile set cannot monopolize the store.
	ProfilesPerSecond float64 `koanf:"profiles_per_second"`

	// MaxPerRun caps how many profiles one scan regenerates.
	MaxPerRun int `koanf:"max_per_run"`
}

// defaultConfig returns the built-in defaults, layered under the file
// and environment sources.
func defaultConfig() *Config {
	return &Config{
		Mongo: MongoConfig{
			URL:                "mongodb://localhost:27017",
			Database:           "streamvault",
			ConnectTimeout:     10 * time.Second,
			BreakerMaxFailures: 5,
			BreakerCooldown:    30 * time.Second,
		},
		Server: ServerConfig{
			Host:                  "0.0.0.0",
			Port:                  8000,
			ReadTimeout:           15 * time.Second,
			WriteTimeout:          30 * time.Second,
			IdleTimeout:           60 * time.Second,
			ShutdownTimeout:       15 * time.Second,
			CORSOrigins:           []string{"*"},
			RateLimitRequests:     100,
			RateLimitWindow:       time.Minute,
			AuthRateLimitRequests: 10,
			RateLimitDisabled:     false,
		},
		Security: SecurityConfig{
			JWTSecret:  "",
			TokenTTL:   24 * time.Hour,
			BcryptCost: 12,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: *recommend.DefaultConfig(),
		Refresh: RefreshConfig{
			Enabled:           true,
			Interval:          30 * time.Minute,
			ProfilesPerSecond: 2,
			MaxPerRun:         500,
		},
	}
}

// Validate checks cross-field constraints the server cannot start
// without.
func (c *Config) Validate() error {
	if c.Mongo.URL == "" {
		return fmt.Errorf("mongo.url is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required (set JWT_SECRET)")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 bytes, got %d", len(c.Security.JWTSecret))
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("security.token_ttl must be positive")
	}
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 16 {
		return fmt.Errorf("security.bcrypt_cost %d outside the 10-16 range", c.Security.BcryptCost)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitRequests <= 0 || c.Server.AuthRateLimitRequests <= 0 {
			return fmt.Errorf("rate limit request counts must be positive")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("server.rate_limit_window must be positive")
		}
	}
	if c.Refresh.Enabled {
		if c.Refresh.Interval <= 0 {
			return fmt.Errorf("refresh.interval must be positive")
		}
		if c.Refresh.ProfilesPerSecond <= 0 {
			return fmt.Errorf("refresh.profiles_per_second must be positive")
		}
		if c.Refresh.MaxPerRun <= 0 {
			return fmt.Errorf("refresh.max_per_run must be positive")
		}
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
