// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv(ConfigPathEnvVar, "/nonexistent")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mongo.URL != "mongodb://localhost:27017" {
		t.Errorf("Mongo.URL = %q", cfg.Mongo.URL)
	}
	if cfg.Mongo.Database != "streamvault" {
		t.Errorf("Mongo.Database = %q", cfg.Mongo.Database)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Recommend.SimilarityThreshold != 0.3 {
		t.Errorf("Recommend.SimilarityThreshold = %f", cfg.Recommend.SimilarityThreshold)
	}
	if !cfg.Refresh.Enabled {
		t.Error("Refresh.Enabled = false, want default true")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv(ConfigPathEnvVar, "/nonexistent")

	if _, err := Load(); err == nil {
		t.Error("Load succeeded without JWT secret")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv(ConfigPathEnvVar, "/nonexistent")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_NAME", "netflix_clone")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECOMMEND_SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Mongo.Database != "netflix_clone" {
		t.Errorf("Mongo.Database = %q", cfg.Mongo.Database)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Recommend.SimilarityThreshold != 0.5 {
		t.Errorf("Recommend.SimilarityThreshold = %f", cfg.Recommend.SimilarityThreshold)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("server:\n  port: 7070\nmongo:\n  database: from_file\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 from file", cfg.Server.Port)
	}
	if cfg.Mongo.Database != "from_file" {
		t.Errorf("Mongo.Database = %q, want from_file", cfg.Mongo.Database)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want env override 9191", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := defaultConfig()
		c.Security.JWTSecret = testSecret
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with secret", func(c *Config) {}, false},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }, true},
		{"missing mongo url", func(c *Config) { c.Mongo.URL = "" }, true},
		{"missing database", func(c *Config) { c.Mongo.Database = "" }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero token ttl", func(c *Config) { c.Security.TokenTTL = 0 }, true},
		{"bcrypt cost too low", func(c *Config) { c.Security.BcryptCost = 4 }, true},
		{"zero rate limit allowed when disabled", func(c *Config) {
			c.Server.RateLimitDisabled = true
			c.Server.RateLimitRequests = 0
		}, false},
		{"zero rate limit rejected when enabled", func(c *Config) { c.Server.RateLimitRequests = 0 }, true},
		{"refresh misconfigured", func(c *Config) { c.Refresh.Interval = 0 }, true},
		{"refresh ignored when disabled", func(c *Config) {
			c.Refresh.Enabled = false
			c.Refresh.Interval = 0
		}, false},
		{"invalid recommend tunable", func(c *Config) { c.Recommend.MinCommonItems = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if got := s.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestEnvTransformDropsUnknownKeys(t *testing.T) {
	if got := envTransform("PATH"); got != "" {
		t.Errorf("envTransform(PATH) = %q, want empty", got)
	}
	if got := envTransform("MONGO_URL"); got != "mongo.url" {
		t.Errorf("envTransform(MONGO_URL) = %q", got)
	}
}

func TestDefaultTimeouts(t *testing.T) {
	c := defaultConfig()
	if c.Mongo.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %v", c.Mongo.ConnectTimeout)
	}
	if c.Security.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v", c.Security.TokenTTL)
	}
}
