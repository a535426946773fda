// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, first hit
// wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/streamvault/config.yaml",
	"/etc/streamvault/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from three layers, validated before
// return:
//  1. defaults
//  2. optional YAML file
//  3. environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are the fields that may arrive as comma-separated
// strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		s, ok := val.(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			if err := k.Set(path, out); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransform maps environment variable names to config paths.
// Unmapped variables are dropped so unrelated environment noise cannot
// leak into the config.
func envTransform(key string) string {
	mappings := map[string]string{
		"MONGO_URL":            "mongo.url",
		"MONGODB_URL":          "mongo.url",
		"DB_NAME":              "mongo.database",
		"MONGO_TIMEOUT":        "mongo.connect_timeout",
		"BREAKER_MAX_FAILURES": "mongo.breaker_max_failures",
		"BREAKER_COOLDOWN":     "mongo.breaker_cooldown",

		"HTTP_HOST":                "server.host",
		"HTTP_PORT":                "server.port",
		"HTTP_READ_TIMEOUT":        "server.read_timeout",
		"HTTP_WRITE_TIMEOUT":       "server.write_timeout",
		"HTTP_IDLE_TIMEOUT":        "server.idle_timeout",
		"HTTP_SHUTDOWN_TIMEOUT":    "server.shutdown_timeout",
		"CORS_ORIGINS":             "server.cors_origins",
		"RATE_LIMIT_REQUESTS":      "server.rate_limit_requests",
		"RATE_LIMIT_WINDOW":        "server.rate_limit_window",
		"AUTH_RATE_LIMIT_REQUESTS": "server.auth_rate_limit_requests",
		"DISABLE_RATE_LIMIT":       "server.rate_limit_disabled",

		"JWT_SECRET":  "security.jwt_secret",
		"TOKEN_TTL":   "security.token_ttl",
		"BCRYPT_COST": "security.bcrypt_cost",

		"LOG_LEVEL":  "logging.level",
		"LOG_FORMAT": "logging.format",
		"LOG_CALLER": "logging.caller",

		"RECOMMEND_SIMILARITY_THRESHOLD":  "recommend.similarity_threshold",
		"RECOMMEND_MIN_COMMON_ITEMS":      "recommend.min_common_items",
		"RECOMMEND_MAX_NEIGHBORS":         "recommend.max_neighbors",
		"RECOMMEND_NEIGHBOR_RATING_FLOOR": "recommend.neighbor_rating_floor",
		"RECOMMEND_TASTE_GENRES":          "recommend.taste_genres",
		"RECOMMEND_PROFILE_TOP_GENRES":    "recommend.profile_top_genres",
		"RECOMMEND_TRENDING_MIN_RATINGS":  "recommend.trending_min_ratings",
		"RECOMMEND_TRENDING_MIN_AVERAGE":  "recommend.trending_min_average",
		"RECOMMEND_CONTINUE_MIN_PROGRESS": "recommend.continue_min_progress",
		"RECOMMEND_CONTINUE_MAX_PROGRESS": "recommend.continue_max_progress",
		"RECOMMEND_CONTENT_BASED_LIMIT":   "recommend.content_based_limit",
		"RECOMMEND_COLLABORATIVE_LIMIT":   "recommend.collaborative_limit",
		"RECOMMEND_TRENDING_LIMIT":        "recommend.trending_limit",
		"RECOMMEND_CONTINUE_LIMIT":        "recommend.continue_watching_limit",
		"RECOMMEND_GENRE_LIMIT":           "recommend.genre_limit",
		"RECOMMEND_GENERATE_TIMEOUT":      "recommend.generate_timeout",

		"REFRESH_ENABLED":             "refresh.enabled",
		"REFRESH_INTERVAL":            "refresh.interval",
		"REFRESH_PROFILES_PER_SECOND": "refresh.profiles_per_second",
		"REFRESH_MAX_PER_RUN":         "refresh.max_per_run",
	}

	if mapped, ok := mappings[key]; ok {
		return mapped
	}
	return ""
}
