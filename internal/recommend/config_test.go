// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package recommend

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"similarity threshold above 1", func(c *Config) { c.SimilarityThreshold = 1.5 }},
		{"similarity threshold at 1", func(c *Config) { c.SimilarityThreshold = 1 }},
		{"min common items below 1", func(c *Config) { c.MinCommonItems = 0 }},
		{"max neighbors below 1", func(c *Config) { c.MaxNeighbors = 0 }},
		{"rating floor above scale", func(c *Config) { c.NeighborRatingFloor = 6 }},
		{"rating floor below scale", func(c *Config) { c.NeighborRatingFloor = 0 }},
		{"negative trending min ratings", func(c *Config) { c.TrendingMinRatings = -1 }},
		{"inverted progress window", func(c *Config) { c.ContinueMinProgress = 90; c.ContinueMaxProgress = 5 }},
		{"progress window above 100", func(c *Config) { c.ContinueMaxProgress = 120 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
