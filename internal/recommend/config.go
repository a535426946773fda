// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package recommend

import (
	"fmt"
	"time"
)

// Config holds the engine tunables. Defaults reproduce the behavior the
// stored recommendation sets were built with; change them only with a
// regeneration plan for existing profiles.
type Config struct {
	// SimilarityThreshold is the minimum Pearson correlation for
	// another profile to qualify as a neighbor. Pairs at or below the
	// threshold are discarded, not down-weighted.
	SimilarityThreshold float64 `koanf:"similarity_threshold" json:"similarity_threshold"`

	// MinCommonItems is the minimum intersection size for a correlation
	// to be computed at all. Pairs below it are skipped entirely rather
	// than scored as zero.
	MinCommonItems int `koanf:"min_common_items" json:"min_common_items"`

	// MaxNeighbors caps how many similar profiles contribute candidates.
	MaxNeighbors int `koanf:"max_neighbors" json:"max_neighbors"`

	// NeighborRatingFloor is the minimum rating a neighbor must have
	// given a title for it to be surfaced as a candidate.
	NeighborRatingFloor float64 `koanf:"neighbor_rating_floor" json:"neighbor_rating_floor"`

	// TasteGenres is how many of the profile's most frequent genres the
	// content-based generator queries on.
	TasteGenres int `koanf:"taste_genres" json:"taste_genres"`

	// ProfileTopGenres is how many genre-keyed groups the aggregator
	// produces.
	ProfileTopGenres int `koanf:"profile_top_genres" json:"profile_top_genres"`

	// TrendingMinRatings and TrendingMinAverage gate the trending
	// ranking to titles with enough signal.
	TrendingMinRatings int     `koanf:"trending_min_ratings" json:"trending_min_ratings"`
	TrendingMinAverage float64 `koanf:"trending_min_average" json:"trending_min_average"`

	// ContinueMinProgress and ContinueMaxProgress bound the playback
	// window (exclusive) for continue-watching rows.
	ContinueMinProgress float64 `koanf:"continue_min_progress" json:"continue_min_progress"`
	ContinueMaxProgress float64 `koanf:"continue_max_progress" json:"continue_max_progress"`

	// Per-generator result sizes used by an aggregation run.
	ContentBasedLimit     int `koanf:"content_based_limit" json:"content_based_limit"`
	CollaborativeLimit    int `koanf:"collaborative_limit" json:"collaborative_limit"`
	TrendingLimit         int `koanf:"trending_limit" json:"trending_limit"`
	ContinueWatchingLimit int `koanf:"continue_watching_limit" json:"continue_watching_limit"`
	GenreLimit            int `koanf:"genre_limit" json:"genre_limit"`

	// GenerateTimeout bounds one aggregation run end to end. The
	// collaborative generator scans the full review corpus, so an
	// unbounded run can hold a request open indefinitely on large data.
	GenerateTimeout time.Duration `koanf:"generate_timeout" json:"generate_timeout"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		SimilarityThreshold:   0.3,
		MinCommonItems:        2,
		MaxNeighbors:          10,
		NeighborRatingFloor:   4.0,
		TasteGenres:           5,
		ProfileTopGenres:      3,
		TrendingMinRatings:    5,
		TrendingMinAverage:    3.5,
		ContinueMinProgress:   5,
		ContinueMaxProgress:   90,
		ContentBasedLimit:     15,
		CollaborativeLimit:    15,
		TrendingLimit:         10,
		ContinueWatchingLimit: 10,
		GenreLimit:            10,
		GenerateTimeout:       15 * time.Second,
	}
}

// Validate checks the configuration for values the engine cannot run
// with.
func (c *Config) Validate() error {
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold >= 1 {
		return fmt.Errorf("similarity_threshold %f out of range [-1, 1)", c.SimilarityThreshold)
	}
	if c.MinCommonItems < 2 {
		return fmt.Errorf("min_common_items %d: correlation needs at least 2 common items", c.MinCommonItems)
	}
	if c.MaxNeighbors <= 0 {
		return fmt.Errorf("max_neighbors %d must be positive", c.MaxNeighbors)
	}
	if c.NeighborRatingFloor < 0.5 || c.NeighborRatingFloor > 5.0 {
		return fmt.Errorf("neighbor_rating_floor %f outside the 0.5-5.0 rating scale", c.NeighborRatingFloor)
	}
	if c.TasteGenres <= 0 || c.ProfileTopGenres <= 0 {
		return fmt.Errorf("genre counts must be positive (taste=%d, profile=%d)", c.TasteGenres, c.ProfileTopGenres)
	}
	if c.TrendingMinRatings < 0 {
		return fmt.Errorf("trending_min_ratings %d must not be negative", c.TrendingMinRatings)
	}
	if c.ContinueMinProgress < 0 || c.ContinueMaxProgress > 100 || c.ContinueMinProgress >= c.ContinueMaxProgress {
		return fmt.Errorf("continue-watching window (%f, %f) invalid", c.ContinueMinProgress, c.ContinueMaxProgress)
	}
	for name, limit := range map[string]int{
		"content_based_limit":     c.ContentBasedLimit,
		"collaborative_limit":     c.CollaborativeLimit,
		"trending_limit":          c.TrendingLimit,
		"continue_watching_limit": c.ContinueWatchingLimit,
		"genre_limit":             c.GenreLimit,
	} {
		if limit <= 0 {
			return fmt.Errorf("%s %d must be positive", name, limit)
		}
	}
	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("generate_timeout %v must be positive", c.GenerateTimeout)
	}
	return nil
}
