// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package recommend

import (
	"context"

	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// Store is the slice of the document-query capability the engine
// consumes. Declared here rather than importing the full store.Store so
// the engine states exactly what it touches; both store.Mongo and
// store.Memory satisfy it.
type Store interface {
	Find(ctx context.Context, collection string, filter store.Filter, opts *store.FindOptions, dest any) error
	Aggregate(ctx context.Context, collection string, pipeline []store.Stage, dest any) error
	InsertMany(ctx context.Context, collection string, docs []any) error
	DeleteMany(ctx context.Context, collection string, filter store.Filter) (int64, error)
}

// RatingVector maps content ID to star rating for one profile. It is
// derived from the review corpus per request and never persisted.
type RatingVector map[string]float64

// Result groups the five generator outputs of one aggregation run.
// All groups are returned to the caller for immediate display; only
// the content-based, collaborative and trending groups are persisted.
type Result struct {
	ContentBased         []string            `json:"content_based"`
	Collaborative        []string            `json:"collaborative"`
	Trending             []string            `json:"trending"`
	ContinueWatching     []string            `json:"continue_watching"`
	GenreRecommendations map[string][]string `json:"genre_recommendations"`
}

// ScoredRecommendation joins a persisted recommendation row with its
// content record for display.
type ScoredRecommendation struct {
	Recommendation models.Recommendation `json:"recommendation"`
	Content        models.Content        `json:"content"`
}

// Human-readable reasons attached to persisted rows, fixed per
// algorithm.
const (
	reasonContentBased  = "Based on your viewing history"
	reasonCollaborative = "Users with similar taste also liked"
	reasonTrending      = "Trending now"
)

// Linear rank-decay scoring. Rank is 0-indexed. Values may go negative
// at deep ranks; callers must not clamp, the decay is part of the
// stored-set contract.
func scoreContentBased(rank int) float64  { return 0.9 - 0.05*float64(rank) }
func scoreCollaborative(rank int) float64 { return 0.85 - 0.04*float64(rank) }
func scoreTrending(rank int) float64      { return 0.8 - 0.03*float64(rank) }
