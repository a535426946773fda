// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package recommend

import (
	"context"
	"fmt"

	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// RecommendationsFor reads persisted rows for a profile, best score
// first, joined with the catalog entries they point at. Rows whose
// content has since been removed from the catalog are dropped rather
// than surfaced as errors. An empty algorithm returns all persisted
// groups mixed by score.
func (e *Engine) RecommendationsFor(ctx context.Context, profileID string, algorithm models.Algorithm, limit int) ([]ScoredRecommendation, error) {
	if algorithm != "" && !algorithm.Valid() {
		return nil, fmt.Errorf("unknown algorithm %q", algorithm)
	}
	if limit <= 0 {
		limit = e.config.ContentBasedLimit
	}

	filter := store.Filter{"profile_id": profileID}
	if algorithm != "" {
		filter["algorithm_used"] = string(algorithm)
	}

	var rows []models.Recommendation
	err := e.store.Find(ctx, store.ColRecommendations, filter,
		&store.FindOptions{
			Sort:  store.Sort{{Key: "score", Desc: true}},
			Limit: int64(limit),
		},
		&rows,
	)
	if err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	if len(rows) == 0 {
		return []ScoredRecommendation{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ContentID)
	}
	var content []models.Content
	if err := e.store.Find(ctx, store.ColContent, store.Filter{"id": store.In(ids)}, nil, &content); err != nil {
		return nil, fmt.Errorf("load recommended content: %w", err)
	}
	byID := make(map[string]models.Content, len(content))
	for _, c := range content {
		byID[c.ID] = c
	}

	out := make([]ScoredRecommendation, 0, len(rows))
	for _, r := range rows {
		c, ok := byID[r.ContentID]
		if !ok {
			continue
		}
		out = append(out, ScoredRecommendation{Recommendation: r, Content: c})
	}
	return out, nil
}
