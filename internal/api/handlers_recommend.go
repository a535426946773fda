// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/streamvault/internal/logging"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// GenerateRecommendations recomputes and persists all groups for a
// profile, returning the fresh result inline.
func (h *Handler) GenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	result, err := h.engine.Generate(r.Context(), profile.ID)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			rw.ServiceUnavailable("recommendations temporarily unavailable, retry shortly")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("profile_id", profile.ID).Msg("Generation failed")
		rw.InternalError("recommendation generation failed")
		return
	}
	rw.Success(result)
}

// GetRecommendations reads the persisted recommendation rows for a
// profile, optionally filtered to one algorithm.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	q := RecommendationsQuery{
		Algorithm: r.URL.Query().Get("algorithm"),
		Limit:     queryInt(r, "limit", 20),
	}
	if !validateRequest(rw, &q) {
		return
	}

	recs, err := h.engine.RecommendationsFor(r.Context(), profile.ID, models.Algorithm(q.Algorithm), q.Limit)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			rw.ServiceUnavailable("recommendations temporarily unavailable, retry shortly")
			return
		}
		rw.StoreError(err)
		return
	}
	rw.Success(recs)
}
