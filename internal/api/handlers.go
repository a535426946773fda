// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/streamvault/internal/auth"
	"github.com/tomtom215/streamvault/internal/config"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/recommend"
	"github.com/tomtom215/streamvault/internal/store"
)

// Handler carries the dependencies shared by all endpoint handlers.
type Handler struct {
	store  store.Store
	engine *recommend.Engine
	jwt    *auth.JWTManager
	cfg    *config.Config
	logger zerolog.Logger
}

// NewHandler wires the handler dependencies.
func NewHandler(s store.Store, engine *recommend.Engine, jwt *auth.JWTManager, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  s,
		engine: engine,
		jwt:    jwt,
		cfg:    cfg,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// maxProfilesPerUser caps viewer profiles per account.
const maxProfilesPerUser = 5

// ownedProfile loads a profile and checks it belongs to the
// authenticated user. Writes the error response and returns nil when
// the profile is missing or foreign.
func (h *Handler) ownedProfile(rw *ResponseWriter, r *http.Request, profileID string) *models.Profile {
	var profile models.Profile
	err := h.store.FindOne(r.Context(), store.ColProfiles, store.Filter{"id": profileID}, &profile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("profile not found")
		} else {
			rw.StoreError(err)
		}
		return nil
	}
	if profile.UserID != auth.UserIDFromContext(r.Context()) {
		rw.Forbidden("profile belongs to another account")
		return nil
	}
	return &profile
}

// contentExists checks a catalog entry exists before linking activity
// to it.
func (h *Handler) contentExists(ctx context.Context, contentID string) (bool, error) {
	n, err := h.store.CountDocuments(ctx, store.ColContent, store.Filter{"id": contentID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
