// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/streamvault/internal/auth"
	"github.com/tomtom215/streamvault/internal/logging"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// ListProfiles returns the authenticated user's profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var profiles []models.Profile
	err := h.store.Find(r.Context(), store.ColProfiles,
		store.Filter{"user_id": auth.UserIDFromContext(r.Context())},
		&store.FindOptions{Sort: store.Sort{{Key: "created_at"}}},
		&profiles,
	)
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(profiles)
}

// GetProfile returns one profile owned by the caller.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}
	rw.Success(profile)
}

// CreateProfile adds a viewer profile under the caller's account.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateProfileRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	existing, err := h.store.CountDocuments(ctx, store.ColProfiles, store.Filter{"user_id": userID})
	if err != nil {
		rw.StoreError(err)
		return
	}
	if existing >= maxProfilesPerUser {
		rw.Conflict("profile limit reached")
		return
	}

	profileType := models.ProfileAdult
	if req.ProfileType != "" {
		profileType = models.ProfileType(req.ProfileType)
	}

	now := models.Now()
	profile := models.Profile{
		ID:               models.NewID(),
		UserID:           userID,
		Name:             req.Name,
		AvatarURL:        req.AvatarURL,
		ProfileType:      profileType,
		Language:         "en",
		MaturityRating:   maturityFor(profileType),
		AutoPlayNext:     true,
		AutoPlayPreviews: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.store.InsertOne(ctx, store.ColProfiles, profile); err != nil {
		rw.StoreError(err)
		return
	}

	logging.Ctx(ctx).Info().Str("profile_id", profile.ID).Msg("Profile created")
	rw.Created(profile)
}

// UpdateProfile applies a partial update to an owned profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	var req UpdateProfileRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	update := store.Update{"updated_at": models.Now()}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.AvatarURL != nil {
		update["avatar_url"] = *req.AvatarURL
	}
	if req.ProfileType != nil {
		pt := models.ProfileType(*req.ProfileType)
		update["profile_type"] = string(pt)
		update["maturity_rating"] = maturityFor(pt)
	}

	if _, err := h.store.UpdateOne(r.Context(), store.ColProfiles, store.Filter{"id": profile.ID}, update); err != nil {
		rw.StoreError(err)
		return
	}

	var updated models.Profile
	if err := h.store.FindOne(r.Context(), store.ColProfiles, store.Filter{"id": profile.ID}, &updated); err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(updated)
}

// DeleteProfile removes a profile and cascades its activity: watch
// history, saved list, reviews and persisted recommendations.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	ctx := r.Context()
	byProfile := store.Filter{"profile_id": profile.ID}
	for _, collection := range []string{
		store.ColWatchHistory,
		store.ColMyList,
		store.ColReviews,
		store.ColRecommendations,
	} {
		if _, err := h.store.DeleteMany(ctx, collection, byProfile); err != nil {
			rw.StoreError(err)
			return
		}
	}
	if _, err := h.store.DeleteOne(ctx, store.ColProfiles, store.Filter{"id": profile.ID}); err != nil {
		rw.StoreError(err)
		return
	}

	logging.Ctx(ctx).Info().Str("profile_id", profile.ID).Msg("Profile deleted")
	rw.NoContent()
}

func maturityFor(t models.ProfileType) string {
	switch t {
	case models.ProfileKids:
		return "PG"
	case models.ProfileTeen:
		return "PG-13"
	default:
		return "R"
	}
}
