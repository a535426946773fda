// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/streamvault/internal/logging"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// completionThreshold is the progress percentage at which playback
// counts as finished.
const completionThreshold = 90.0

// UpsertWatchHistory records playback progress. One row per
// (profile, content) pair; repeated calls update it.
func (h *Handler) UpsertWatchHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	var req UpsertWatchHistoryRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx := r.Context()
	exists, err := h.contentExists(ctx, req.ContentID)
	if err != nil {
		rw.StoreError(err)
		return
	}
	if !exists {
		rw.NotFound("content not found")
		return
	}

	status := models.StatusWatching
	if req.Progress >= completionThreshold {
		status = models.StatusCompleted
	}

	now := models.Now()
	pair := store.Filter{"profile_id": profile.ID, "content_id": req.ContentID}
	matched, err := h.store.UpdateOne(ctx, store.ColWatchHistory, pair, store.Update{
		"progress":     req.Progress,
		"watch_time":   req.WatchTime,
		"status":       string(status),
		"last_watched": now,
	})
	if err != nil {
		rw.StoreError(err)
		return
	}
	if matched == 0 {
		row := models.WatchHistory{
			ID:          models.NewID(),
			ProfileID:   profile.ID,
			ContentID:   req.ContentID,
			Progress:    req.Progress,
			WatchTime:   req.WatchTime,
			Status:      status,
			LastWatched: now,
			CreatedAt:   now,
		}
		if err := h.store.InsertOne(ctx, store.ColWatchHistory, row); err != nil {
			rw.StoreError(err)
			return
		}
	}

	var saved models.WatchHistory
	if err := h.store.FindOne(ctx, store.ColWatchHistory, pair, &saved); err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(saved)
}

// ListWatchHistory returns a profile's playback rows, most recent
// first.
func (h *Handler) ListWatchHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	var rows []models.WatchHistory
	err := h.store.Find(r.Context(), store.ColWatchHistory,
		store.Filter{"profile_id": profile.ID},
		&store.FindOptions{Sort: store.Sort{{Key: "last_watched", Desc: true}}},
		&rows,
	)
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(rows)
}

// AddToMyList saves content on a profile's list.
func (h *Handler) AddToMyList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	var req MyListAddRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx := r.Context()
	exists, err := h.contentExists(ctx, req.ContentID)
	if err != nil {
		rw.StoreError(err)
		return
	}
	if !exists {
		rw.NotFound("content not found")
		return
	}

	pair := store.Filter{"profile_id": profile.ID, "content_id": req.ContentID}
	already, err := h.store.CountDocuments(ctx, store.ColMyList, pair)
	if err != nil {
		rw.StoreError(err)
		return
	}
	if already > 0 {
		rw.Conflict("content already on the list")
		return
	}

	entry := models.MyList{
		ID:        models.NewID(),
		ProfileID: profile.ID,
		ContentID: req.ContentID,
		AddedAt:   models.Now(),
	}
	if err := h.store.InsertOne(ctx, store.ColMyList, entry); err != nil {
		rw.StoreError(err)
		return
	}
	rw.Created(entry)
}

// RemoveFromMyList drops one saved entry.
func (h *Handler) RemoveFromMyList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	n, err := h.store.DeleteOne(r.Context(), store.ColMyList, store.Filter{
		"profile_id": profile.ID,
		"content_id": chi.URLParam(r, "contentID"),
	})
	if err != nil {
		rw.StoreError(err)
		return
	}
	if n == 0 {
		rw.NotFound("content not on the list")
		return
	}
	rw.NoContent()
}

// ListMyList returns the profile's saved content, newest first, joined
// with catalog entries. Entries whose content has vanished are
// dropped.
func (h *Handler) ListMyList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	profile := h.ownedProfile(rw, r, chi.URLParam(r, "profileID"))
	if profile == nil {
		return
	}

	ctx := r.Context()
	var rows []models.MyList
	err := h.store.Find(ctx, store.ColMyList,
		store.Filter{"profile_id": profile.ID},
		&store.FindOptions{Sort: store.Sort{{Key: "added_at", Desc: true}}},
		&rows,
	)
	if err != nil {
		rw.StoreError(err)
		return
	}
	if len(rows) == 0 {
		rw.Success([]models.Content{})
		return
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ContentID)
	}
	var content []models.Content
	if err := h.store.Find(ctx, store.ColContent, store.Filter{"id": store.In(ids)}, nil, &content); err != nil {
		rw.StoreError(err)
		return
	}
	byID := make(map[string]models.Content, len(content))
	for _, c := range content {
		byID[c.ID] = c
	}

	ordered := make([]models.Content, 0, len(rows))
	for _, row := range rows {
		if c, ok := byID[row.ContentID]; ok {
			ordered = append(ordered, c)
		}
	}
	rw.Success(ordered)
}

// CreateReview stores a star rating and refreshes the content's
// denormalized rating snapshot.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateReviewRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	profile := h.ownedProfile(rw, r, req.ProfileID)
	if profile == nil {
		return
	}

	ctx := r.Context()
	contentID := chi.URLParam(r, "contentID")
	exists, err := h.contentExists(ctx, contentID)
	if err != nil {
		rw.StoreError(err)
		return
	}
	if !exists {
		rw.NotFound("content not found")
		return
	}

	pair := store.Filter{"profile_id": profile.ID, "content_id": contentID}
	already, err := h.store.CountDocuments(ctx, store.ColReviews, pair)
	if err != nil {
		rw.StoreError(err)
		return
	}
	if already > 0 {
		rw.Conflict("profile already reviewed this content")
		return
	}

	now := models.Now()
	review := models.Review{
		ID:          models.NewID(),
		ProfileID:   profile.ID,
		ContentID:   contentID,
		ProfileName: profile.Name,
		Rating:      req.Rating,
		ReviewText:  req.ReviewText,
		IsSpoiler:   req.IsSpoiler,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.InsertOne(ctx, store.ColReviews, review); err != nil {
		rw.StoreError(err)
		return
	}

	if err := h.refreshContentRating(ctx, contentID); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("content_id", contentID).Msg("Rating refresh failed")
	}

	rw.Created(review)
}

// ListReviews returns the reviews for one catalog entry, newest first.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var reviews []models.Review
	err := h.store.Find(r.Context(), store.ColReviews,
		store.Filter{"content_id": chi.URLParam(r, "contentID")},
		&store.FindOptions{Sort: store.Sort{{Key: "created_at", Desc: true}}},
		&reviews,
	)
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(reviews)
}

// refreshContentRating recomputes average_rating and total_ratings for
// one catalog entry from its reviews.
func (h *Handler) refreshContentRating(ctx context.Context, contentID string) error {
	var reviews []models.Review
	if err := h.store.Find(ctx, store.ColReviews, store.Filter{"content_id": contentID}, nil, &reviews); err != nil {
		return err
	}

	var sum float64
	for _, rev := range reviews {
		sum += rev.Rating
	}
	avg := 0.0
	if len(reviews) > 0 {
		avg = sum / float64(len(reviews))
	}

	_, err := h.store.UpdateOne(ctx, store.ColContent, store.Filter{"id": contentID}, store.Update{
		"average_rating": avg,
		"total_ratings":  len(reviews),
		"total_reviews":  len(reviews),
		"updated_at":     models.Now(),
	})
	return err
}
