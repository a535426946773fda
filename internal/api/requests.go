// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New()

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"omitempty,max=64"`
	LastName  string `json:"last_name" validate:"omitempty,max=64"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateProfileRequest is the body for POST /profiles.
type CreateProfileRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=32"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
	ProfileType string `json:"profile_type" validate:"omitempty,oneof=adult teen kids"`
}

// UpdateProfileRequest is the body for PUT /profiles/{profileID}.
// Pointer fields distinguish "leave alone" from "set to zero value".
type UpdateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=32"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	ProfileType *string `json:"profile_type" validate:"omitempty,oneof=adult teen kids"`
}

// UpsertWatchHistoryRequest is the body for PUT
// /profiles/{profileID}/watch-history.
type UpsertWatchHistoryRequest struct {
	ContentID string  `json:"content_id" validate:"required"`
	Progress  float64 `json:"progress" validate:"min=0,max=100"`
	WatchTime int     `json:"watch_time" validate:"min=0"`
}

// MyListAddRequest is the body for POST /profiles/{profileID}/my-list.
type MyListAddRequest struct {
	ContentID string `json:"content_id" validate:"required"`
}

// CreateReviewRequest is the body for POST /content/{contentID}/reviews.
type CreateReviewRequest struct {
	ProfileID  string  `json:"profile_id" validate:"required"`
	Rating     float64 `json:"rating" validate:"required,min=0.5,max=5"`
	ReviewText string  `json:"review_text" validate:"omitempty,max=2000"`
	IsSpoiler  bool    `json:"is_spoiler"`
}

// ListContentRequest holds the validated query parameters of
// GET /content.
type ListContentRequest struct {
	GenreID     int    `validate:"omitempty,min=1"`
	ContentType string `validate:"omitempty,oneof=movie tv_show documentary"`
	Search      string `validate:"omitempty,max=128"`
	SortBy      string `validate:"omitempty,oneof=average_rating total_ratings release_year title"`
	Limit       int    `validate:"min=1,max=100"`
	Offset      int    `validate:"min=0,max=100000"`
}

// RecommendationsQuery holds the validated query parameters of
// GET /profiles/{profileID}/recommendations.
type RecommendationsQuery struct {
	Algorithm string `validate:"omitempty,oneof=content_based collaborative trending"`
	Limit     int    `validate:"min=1,max=50"`
}

// decodeJSON reads and validates a JSON request body into dst.
// Returns false after writing the error response.
func decodeJSON(rw *ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rw.BadRequest("invalid JSON body")
		return false
	}
	return validateRequest(rw, dst)
}

// validateRequest runs validator tags over v, writing a 400 with
// per-field details on failure.
func validateRequest(rw *ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		rw.BadRequest("invalid request")
		return false
	}

	details := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, map[string]string{
			"field":  fe.Field(),
			"reason": fmt.Sprintf("failed %s validation", fe.Tag()),
		})
	}
	rw.ValidationError("request validation failed", details)
	return false
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
