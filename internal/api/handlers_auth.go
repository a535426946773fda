// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/streamvault/internal/auth"
	"github.com/tomtom215/streamvault/internal/logging"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// tokenResponse is returned by register and login.
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

// Register creates an account and immediately issues a token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RegisterRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx := r.Context()
	for field, value := range map[string]string{"email": req.Email, "username": req.Username} {
		taken, err := h.store.CountDocuments(ctx, store.ColUsers, store.Filter{field: value})
		if err != nil {
			rw.StoreError(err)
			return
		}
		if taken > 0 {
			rw.Conflict(field + " already registered")
			return
		}
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.Security.BcryptCost)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	now := models.Now()
	user := models.User{
		ID:               models.NewID(),
		Email:            req.Email,
		Username:         req.Username,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		SubscriptionType: "basic",
		Role:             models.RoleUser,
		IsActive:         true,
		HashedPassword:   hash,
		Profiles:         []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.store.InsertOne(ctx, store.ColUsers, user); err != nil {
		rw.StoreError(err)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		rw.InternalError("could not issue token")
		return
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("User registered")
	rw.Created(tokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// Login verifies credentials and issues a token. Unknown email and
// wrong password return the same message so accounts cannot be
// enumerated.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx := r.Context()
	var user models.User
	err := h.store.FindOne(ctx, store.ColUsers, store.Filter{"email": req.Email}, &user)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.Unauthorized("invalid email or password")
		} else {
			rw.StoreError(err)
		}
		return
	}
	if !user.IsActive {
		rw.Forbidden("account is disabled")
		return
	}
	if !auth.VerifyPassword(user.HashedPassword, req.Password) {
		rw.Unauthorized("invalid email or password")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		rw.InternalError("could not issue token")
		return
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID).Msg("User logged in")
	rw.Success(tokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// Me returns the authenticated user's account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var user models.User
	err := h.store.FindOne(r.Context(), store.ColUsers, store.Filter{"id": auth.UserIDFromContext(r.Context())}, &user)
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(user)
}
