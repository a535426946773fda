// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/streamvault/internal/models"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "user_role"
)

// UserIDFromContext returns the authenticated user ID, or "" outside
// an authenticated request.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// RoleFromContext returns the authenticated user's role.
func RoleFromContext(ctx context.Context) models.UserRole {
	if role, ok := ctx.Value(roleKey).(models.UserRole); ok {
		return role
	}
	return ""
}

// ContextWithUser stores identity in the context. Exposed for handler
// tests.
func ContextWithUser(ctx context.Context, userID string, role models.UserRole) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// Middleware validates the Authorization bearer token and stores the
// user identity in the request context. Requests without a valid token
// get 401 through the supplied reject func, which lets the API package
// keep its response envelope.
func (m *JWTManager) Middleware(reject func(w http.ResponseWriter, r *http.Request, reason string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				reject(w, r, "missing bearer token")
				return
			}
			claims, err := m.ValidateToken(token)
			if err != nil {
				reject(w, r, "invalid or expired token")
				return
			}
			ctx := ContextWithUser(r.Context(), claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
