// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"context"
	"net/http"
	"time"
)

// Liveness reports the process is up.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// Readiness reports whether the store answers a ping within a short
// deadline.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		rw.ServiceUnavailable("store unreachable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
