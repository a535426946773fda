// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the full HTTP surface: health and metrics at the
// root, the versioned API under /api/v1. Authentication endpoints carry
// the stricter auth rate limit; everything else under /api/v1 requires
// a bearer token.
func NewRouter(h *Handler, m *Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Instrument)
	r.Use(m.CORS())

	r.Get("/health/live", h.Liveness)
	r.Get("/health/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	requireAuth := h.jwt.Middleware(func(w http.ResponseWriter, r *http.Request, reason string) {
		NewResponseWriter(w, r).Unauthorized(reason)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(m.AuthRateLimit())
			r.Post("/auth/register", h.Register)
			r.Post("/auth/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.RateLimit())
			r.Use(requireAuth)

			r.Get("/auth/me", h.Me)

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/", h.ListProfiles)
				r.Post("/", h.CreateProfile)

				r.Route("/{profileID}", func(r chi.Router) {
					r.Get("/", h.GetProfile)
					r.Put("/", h.UpdateProfile)
					r.Delete("/", h.DeleteProfile)

					r.Get("/watch-history", h.ListWatchHistory)
					r.Put("/watch-history", h.UpsertWatchHistory)

					r.Get("/my-list", h.ListMyList)
					r.Post("/my-list", h.AddToMyList)
					r.Delete("/my-list/{contentID}", h.RemoveFromMyList)

					r.Get("/recommendations", h.GetRecommendations)
					r.Post("/recommendations/generate", h.GenerateRecommendations)
				})
			})

			r.Route("/content", func(r chi.Router) {
				r.Get("/", h.ListContent)

				r.Route("/{contentID}", func(r chi.Router) {
					r.Get("/", h.GetContent)
					r.Get("/reviews", h.ListReviews)
					r.Post("/reviews", h.CreateReview)
				})
			})
		})
	})

	return r
}
