// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

// Package refresh keeps persisted recommendations warm. A supervised
// worker periodically scans for profiles with activity since the last
// sweep and regenerates their recommendation sets, throttled so a large
// backlog cannot starve interactive traffic.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/streamvault/internal/config"
	"github.com/tomtom215/streamvault/internal/metrics"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/recommend"
	"github.com/tomtom215/streamvault/internal/store"
)

// Generator is the slice of the recommendation engine the worker
// drives.
type Generator interface {
	Generate(ctx context.Context, profileID string) (*recommend.Result, error)
}

// Store is the read capability the activity scan needs.
type Store interface {
	Find(ctx context.Context, collection string, filter store.Filter, opts *store.FindOptions, dest any) error
}

// Worker is the background refresher. It implements suture.Service via
// Serve and is safe to restart: the activity watermark starts at the
// worker's construction time, so a restart re-scans at most one
// interval of history.
type Worker struct {
	store     Store
	generator Generator
	cfg       config.RefreshConfig
	logger    zerolog.Logger
	limiter   *rate.Limiter

	// lastSweep is the activity watermark. Only Serve's goroutine
	// touches it after construction.
	lastSweep time.Time

	// pending holds profiles deferred past the per-run cap or whose
	// generation failed, queued ahead of new activity next sweep.
	pending []string
}

// NewWorker builds a refresh worker from validated config.
func NewWorker(s Store, g Generator, cfg config.RefreshConfig, logger zerolog.Logger) (*Worker, error) {
	if s == nil {
		return nil, errors.New("refresh: nil store")
	}
	if g == nil {
		return nil, errors.New("refresh: nil generator")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("refresh: interval %v must be positive", cfg.Interval)
	}
	if cfg.ProfilesPerSecond <= 0 {
		return nil, fmt.Errorf("refresh: profiles_per_second %v must be positive", cfg.ProfilesPerSecond)
	}
	if cfg.MaxPerRun <= 0 {
		return nil, fmt.Errorf("refresh: max_per_run %d must be positive", cfg.MaxPerRun)
	}
	return &Worker{
		store:     s,
		generator: g,
		cfg:       cfg,
		logger:    logger.With().Str("component", "refresh").Logger(),
		limiter:   rate.NewLimiter(rate.Limit(cfg.ProfilesPerSecond), 1),
		lastSweep: time.Now().UTC(),
	}, nil
}

// Serve implements suture.Service. It sweeps on every interval tick
// until the context is canceled.
func (w *Worker) Serve(ctx context.Context) error {
	w.logger.Info().
		Dur("interval", w.cfg.Interval).
		Float64("profiles_per_second", w.cfg.ProfilesPerSecond).
		Int("max_per_run", w.cfg.MaxPerRun).
		Msg("Refresh worker started")

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Refresh worker stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// The next tick retries; a transient store outage
				// must not crash the service into suture backoff.
				w.logger.Error().Err(err).Msg("Refresh sweep failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (w *Worker) String() string {
	return "recommendation-refresh"
}

// Sweep regenerates recommendations for every profile with activity
// since the previous sweep, up to the per-run cap. Profiles cut by the
// cap, and profiles whose generation failed, stay queued for the next
// sweep; the watermark only advances when the scan itself succeeds.
func (w *Worker) Sweep(ctx context.Context) error {
	start := time.Now()

	profileIDs, err := w.activeProfiles(ctx, w.lastSweep)
	if err != nil {
		metrics.RefreshRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("scan activity: %w", err)
	}
	w.lastSweep = start.UTC()

	queue := mergeIDs(w.pending, profileIDs)
	w.pending = nil

	if len(queue) > w.cfg.MaxPerRun {
		w.logger.Warn().
			Int("active", len(queue)).
			Int("cap", w.cfg.MaxPerRun).
			Msg("Active profiles exceed per-run cap, deferring the rest")
		w.pending = append(w.pending, queue[w.cfg.MaxPerRun:]...)
		queue = queue[:w.cfg.MaxPerRun]
	}

	var processed, failed int
	for i, id := range queue {
		if err := w.limiter.Wait(ctx); err != nil {
			w.pending = mergeIDs(queue[i:], w.pending)
			metrics.RefreshRuns.WithLabelValues("error").Inc()
			return err
		}
		if _, err := w.generator.Generate(ctx, id); err != nil {
			if ctx.Err() != nil {
				w.pending = mergeIDs(queue[i:], w.pending)
				metrics.RefreshRuns.WithLabelValues("error").Inc()
				return ctx.Err()
			}
			failed++
			w.pending = append(w.pending, id)
			w.logger.Error().Err(err).Str("profile_id", id).Msg("Refresh generation failed")
			continue
		}
		processed++
		metrics.RefreshProfilesProcessed.Inc()
	}

	metrics.RefreshRuns.WithLabelValues("success").Inc()
	metrics.RefreshSweepDuration.Observe(time.Since(start).Seconds())
	if processed > 0 || failed > 0 {
		w.logger.Info().
			Int("processed", processed).
			Int("failed", failed).
			Dur("elapsed", time.Since(start)).
			Msg("Refresh sweep finished")
	}
	return nil
}

// mergeIDs concatenates the two lists, dropping duplicates and keeping
// first-seen order.
func mergeIDs(first, second []string) []string {
	seen := make(map[string]struct{}, len(first)+len(second))
	out := make([]string, 0, len(first)+len(second))
	for _, id := range first {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range second {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// activeProfiles returns the IDs of profiles with watch or review
// activity after since, deduplicated in first-seen order.
func (w *Worker) activeProfiles(ctx context.Context, since time.Time) ([]string, error) {
	var history []models.WatchHistory
	err := w.store.Find(ctx, store.ColWatchHistory,
		store.Filter{"last_watched": store.Cmp{Gt: since}},
		&store.FindOptions{Sort: store.Sort{{Key: "last_watched"}}},
		&history,
	)
	if err != nil {
		return nil, err
	}

	var reviews []models.Review
	err = w.store.Find(ctx, store.ColReviews,
		store.Filter{"created_at": store.Cmp{Gt: since}},
		&store.FindOptions{Sort: store.Sort{{Key: "created_at"}}},
		&reviews,
	)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, h := range history {
		add(h.ProfileID)
	}
	for _, r := range reviews {
		add(r.ProfileID)
	}
	return ids, nil
}
