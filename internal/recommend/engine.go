// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/streamvault/internal/metrics"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// Engine computes and persists recommendation sets. It is stateless
// between runs; every Generate call re-reads activity from the store,
// so there is no cache to invalidate when tastes change.
type Engine struct {
	store  Store
	config *Config
	logger zerolog.Logger

	mu    sync.Mutex
	locks map[string]*profileLock
}

// profileLock serializes Generate runs for a single profile. The
// refcount lets the entry be dropped once the last holder releases it,
// keeping the map bounded by concurrent callers rather than by the
// number of profiles ever seen.
type profileLock struct {
	sync.Mutex
	refs int
}

// NewEngine validates the config and returns a ready engine.
func NewEngine(s Store, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("recommend: nil store")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return &Engine{
		store:  s,
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		locks:  make(map[string]*profileLock),
	}, nil
}

func (e *Engine) acquire(profileID string) *profileLock {
	e.mu.Lock()
	l, ok := e.locks[profileID]
	if !ok {
		l = &profileLock{}
		e.locks[profileID] = l
	}
	l.refs++
	e.mu.Unlock()
	l.Lock()
	return l
}

func (e *Engine) release(profileID string, l *profileLock) {
	l.Unlock()
	e.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, profileID)
	}
	e.mu.Unlock()
}

// Generate recomputes every recommendation group for a profile,
// replaces the persisted sets and returns the full result. Concurrent
// calls for the same profile are serialized; concurrent calls for
// different profiles run independently.
func (e *Engine) Generate(ctx context.Context, profileID string) (*Result, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.RecommendGenerateRuns.WithLabelValues(outcome).Inc()
		metrics.RecommendGenerateDuration.Observe(time.Since(start).Seconds())
	}()

	lock := e.acquire(profileID)
	defer e.release(profileID, lock)

	ctx, cancel := context.WithTimeout(ctx, e.config.GenerateTimeout)
	defer cancel()

	res := &Result{GenreRecommendations: make(map[string][]string)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := e.contentBased(gctx, profileID, e.config.ContentBasedLimit)
		res.ContentBased = ids
		return err
	})
	g.Go(func() error {
		ids, err := e.collaborative(gctx, profileID, e.config.CollaborativeLimit)
		res.Collaborative = ids
		return err
	})
	g.Go(func() error {
		ids, err := e.trending(gctx, e.config.TrendingLimit)
		res.Trending = ids
		return err
	})
	g.Go(func() error {
		ids, err := e.continueWatching(gctx, profileID, e.config.ContinueWatchingLimit)
		res.ContinueWatching = ids
		return err
	})
	if err := g.Wait(); err != nil {
		e.logger.Error().Err(err).Str("profile_id", profileID).Msg("Recommendation generation failed")
		return nil, err
	}

	topGenres, err := e.topProfileGenres(ctx, profileID)
	if err != nil {
		e.logger.Error().Err(err).Str("profile_id", profileID).Msg("Genre derivation failed")
		return nil, err
	}
	for _, genreID := range topGenres {
		ids, err := e.genreBased(ctx, profileID, []int{genreID}, e.config.GenreLimit)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			res.GenreRecommendations[fmt.Sprintf("genre_%d", genreID)] = ids
		}
	}

	if err := e.persist(ctx, profileID, res); err != nil {
		e.logger.Error().Err(err).Str("profile_id", profileID).Msg("Recommendation persistence failed")
		return nil, err
	}

	outcome = "success"
	e.logger.Info().
		Str("profile_id", profileID).
		Int("content_based", len(res.ContentBased)).
		Int("collaborative", len(res.Collaborative)).
		Int("trending", len(res.Trending)).
		Int("continue_watching", len(res.ContinueWatching)).
		Int("genre_groups", len(res.GenreRecommendations)).
		Dur("elapsed", time.Since(start)).
		Msg("Recommendations generated")
	return res, nil
}

// topProfileGenres derives the profile's dominant genres from its
// watch history, most frequent first.
func (e *Engine) topProfileGenres(ctx context.Context, profileID string) ([]int, error) {
	var history []models.WatchHistory
	if err := e.store.Find(ctx, store.ColWatchHistory, store.Filter{"profile_id": profileID}, nil, &history); err != nil {
		return nil, fmt.Errorf("load watch history: %w", err)
	}
	if len(history) == 0 {
		return nil, nil
	}

	watched := make([]string, 0, len(history))
	for _, h := range history {
		watched = append(watched, h.ContentID)
	}
	var content []models.Content
	if err := e.store.Find(ctx, store.ColContent, store.Filter{"id": store.In(watched)}, nil, &content); err != nil {
		return nil, fmt.Errorf("load watched content: %w", err)
	}

	tally := newGenreTally()
	for _, c := range content {
		tally.add(c.GenreIDs)
	}
	return tally.top(e.config.ProfileTopGenres), nil
}

// persist replaces the stored rows for the scored algorithms. Continue
// watching and the per-genre groups are derived views and are returned
// inline only; they never hit the recommendations collection.
func (e *Engine) persist(ctx context.Context, profileID string, res *Result) error {
	rows := make([]any, 0, len(res.ContentBased)+len(res.Collaborative)+len(res.Trending))
	now := models.Now()

	appendRows := func(ids []string, algo models.Algorithm, reason string, score func(rank int) float64) {
		for i, contentID := range ids {
			rows = append(rows, models.Recommendation{
				ID:            models.NewID(),
				ProfileID:     profileID,
				ContentID:     contentID,
				AlgorithmUsed: algo,
				Score:         score(i),
				Reason:        reason,
				CreatedAt:     now,
			})
		}
	}
	appendRows(res.ContentBased, models.AlgorithmContentBased, reasonContentBased, scoreContentBased)
	appendRows(res.Collaborative, models.AlgorithmCollaborative, reasonCollaborative, scoreCollaborative)
	appendRows(res.Trending, models.AlgorithmTrending, reasonTrending, scoreTrending)

	if _, err := e.store.DeleteMany(ctx, store.ColRecommendations, store.Filter{"profile_id": profileID}); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}
	if len(rows) > 0 {
		if err := e.store.InsertMany(ctx, store.ColRecommendations, rows); err != nil {
			return fmt.Errorf("insert recommendations: %w", err)
		}
	}
	metrics.RecommendPersistedSetSize.Observe(float64(len(rows)))
	return nil
}

// sortNeighbors orders neighbors by descending correlation, ties
// broken by profile ID, so runs over the same corpus are reproducible.
func sortNeighbors(neighbors []ratedNeighbor) {
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].correlation != neighbors[j].correlation {
			return neighbors[i].correlation > neighbors[j].correlation
		}
		return neighbors[i].profileID < neighbors[j].profileID
	})
}
