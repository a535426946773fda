// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/streamvault/internal/metrics"
	"github.com/tomtom215/streamvault/internal/models"
	"github.com/tomtom215/streamvault/internal/store"
)

// profileActivity is the accumulated signal for one profile: watch
// history, reviews and saved-list rows.
type profileActivity struct {
	history []models.WatchHistory
	reviews []models.Review
	list    []models.MyList
}

// consumedContentIDs returns the union of watched and rated content
// IDs, history first, deduplicated in encounter order.
func (a *profileActivity) consumedContentIDs() []string {
	seen := make(map[string]struct{}, len(a.history)+len(a.reviews))
	out := make([]string, 0, len(a.history)+len(a.reviews))
	for _, h := range a.history {
		if _, ok := seen[h.ContentID]; !ok {
			seen[h.ContentID] = struct{}{}
			out = append(out, h.ContentID)
		}
	}
	for _, r := range a.reviews {
		if _, ok := seen[r.ContentID]; !ok {
			seen[r.ContentID] = struct{}{}
			out = append(out, r.ContentID)
		}
	}
	return out
}

// ratingVector builds the profile's content -> rating map from its
// reviews.
func (a *profileActivity) ratingVector() RatingVector {
	vec := make(RatingVector, len(a.reviews))
	for _, r := range a.reviews {
		vec[r.ContentID] = r.Rating
	}
	return vec
}

// profileActivity loads the three activity collections for a profile.
func (e *Engine) profileActivity(ctx context.Context, profileID string) (*profileActivity, error) {
	act := &profileActivity{}
	byProfile := store.Filter{"profile_id": profileID}

	if err := e.store.Find(ctx, store.ColWatchHistory, byProfile, nil, &act.history); err != nil {
		return nil, fmt.Errorf("load watch history: %w", err)
	}
	if err := e.store.Find(ctx, store.ColReviews, byProfile, nil, &act.reviews); err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	if err := e.store.Find(ctx, store.ColMyList, byProfile, nil, &act.list); err != nil {
		return nil, fmt.Errorf("load my list: %w", err)
	}
	return act, nil
}

// genreTally counts genre occurrences while preserving the order each
// genre was first encountered, so frequency ties rank deterministically.
type genreTally struct {
	counts map[int]int
	order  []int
}

func newGenreTally() *genreTally {
	return &genreTally{counts: make(map[int]int)}
}

func (t *genreTally) add(genreIDs []int) {
	for _, id := range genreIDs {
		if _, ok := t.counts[id]; !ok {
			t.order = append(t.order, id)
		}
		t.counts[id]++
	}
}

// top returns up to n genre IDs by descending count; ties keep
// first-encountered order.
func (t *genreTally) top(n int) []int {
	ranked := make([]int, len(t.order))
	copy(ranked, t.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return t.counts[ranked[i]] > t.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// contentBased recommends unconsumed content overlapping the profile's
// dominant genres, best-rated first. Profiles without any watch or
// review signal fall back to trending.
func (e *Engine) contentBased(ctx context.Context, profileID string, limit int) ([]string, error) {
	defer observeGenerator("content_based", time.Now())

	act, err := e.profileActivity(ctx, profileID)
	if err != nil {
		return nil, err
	}

	consumed := act.consumedContentIDs()
	if len(consumed) == 0 {
		metrics.RecommendFallbacks.WithLabelValues("content_based").Inc()
		return e.trending(ctx, limit)
	}

	var userContent []models.Content
	if err := e.store.Find(ctx, store.ColContent, store.Filter{"id": store.In(consumed)}, nil, &userContent); err != nil {
		return nil, fmt.Errorf("load consumed content: %w", err)
	}
	if len(userContent) == 0 {
		metrics.RecommendFallbacks.WithLabelValues("content_based").Inc()
		return e.trending(ctx, limit)
	}

	tally := newGenreTally()
	for _, c := range userContent {
		tally.add(c.GenreIDs)
	}
	topGenres := tally.top(e.config.TasteGenres)

	var candidates []models.Content
	err = e.store.Find(ctx, store.ColContent,
		store.Filter{
			"id":        store.NotIn(consumed),
			"genre_ids": store.In(topGenres),
		},
		&store.FindOptions{
			Sort:  store.Sort{{Key: "average_rating", Desc: true}},
			Limit: int64(limit),
		},
		&candidates,
	)
	if err != nil {
		return nil, fmt.Errorf("query genre candidates: %w", err)
	}

	return contentIDs(candidates), nil
}

// ratedNeighbor pairs a profile with its correlation to the requester.
type ratedNeighbor struct {
	profileID   string
	correlation float64
}

// collaborative recommends content that similar raters scored highly.
// A profile with no reviews has no rating vector and falls back to
// trending.
func (e *Engine) collaborative(ctx context.Context, profileID string, limit int) ([]string, error) {
	defer observeGenerator("collaborative", time.Now())

	act, err := e.profileActivity(ctx, profileID)
	if err != nil {
		return nil, err
	}
	own := act.ratingVector()
	if len(own) == 0 {
		metrics.RecommendFallbacks.WithLabelValues("collaborative").Inc()
		return e.trending(ctx, limit)
	}

	var allReviews []models.Review
	if err := e.store.Find(ctx, store.ColReviews, store.Filter{}, nil, &allReviews); err != nil {
		return nil, fmt.Errorf("load review corpus: %w", err)
	}

	vectors := make(map[string]RatingVector)
	for _, r := range allReviews {
		if vectors[r.ProfileID] == nil {
			vectors[r.ProfileID] = make(RatingVector)
		}
		vectors[r.ProfileID][r.ContentID] = r.Rating
	}

	neighbors := make([]ratedNeighbor, 0)
	for otherID, other := range vectors {
		if otherID == profileID {
			continue
		}
		corr, ok := PearsonCorrelation(own, other, e.config.MinCommonItems)
		if !ok || corr <= e.config.SimilarityThreshold {
			continue
		}
		neighbors = append(neighbors, ratedNeighbor{profileID: otherID, correlation: corr})
	}

	sortNeighbors(neighbors)
	if len(neighbors) > e.config.MaxNeighbors {
		neighbors = neighbors[:e.config.MaxNeighbors]
	}

	// A candidate surfaced by several neighbors accumulates one
	// contribution per neighbor; consensus is rewarded on purpose.
	scores := make(map[string]float64)
	for _, n := range neighbors {
		for contentID, rating := range vectors[n.profileID] {
			if rating < e.config.NeighborRatingFloor {
				continue
			}
			if _, alreadyRated := own[contentID]; alreadyRated {
				continue
			}
			scores[contentID] += rating * n.correlation
		}
	}

	ranked := make([]string, 0, len(scores))
	for contentID := range scores {
		ranked = append(ranked, contentID)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// trending ranks the corpus globally: titles with enough ratings and a
// high enough average, most-rated first. The requesting profile plays
// no part; every caller sees the same list for the same corpus.
func (e *Engine) trending(ctx context.Context, limit int) ([]string, error) {
	defer observeGenerator("trending", time.Now())

	var ranked []models.Content
	err := e.store.Aggregate(ctx, store.ColContent, []store.Stage{
		{Match: store.Filter{
			"total_ratings":  store.Cmp{Gte: e.config.TrendingMinRatings},
			"average_rating": store.Cmp{Gte: e.config.TrendingMinAverage},
		}},
		{Sort: store.Sort{
			{Key: "total_ratings", Desc: true},
			{Key: "average_rating", Desc: true},
		}},
		{Limit: int64(limit)},
	}, &ranked)
	if err != nil {
		return nil, fmt.Errorf("aggregate trending: %w", err)
	}

	return contentIDs(ranked), nil
}

// genreBased recommends the best-rated unwatched content intersecting
// the given genres. Only watch history counts as consumed here;
// reviewed-but-unwatched titles may still surface.
func (e *Engine) genreBased(ctx context.Context, profileID string, genreIDs []int, limit int) ([]string, error) {
	defer observeGenerator("genre_based", time.Now())

	var history []models.WatchHistory
	if err := e.store.Find(ctx, store.ColWatchHistory, store.Filter{"profile_id": profileID}, nil, &history); err != nil {
		return nil, fmt.Errorf("load watch history: %w", err)
	}
	watched := make([]string, 0, len(history))
	for _, h := range history {
		watched = append(watched, h.ContentID)
	}

	var candidates []models.Content
	err := e.store.Find(ctx, store.ColContent,
		store.Filter{
			"id":        store.NotIn(watched),
			"genre_ids": store.In(genreIDs),
		},
		&store.FindOptions{
			Sort:  store.Sort{{Key: "average_rating", Desc: true}},
			Limit: int64(limit),
		},
		&candidates,
	)
	if err != nil {
		return nil, fmt.Errorf("query genre candidates: %w", err)
	}

	return contentIDs(candidates), nil
}

// continueWatching surfaces in-progress playback: rows inside the
// configured progress window with watching status, most recent first.
// This is a filter over activity, not a scored recommendation.
func (e *Engine) continueWatching(ctx context.Context, profileID string, limit int) ([]string, error) {
	defer observeGenerator("continue_watching", time.Now())

	var rows []models.WatchHistory
	err := e.store.Find(ctx, store.ColWatchHistory,
		store.Filter{
			"profile_id": profileID,
			"progress":   store.Cmp{Gt: e.config.ContinueMinProgress, Lt: e.config.ContinueMaxProgress},
			"status":     string(models.StatusWatching),
		},
		&store.FindOptions{
			Sort:  store.Sort{{Key: "last_watched", Desc: true}},
			Limit: int64(limit),
		},
		&rows,
	)
	if err != nil {
		return nil, fmt.Errorf("query continue watching: %w", err)
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ContentID)
	}
	return out, nil
}

func contentIDs(content []models.Content) []string {
	out := make([]string, 0, len(content))
	for _, c := range content {
		out = append(out, c.ID)
	}
	return out
}

func observeGenerator(name string, start time.Time) {
	metrics.RecommendGeneratorDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
