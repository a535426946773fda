// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

// Package recommend implements the recommendation engine for catalog
// content.
//
// # Architecture
//
// The engine blends four candidate generators into a persisted
// recommendation set per viewer profile:
//
//   - Content-based: genre affinity mined from the profile's watch
//     history and reviews
//   - Collaborative: user-user filtering with Pearson correlation over
//     sparse rating vectors
//   - Trending: a global popularity ranking, independent of the profile
//   - Continue-watching: in-progress playback, surfaced but never scored
//
// Genre-keyed rows are additionally generated per top genre of the
// profile. Every personalized generator falls back to trending when the
// profile has no usable signal; that fallback is a design rule, not an
// edge case.
//
// # Scoring
//
// Scores decay linearly with rank inside each algorithm group
// (content-based 0.9-0.05i, collaborative 0.85-0.04i, trending
// 0.8-0.03i). They are ordinal ordering signals, not calibrated
// probabilities: they are not comparable across groups and deep ranks
// may go negative. The decay is preserved exactly for compatibility
// with stored sets.
//
// # State
//
// The engine owns no state between invocations. Each Generate call
// re-reads the profile's activity and the review/content corpus from
// the injected Store and replaces the profile's persisted set
// (delete-then-insert). Concurrent Generate calls for the same profile
// are serialized per profile so replacement writes cannot interleave;
// calls for different profiles share nothing and proceed concurrently.
package recommend
