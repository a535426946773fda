// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

// Package models defines the persisted entities shared by the store, the
// HTTP layer and the recommendation engine.
//
// All documents carry an application-assigned UUID in the "id" field; the
// Mongo-internal "_id" is never exposed. Timestamps are UTC.
package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole classifies account privileges.
type UserRole string

// User roles.
const (
	RoleUser      UserRole = "user"
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
)

// ProfileType gates content maturity per viewer profile.
type ProfileType string

// Profile types.
const (
	ProfileAdult ProfileType = "adult"
	ProfileTeen  ProfileType = "teen"
	ProfileKids  ProfileType = "kids"
)

// ContentType is the kind of catalog entry.
type ContentType string

// Content types.
const (
	ContentMovie       ContentType = "movie"
	ContentTVShow      ContentType = "tv_show"
	ContentDocumentary ContentType = "documentary"
)

// WatchStatus tracks where a profile stands with a piece of content.
type WatchStatus string

// Watch statuses.
const (
	StatusWatching    WatchStatus = "watching"
	StatusCompleted   WatchStatus = "completed"
	StatusPlanToWatch WatchStatus = "plan_to_watch"
	StatusDropped     WatchStatus = "dropped"
)

// Algorithm tags a persisted recommendation with the strategy that
// produced it.
type Algorithm string

// Recommendation algorithms. Only these three are persisted; genre and
// continue-watching groups are returned to callers without storage.
const (
	AlgorithmContentBased  Algorithm = "content_based"
	AlgorithmCollaborative Algorithm = "collaborative"
	AlgorithmTrending      Algorithm = "trending"
)

// Valid reports whether a is one of the persisted algorithm tags.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmContentBased, AlgorithmCollaborative, AlgorithmTrending:
		return true
	default:
		return false
	}
}

// User is an account holding one or more viewer profiles.
type User struct {
	ID               string     `bson:"id" json:"id"`
	Email            string     `bson:"email" json:"email"`
	Username         string     `bson:"username" json:"username"`
	FirstName        string     `bson:"first_name" json:"first_name"`
	LastName         string     `bson:"last_name" json:"last_name"`
	Phone            string     `bson:"phone,omitempty" json:"phone,omitempty"`
	DateOfBirth      *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	SubscriptionType string     `bson:"subscription_type" json:"subscription_type"`
	Role             UserRole   `bson:"role" json:"role"`
	IsActive         bool       `bson:"is_active" json:"is_active"`
	HashedPassword   string     `bson:"hashed_password" json:"-"`
	Profiles         []string   `bson:"profiles" json:"profiles"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updated_at"`
}

// Profile is a viewer identity nested under a user account. It is the
// unit recommendations are computed for.
type Profile struct {
	ID               string      `bson:"id" json:"id"`
	UserID           string      `bson:"user_id" json:"user_id"`
	Name             string      `bson:"name" json:"name"`
	AvatarURL        string      `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	ProfileType      ProfileType `bson:"profile_type" json:"profile_type"`
	Language         string      `bson:"language" json:"language"`
	MaturityRating   string      `bson:"maturity_rating" json:"maturity_rating"`
	AutoPlayNext     bool        `bson:"auto_play_next" json:"auto_play_next"`
	AutoPlayPreviews bool        `bson:"auto_play_previews" json:"auto_play_previews"`
	CreatedAt        time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `bson:"updated_at" json:"updated_at"`
}

// Content is a catalog entry. AverageRating and TotalRatings are
// denormalized from reviews and treated as a read-only snapshot for the
// duration of a recommendation pass.
type Content struct {
	ID                  string      `bson:"id" json:"id"`
	TMDBID              int         `bson:"tmdb_id" json:"tmdb_id"`
	Title               string      `bson:"title" json:"title"`
	OriginalTitle       string      `bson:"original_title,omitempty" json:"original_title,omitempty"`
	Overview            string      `bson:"overview" json:"overview"`
	ContentType         ContentType `bson:"content_type" json:"content_type"`
	GenreIDs            []int       `bson:"genre_ids" json:"genre_ids"`
	ReleaseDate         *time.Time  `bson:"release_date,omitempty" json:"release_date,omitempty"`
	Runtime             int         `bson:"runtime,omitempty" json:"runtime,omitempty"`
	PosterPath          string      `bson:"poster_path,omitempty" json:"poster_path,omitempty"`
	BackdropPath        string      `bson:"backdrop_path,omitempty" json:"backdrop_path,omitempty"`
	TrailerURL          string      `bson:"trailer_url,omitempty" json:"trailer_url,omitempty"`
	IMDBRating          float64     `bson:"imdb_rating,omitempty" json:"imdb_rating,omitempty"`
	TMDBRating          float64     `bson:"tmdb_rating,omitempty" json:"tmdb_rating,omitempty"`
	Language            string      `bson:"language" json:"language"`
	Country             string      `bson:"country,omitempty" json:"country,omitempty"`
	Director            string      `bson:"director,omitempty" json:"director,omitempty"`
	Cast                []string    `bson:"cast" json:"cast"`
	ProductionCompanies []string    `bson:"production_companies,omitempty" json:"production_companies,omitempty"`
	AverageRating       float64     `bson:"average_rating" json:"average_rating"`
	TotalRatings        int         `bson:"total_ratings" json:"total_ratings"`
	TotalReviews        int         `bson:"total_reviews" json:"total_reviews"`
	CreatedAt           time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `bson:"updated_at" json:"updated_at"`
}

// WatchHistory records playback progress for one (profile, content) pair.
// At most one row exists per pair; writes are upserts.
type WatchHistory struct {
	ID          string      `bson:"id" json:"id"`
	ProfileID   string      `bson:"profile_id" json:"profile_id"`
	ContentID   string      `bson:"content_id" json:"content_id"`
	Progress    float64     `bson:"progress" json:"progress"`
	WatchTime   int         `bson:"watch_time" json:"watch_time"`
	Status      WatchStatus `bson:"status" json:"status"`
	LastWatched time.Time   `bson:"last_watched" json:"last_watched"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
}

// MyList marks content a profile saved for later. Presence-only signal.
type MyList struct {
	ID        string    `bson:"id" json:"id"`
	ProfileID string    `bson:"profile_id" json:"profile_id"`
	ContentID string    `bson:"content_id" json:"content_id"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Review is a star rating with optional text. Ratings run 0.5-5.0 in
// half-star steps; at most one review per (profile, content) pair.
type Review struct {
	ID          string    `bson:"id" json:"id"`
	ProfileID   string    `bson:"profile_id" json:"profile_id"`
	ContentID   string    `bson:"content_id" json:"content_id"`
	ProfileName string    `bson:"profile_name" json:"profile_name"`
	Rating      float64   `bson:"rating" json:"rating"`
	ReviewText  string    `bson:"review_text,omitempty" json:"review_text,omitempty"`
	IsSpoiler   bool      `bson:"is_spoiler" json:"is_spoiler"`
	Likes       int       `bson:"likes" json:"likes"`
	Dislikes    int       `bson:"dislikes" json:"dislikes"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Recommendation is one scored suggestion for a profile. The full set for
// a profile is replaced on every aggregation run; no history is kept
// across runs. Score is ordinal within an algorithm group, not a
// calibrated probability, and deep ranks may go negative.
type Recommendation struct {
	ID            string     `bson:"id" json:"id"`
	ProfileID     string     `bson:"profile_id" json:"profile_id"`
	ContentID     string     `bson:"content_id" json:"content_id"`
	Score         float64    `bson:"score" json:"score"`
	Reason        string     `bson:"reason" json:"reason"`
	AlgorithmUsed Algorithm  `bson:"algorithm_used" json:"algorithm_used"`
	Clicked       bool       `bson:"clicked" json:"clicked"`
	ClickedAt     *time.Time `bson:"clicked_at,omitempty" json:"clicked_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
}

// NewID returns a fresh document identifier.
func NewID() string {
	return uuid.NewString()
}

// Now returns the current UTC time truncated to millisecond precision,
// matching what the store round-trips.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
