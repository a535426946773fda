// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

package store

import (
	"context"
	"errors"
)

// Collection names. These mirror the persisted document classes in
// internal/models one-to-one.
const (
	ColUsers           = "users"
	ColProfiles        = "profiles"
	ColContent         = "content"
	ColWatchHistory    = "watch_history"
	ColMyList          = "my_list"
	ColReviews         = "reviews"
	ColRecommendations = "recommendations"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound indicates FindOne matched no document.
	ErrNotFound = errors.New("store: document not found")

	// ErrUnavailable indicates the backing store could not be reached.
	// Callers should treat it as retryable with backoff.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrDuplicate indicates a unique-index violation on insert.
	ErrDuplicate = errors.New("store: duplicate document")
)

// Filter selects documents by field. A plain value means equality; a Cmp
// value applies comparison operators. A nil or empty Filter matches every
// document in the collection.
type Filter map[string]any

// Cmp holds comparison operators for a single field. Zero fields are
// ignored. On array-valued document fields, In matches when the document
// array intersects the given values (document-store semantics).
type Cmp struct {
	In    []any
	NotIn []any
	Gt    any
	Gte   any
	Lt    any
	Lte   any
	Ne    any
}

// In builds an inclusion comparison from any element type.
func In[T any](vals []T) Cmp {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return Cmp{In: out}
}

// NotIn builds an exclusion comparison from any element type.
func NotIn[T any](vals []T) Cmp {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return Cmp{NotIn: out}
}

// SortKey orders results by one field.
type SortKey struct {
	Key  string
	Desc bool
}

// Sort is an ordered list of sort keys, highest priority first.
type Sort []SortKey

// FindOptions carries the optional parts of a Find call.
type FindOptions struct {
	Sort  Sort
	Limit int64
	Skip  int64
}

// Stage is one step of an aggregation pipeline. Exactly one field should
// be set per stage. This covers the grouped-query shapes the service
// uses (match, sort, limit); it is not a general pipeline language.
type Stage struct {
	Match Filter
	Sort  Sort
	Limit int64
}

// Update describes a partial document update: the named fields are set
// to the given values, other fields are left untouched.
type Update map[string]any

// Store is the document-query capability. All methods honor context
// cancellation; dest arguments follow the driver convention of a pointer
// to a slice (Find, Aggregate) or a pointer to a struct (FindOne).
type Store interface {
	Find(ctx context.Context, collection string, filter Filter, opts *FindOptions, dest any) error
	FindOne(ctx context.Context, collection string, filter Filter, dest any) error
	Aggregate(ctx context.Context, collection string, pipeline []Stage, dest any) error

	InsertOne(ctx context.Context, collection string, doc any) error
	InsertMany(ctx context.Context, collection string, docs []any) error
	UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (int64, error)

	DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)

	CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
