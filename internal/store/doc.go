// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

// Package store provides the document-query capability the rest of the
// service is written against.
//
// The Store interface is a deliberately narrow slice of a document
// database: find, aggregate, insert, update, delete and count over named
// collections. Filters are expressed with the Filter/Cmp types rather
// than a driver-specific format so that callers never assume a specific
// storage engine. Two implementations exist:
//
//   - Mongo: production implementation on the official MongoDB driver,
//     with a circuit breaker so storage outages surface as a retryable
//     ErrUnavailable instead of cascading timeouts.
//   - Memory: an in-process implementation with the same filter
//     semantics, used by tests.
//
// Collections are addressed by the Col* constants; ad-hoc collection
// names are a bug.
package store
