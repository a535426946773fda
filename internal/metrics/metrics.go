// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

// Package metrics defines the Prometheus instrumentation for the service:
// document-store round trips, API endpoint latency and throughput, and
// recommendation engine runs. Metrics are registered via promauto at
// package load and served from /metrics by the API router.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Document store metrics

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of document store operation errors",
		},
		[]string{"operation", "collection"},
	)

	StoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_breaker_open",
			Help: "1 when the store circuit breaker is open, 0 otherwise",
		},
	)

	// API endpoint metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation engine metrics

	RecommendGenerateRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_generate_runs_total",
			Help: "Total number of recommendation aggregation runs",
		},
		[]string{"outcome"}, // "success" or "error"
	)

	RecommendGenerateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_generate_duration_seconds",
			Help:    "End-to-end duration of a recommendation aggregation run",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendGeneratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_generator_duration_seconds",
			Help:    "Duration of individual candidate generators",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"generator"},
	)

	RecommendPersistedSetSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_persisted_set_size",
			Help:    "Number of recommendation rows persisted per aggregation run",
			Buckets: []float64{0, 5, 10, 20, 30, 40, 50},
		},
	)

	RecommendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_trending_fallbacks_total",
			Help: "Times a personalized generator fell back to trending for lack of signal",
		},
		[]string{"generator"},
	)

	// Background refresh metrics

	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_runs_total",
			Help: "Total number of background refresh sweeps",
		},
		[]string{"outcome"},
	)

	RefreshProfilesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_profiles_processed_total",
			Help: "Profiles whose recommendations were regenerated by the background refresher",
		},
	)

	RefreshSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_sweep_duration_seconds",
			Help:    "Duration of one background refresh sweep",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)
)

// ObserveStoreQuery records one store round trip.
func ObserveStoreQuery(operation, collection string, start time.Time, err error) {
	StoreQueryDuration.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(operation, collection).Inc()
	}
}

// ObserveAPIRequest records one handled HTTP request.
func ObserveAPIRequest(method, endpoint string, status int, start time.Time) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}
