// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

// Package metrics provides Prometheus instrumentation for the recommendation
// service: API latency, pipeline stage durations, candidate pool sizes, and
// genre catalog cache efficiency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestDuration tracks HTTP handler latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "miru_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	// PipelineStageDuration tracks per-stage latency of the recommendation
	// pipeline (genre_prefs, similar_users, candidates, scoring, rerank,
	// enrich).
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "miru_recommend_stage_duration_seconds",
			Help:    "Duration of recommendation pipeline stages in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"},
	)

	// CandidatePoolSize tracks how many candidates survive aggregation.
	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "miru_recommend_candidate_pool_size",
			Help:    "Number of candidate movies after aggregation and exclusion",
			Buckets: []float64{0, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// RecommendRequests counts recommendation requests by outcome.
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miru_recommend_requests_total",
			Help: "Total recommendation requests",
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	// GenreCacheRefreshes counts genre catalog cache refreshes by result.
	GenreCacheRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miru_genre_cache_refreshes_total",
			Help: "Total genre catalog cache refresh attempts",
		},
		[]string{"result"}, // "ok", "error"
	)

	// MetadataRequestDuration tracks outbound metadata provider latency.
	MetadataRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "miru_metadata_request_duration_seconds",
			Help:    "Duration of metadata provider requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// StoreQueryDuration tracks read-store query latency.
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "miru_store_query_duration_seconds",
			Help:    "Duration of read-store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)
)

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, start time.Time) {
	PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveAPIRequest records the duration of an API request.
func ObserveAPIRequest(endpoint string, status int, start time.Time) {
	APIRequestDuration.WithLabelValues(endpoint, strconv.Itoa(status)).
		Observe(time.Since(start).Seconds())
}
