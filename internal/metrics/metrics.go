// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package metrics provides Prometheus instrumentation for the interest
// pipeline: extraction throughput, knowledge lookups, merge cycles, task
// execution and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics

	ContentItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interestd_content_items_processed_total",
			Help: "Content items consumed by the short-term builder",
		},
		[]string{"source"}, // "social", "scholar"
	)

	KeywordsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interestd_keywords_stored_total",
			Help: "Keyword records upserted into the short-term store",
		},
		[]string{"source"},
	)

	KeywordsBlacklisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interestd_keywords_blacklisted_total",
			Help: "Keywords skipped during builds because of a user blacklist rule",
		},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interestd_extraction_duration_seconds",
			Help:    "Duration of keyword extraction per content item",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	MergeCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interestd_merge_cycles_total",
			Help: "Completed long-term merge cycles",
		},
	)

	MergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interestd_merge_duration_seconds",
			Help:    "Duration of long-term merge cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Knowledge lookup metrics

	KnowledgeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interestd_knowledge_cache_hits_total",
			Help: "Knowledge lookups served from cache",
		},
	)

	KnowledgeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interestd_knowledge_cache_misses_total",
			Help: "Knowledge lookups requiring a network round trip",
		},
	)

	KnowledgeLookupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interestd_knowledge_lookup_errors_total",
			Help: "Knowledge lookups that failed at the transport level",
		},
	)

	// Task runner metrics

	TasksEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interestd_tasks_enqueued_total",
			Help: "Tasks accepted by the runner",
		},
		[]string{"task"},
	)

	TasksRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interestd_tasks_rejected_total",
			Help: "Tasks refused because an identical task was already running",
		},
		[]string{"task"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interestd_task_duration_seconds",
			Help:    "Task execution duration",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"task", "status"}, // status: "ok", "error", "panic"
	)

	// HTTP metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interestd_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// ObserveTask records one executed task with its outcome.
func ObserveTask(task, status string, duration time.Duration) {
	TaskDuration.WithLabelValues(task, status).Observe(duration.Seconds())
}
