// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

// Package metrics registers the Prometheus instrumentation for the
// recommendation service: API latency, prediction outcomes, retrain
// pipeline runs, and the active model.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics.
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

	// Recommendation metrics.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "unknown_user", "not_fitted", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time to score and rank candidates for one request",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Retrain pipeline metrics.
	RetrainRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrain_runs_total",
			Help: "Total number of retrain runs by outcome",
		},
		[]string{"outcome"}, // "ok", "skipped_empty", "error"
	)

	RetrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retrain_duration_seconds",
			Help:    "Duration of full retrain runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	// Model state metrics.
	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Version of the currently active model",
		},
	)

	ModelUserCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_user_count",
			Help: "Distinct users in the active model trainset",
		},
	)

	ModelItemCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_item_count",
			Help: "Distinct destinations in the active model trainset",
		},
	)

	// Live extract metrics.
	DBExtractDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "db_extract_duration_seconds",
			Help:    "Duration of live rating extraction queries",
			Buckets: prometheus.DefBuckets,
		},
	)

	DBExtractErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_extract_errors_total",
			Help: "Total number of failed live rating extractions",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordModel updates the active-model gauges after a fit or reload.
func RecordModel(version, users, items int) {
	ModelVersion.Set(float64(version))
	ModelUserCount.Set(float64(users))
	ModelItemCount.Set(float64(items))
}
