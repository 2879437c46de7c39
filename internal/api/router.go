// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the middleware settings of the HTTP surface.
type RouterConfig struct {
	RateLimitReqs   int
	RateLimitWindow time.Duration
	CORSOrigins     []string
}

// NewRouter wires all routes and middleware.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimitReqs, cfg.RateLimitWindow))

		r.With(Instrument("/api/v1/recommend")).
			Post("/recommend", handler.Recommend)

		r.Route("/model", func(r chi.Router) {
			r.With(Instrument("/api/v1/model/retrain")).
				Post("/retrain", handler.RetrainModel)
			r.With(Instrument("/api/v1/model/reload")).
				Post("/reload", handler.ReloadModel)
			r.With(Instrument("/api/v1/model/status")).
				Get("/status", handler.ModelStatus)
		})
	})

	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
