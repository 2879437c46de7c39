// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

// Package api provides the HTTP surface of the recommendation service
// using the Chi router.
//
// Endpoints:
//
//	POST /api/v1/recommend      - rank unrated destinations for a user
//	POST /api/v1/model/retrain  - queue an asynchronous model rebuild
//	POST /api/v1/model/reload   - queue a reload of the persisted model
//	GET  /api/v1/model/status   - describe the active model
//	GET  /healthz               - liveness and database reachability
//	GET  /metrics               - Prometheus metrics
//
// All JSON endpoints wrap their payloads in the models.APIResponse
// envelope. Retrain and reload are fire-and-forget: they enqueue a job on
// the training worker and answer 202 immediately.
package api
