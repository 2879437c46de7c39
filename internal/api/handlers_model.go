// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/wayfarer/internal/models"
	"github.com/tomtom215/wayfarer/internal/recommend"
)

// Triggers enqueues asynchronous model jobs on the training worker.
// Both methods return false when the queue is full and the trigger was
// dropped.
type Triggers interface {
	TriggerRetrain() bool
	TriggerReload() bool
}

// Pinger reports backend reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler bundles the dependencies of all HTTP handlers.
type Handler struct {
	engine   *recommend.Engine
	triggers Triggers
	db       Pinger
}

// NewHandler creates the handler set.
func NewHandler(engine *recommend.Engine, triggers Triggers, db Pinger) *Handler {
	return &Handler{engine: engine, triggers: triggers, db: db}
}

// RetrainModel handles POST /api/v1/model/retrain. The rebuild runs on the
// training worker; the response only acknowledges the trigger.
func (h *Handler) RetrainModel(w http.ResponseWriter, r *http.Request) {
	if !h.triggers.TriggerRetrain() {
		respondError(w, http.StatusTooManyRequests, "RETRAIN_QUEUE_FULL",
			"A retrain is already queued; try again later", nil)
		return
	}

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"message": "retrain queued",
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// ReloadModel handles POST /api/v1/model/reload.
func (h *Handler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	if !h.triggers.TriggerReload() {
		respondError(w, http.StatusTooManyRequests, "RETRAIN_QUEUE_FULL",
			"The training worker queue is full; try again later", nil)
		return
	}

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"message": "reload queued",
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// ModelStatus handles GET /api/v1/model/status.
func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     h.engine.Status(),
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// Health handles GET /healthz. The service is alive as long as it answers;
// database reachability is reported but does not fail the check, since
// recommendations keep serving from the in-memory model.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = "unreachable"
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":       "ok",
			"database":     dbStatus,
			"model_fitted": h.engine.Status().Fitted,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
