// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wayfarer/internal/metrics"
	"github.com/tomtom215/wayfarer/internal/models"
	"github.com/tomtom215/wayfarer/internal/recommend"
)

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	// UserID identifies the requesting user.
	UserID string `json:"user_id" validate:"required"`

	// Count is the number of recommendations wanted. Zero selects the
	// server default.
	Count int `json:"count" validate:"omitempty,min=1"`
}

// RecommendResponse is the success payload of POST /api/v1/recommend.
type RecommendResponse struct {
	UserID       string                 `json:"user_id"`
	Results      []recommend.ScoredItem `json:"results"`
	ModelVersion int                    `json:"model_version"`
}

// Recommend handles POST /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()
	results, version, err := h.engine.Recommend(r.Context(), req.UserID, req.Count)
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, recommend.ErrUnknownUser):
		metrics.RecommendationsTotal.WithLabelValues("unknown_user").Inc()
		respondError(w, http.StatusNotFound, "USER_NOT_FOUND",
			fmt.Sprintf("user %q has no ratings in the active model", sanitizeLogValue(req.UserID)), nil)
		return
	case errors.Is(err, recommend.ErrModelNotFitted):
		metrics.RecommendationsTotal.WithLabelValues("not_fitted").Inc()
		respondError(w, http.StatusServiceUnavailable, "MODEL_NOT_FITTED",
			"No model is available yet; trigger a retrain or wait for startup training", nil)
		return
	case err != nil:
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate recommendations", err)
		return
	}

	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: RecommendResponse{
			UserID:       req.UserID,
			Results:      results,
			ModelVersion: version,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
