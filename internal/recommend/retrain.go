// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// RetrainPipeline rebuilds the model from the merged baseline and live
// rating sets. Live extraction runs behind a circuit breaker so a flapping
// database does not get hammered on every trigger.
type RetrainPipeline struct {
	live     LiveRatingSource
	baseline BaselineSource
	engine   *Engine
	breaker  *gobreaker.CircuitBreaker[[]Rating]
	logger   zerolog.Logger
}

// NewRetrainPipeline wires a pipeline over the given sources and engine.
// The baseline source may be nil when no batch dataset is configured.
func NewRetrainPipeline(live LiveRatingSource, baseline BaselineSource, engine *Engine, logger zerolog.Logger) *RetrainPipeline {
	breaker := gobreaker.NewCircuitBreaker[[]Rating](gobreaker.Settings{
		Name:        "live-ratings",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &RetrainPipeline{
		live:     live,
		baseline: baseline,
		engine:   engine,
		breaker:  breaker,
		logger:   logger.With().Str("component", "retrain").Logger(),
	}
}

// Retrain extracts live ratings, merges them onto the baseline dataset, and
// fits and persists a new model. A live extract with zero rows skips the
// rebuild entirely and returns ErrNoLiveRatings: the active and persisted
// models stay exactly as they were.
//
// The merge appends live rows after baseline rows; exact duplicate rows
// collapse during table construction while duplicate (user, destination)
// pairs with differing values are all retained.
func (p *RetrainPipeline) Retrain(ctx context.Context) (ModelStatus, error) {
	start := time.Now()

	liveRatings, err := p.breaker.Execute(func() ([]Rating, error) {
		return p.live.FetchRatings(ctx)
	})
	if err != nil {
		return ModelStatus{}, fmt.Errorf("fetch live ratings: %w", err)
	}
	if len(liveRatings) == 0 {
		p.logger.Warn().Msg("live extract returned no ratings, keeping current model")
		return ModelStatus{}, ErrNoLiveRatings
	}

	var baselineRatings []Rating
	if p.baseline != nil {
		baselineRatings, err = p.baseline.LoadRatings(ctx)
		if err != nil {
			return ModelStatus{}, fmt.Errorf("load baseline ratings: %w", err)
		}
	}

	merged := make([]Rating, 0, len(baselineRatings)+len(liveRatings))
	merged = append(merged, baselineRatings...)
	merged = append(merged, liveRatings...)

	status, err := p.engine.FitAndSave(ctx, merged)
	if err != nil {
		return ModelStatus{}, err
	}

	p.logger.Info().
		Int("live_ratings", len(liveRatings)).
		Int("baseline_ratings", len(baselineRatings)).
		Int("model_version", status.Version).
		Dur("duration", time.Since(start)).
		Msg("retrain complete")

	return status, nil
}
