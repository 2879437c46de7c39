// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfarer/internal/recommend/storage"
)

// Config controls prediction and ranking behavior.
type Config struct {
	// Neighbors is the k of the k-nearest-neighbor predictor.
	Neighbors int

	// DefaultResults is the recommendation count when a request does not
	// specify one.
	DefaultResults int

	// MaxResults caps the recommendation count per request. Zero means
	// no cap.
	MaxResults int
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Neighbors:      40,
		DefaultResults: 5,
		MaxResults:     100,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Neighbors <= 0 {
		return errors.New("neighbors must be positive")
	}
	if c.DefaultResults <= 0 {
		return errors.New("default results must be positive")
	}
	if c.MaxResults < 0 {
		return errors.New("max results must not be negative")
	}
	return nil
}

// Engine owns the active model and serializes its replacement.
//
// A single mutex guards the active reference and the version counter.
// Readers hold it only long enough to copy the pointer; scoring runs
// against the immutable snapshot outside the lock. Writers hold it across
// the entire fit, so at most one rebuild runs at a time and a reader never
// observes a half-built model.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
	store  *storage.Store

	mu      sync.Mutex
	active  *Model
	version int
}

// NewEngine creates an engine with no active model. Call Reload or
// FitAndSave to make it serve predictions.
func NewEngine(cfg Config, store *storage.Store, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "engine").Logger(),
		store:  store,
	}, nil
}

// snapshot returns the active model pointer, or nil when not fitted.
func (e *Engine) snapshot() *Model {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Recommend returns up to k destinations the user has not rated, ranked by
// predicted rating, together with the version of the model that scored
// them. The version comes from the same snapshot as the results, so a
// retrain swapping the model mid-request cannot mislabel them. k <= 0
// selects the configured default; requests above the configured maximum are
// clamped. Without an active model it fails with ErrModelNotFitted; an
// unknown user fails with ErrUnknownUser.
func (e *Engine) Recommend(ctx context.Context, userID string, k int) ([]ScoredItem, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	m := e.snapshot()
	if m == nil {
		return nil, 0, ErrModelNotFitted
	}

	if k <= 0 {
		k = e.cfg.DefaultResults
	}
	if e.cfg.MaxResults > 0 && k > e.cfg.MaxResults {
		k = e.cfg.MaxResults
	}

	results, err := m.recommend(userID, k, e.cfg.Neighbors, e.logger)
	if err != nil {
		return nil, 0, err
	}
	return results, m.version, nil
}

// FitAndSave builds a model from the given ratings, persists it, and makes
// it the active model. The lock is held for the full rebuild, so concurrent
// readers keep serving the previous model until the swap. A persistence
// failure leaves the previous model active and returns the error.
func (e *Engine) FitAndSave(ctx context.Context, ratings []Rating) (ModelStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ModelStatus{}, err
	}

	start := time.Now()

	table := NewRatingTable(ratings)
	model, err := fitModel(table, e.version+1)
	if err != nil {
		return ModelStatus{}, fmt.Errorf("fit model: %w", err)
	}

	meta := storage.ModelMetadata{
		ModelVersion: model.version,
		TrainedAt:    model.trainedAt,
		UserCount:    model.trainset.NumUsers(),
		ItemCount:    model.trainset.NumItems(),
		RatingCount:  model.table.Len(),
	}
	if err := e.store.Save(ctx, model.toState(), meta); err != nil {
		return ModelStatus{}, fmt.Errorf("persist model: %w", err)
	}

	e.active = model
	e.version = model.version

	e.logger.Info().
		Int("model_version", model.version).
		Int("users", meta.UserCount).
		Int("items", meta.ItemCount).
		Int("ratings", meta.RatingCount).
		Dur("duration", time.Since(start)).
		Msg("model fitted and persisted")

	return model.status(), nil
}

// Reload replaces the active model with the persisted one. Load failures
// leave the active model untouched.
func (e *Engine) Reload(ctx context.Context) (ModelStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ModelStatus{}, err
	}

	state, meta, err := e.store.Load(ctx)
	if err != nil {
		return ModelStatus{}, fmt.Errorf("load model: %w", err)
	}

	model := modelFromState(state, meta)
	e.active = model
	if model.version > e.version {
		e.version = model.version
	}

	e.logger.Info().
		Int("model_version", model.version).
		Int("users", model.trainset.NumUsers()).
		Int("items", model.trainset.NumItems()).
		Msg("model reloaded from disk")

	return model.status(), nil
}

// Status reports the active model. With no model fitted all fields are
// zero and Fitted is false.
func (e *Engine) Status() ModelStatus {
	m := e.snapshot()
	if m == nil {
		return ModelStatus{}
	}
	return m.status()
}
