// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfarer/internal/metrics"
	"github.com/tomtom215/wayfarer/internal/recommend"
)

// jobKind is the type of work queued on the training worker.
type jobKind int

const (
	jobRetrain jobKind = iota
	jobReload
)

// Retrainer rebuilds the model from fresh data.
type Retrainer interface {
	Retrain(ctx context.Context) (recommend.ModelStatus, error)
}

// Reloader replaces the active model with the persisted one.
type Reloader interface {
	Reload(ctx context.Context) (recommend.ModelStatus, error)
}

// TrainingServiceConfig configures the training worker.
type TrainingServiceConfig struct {
	// QueueSize is the trigger buffer. Triggers beyond a full buffer are
	// dropped and reported to the caller.
	QueueSize int

	// Interval between periodic retrains. Zero disables the ticker.
	Interval time.Duration
}

// TrainingService is the single worker that executes all model rebuilds
// and reloads. Every mutation of the active model flows through its one
// goroutine; HTTP handlers only enqueue triggers and never block on a
// running rebuild.
type TrainingService struct {
	retrainer Retrainer
	reloader  Reloader
	cfg       TrainingServiceConfig
	logger    zerolog.Logger
	jobs      chan jobKind
}

// NewTrainingService creates the worker.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTrainingService(retrainer Retrainer, reloader Reloader, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	return &TrainingService{
		retrainer: retrainer,
		reloader:  reloader,
		cfg:       cfg,
		logger:    logger.With().Str("component", "training-worker").Logger(),
		jobs:      make(chan jobKind, cfg.QueueSize),
	}
}

// TriggerRetrain enqueues a retrain without waiting for it. Returns false
// when the queue is full and the trigger was dropped.
func (s *TrainingService) TriggerRetrain() bool {
	select {
	case s.jobs <- jobRetrain:
		return true
	default:
		s.logger.Warn().Msg("retrain trigger dropped, queue full")
		return false
	}
}

// TriggerReload enqueues a reload without waiting for it. Returns false
// when the queue is full and the trigger was dropped.
func (s *TrainingService) TriggerReload() bool {
	select {
	case s.jobs <- jobReload:
		return true
	default:
		s.logger.Warn().Msg("reload trigger dropped, queue full")
		return false
	}
}

// Serve implements suture.Service: it drains the job queue one job at a
// time and, when an interval is configured, retrains on a ticker.
func (s *TrainingService) Serve(ctx context.Context) error {
	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-s.jobs:
			s.run(ctx, job)
		case <-tick:
			s.run(ctx, jobRetrain)
		}
	}
}

// run executes one job. Failures are logged, not returned: a failed
// rebuild must not crash the worker and lose the queued triggers.
func (s *TrainingService) run(ctx context.Context, job jobKind) {
	switch job {
	case jobRetrain:
		start := time.Now()
		status, err := s.retrainer.Retrain(ctx)
		metrics.RetrainDuration.Observe(time.Since(start).Seconds())

		switch {
		case errors.Is(err, recommend.ErrNoLiveRatings):
			metrics.RetrainRunsTotal.WithLabelValues("skipped_empty").Inc()
		case err != nil:
			metrics.RetrainRunsTotal.WithLabelValues("error").Inc()
			s.logger.Error().Err(err).Msg("retrain failed")
		default:
			metrics.RetrainRunsTotal.WithLabelValues("ok").Inc()
			metrics.RecordModel(status.Version, status.UserCount, status.ItemCount)
		}

	case jobReload:
		status, err := s.reloader.Reload(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("reload failed")
			return
		}
		metrics.RecordModel(status.Version, status.UserCount, status.ItemCount)
	}
}

// String identifies the service in supervisor logs.
func (s *TrainingService) String() string {
	return "training-worker"
}
