// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

// Package main is the entry point for the Wayfarer recommendation server.
//
// Wayfarer serves destination recommendations from a user-based
// k-nearest-neighbor collaborative filter. The server initializes
// components in the following order:
//
//  1. Configuration: layered Koanf v2 load (defaults, YAML file, env vars)
//  2. Database: DuckDB store holding live destination ratings
//  3. Model store: persisted model file with versioned schema
//  4. Engine: active model holder, loaded from disk when a file exists
//  5. Retrain pipeline: merges the baseline dataset with live ratings
//  6. Supervision tree: training worker and HTTP server under suture
//
// # Configuration
//
// Settings come from WAYFARER_* environment variables or config.yaml:
//
//	export WAYFARER_SERVER_PORT=8080
//	export WAYFARER_DATABASE_PATH=/data/wayfarer.duckdb
//	export WAYFARER_MODEL_PATH=/data/model/wayfarer-knn.model
//	export WAYFARER_DATASET_BASELINE_PATH=/data/baseline.csv
//	export WAYFARER_TRAINING_NEIGHBORS=40
//	./wayfarer
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervision tree: the HTTP server stops
// accepting connections, in-flight requests drain, and the training
// worker exits between jobs.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/wayfarer/internal/api"
	"github.com/tomtom215/wayfarer/internal/config"
	"github.com/tomtom215/wayfarer/internal/database"
	"github.com/tomtom215/wayfarer/internal/dataset"
	"github.com/tomtom215/wayfarer/internal/logging"
	"github.com/tomtom215/wayfarer/internal/metrics"
	"github.com/tomtom215/wayfarer/internal/recommend"
	"github.com/tomtom215/wayfarer/internal/recommend/storage"
	"github.com/tomtom215/wayfarer/internal/supervisor"
	"github.com/tomtom215/wayfarer/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().Msg("Starting Wayfarer")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	store, err := storage.NewStore(cfg.Model.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create model store")
	}

	engine, err := recommend.NewEngine(recommend.Config{
		Neighbors:      cfg.Training.Neighbors,
		DefaultResults: cfg.Training.DefaultResults,
		MaxResults:     cfg.Training.MaxResults,
	}, store, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create engine")
	}

	// A missing or unreadable model file is not fatal: the service starts
	// unfitted and the first retrain produces a model.
	ctx := context.Background()
	status, err := engine.Reload(ctx)
	switch {
	case err == nil:
		metrics.RecordModel(status.Version, status.UserCount, status.ItemCount)
		logging.Info().Int("model_version", status.Version).Msg("persisted model loaded")
	case errors.Is(err, storage.ErrNotFound):
		logging.Warn().Str("path", cfg.Model.Path).Msg("no persisted model, starting unfitted")
	default:
		logging.Error().Err(err).Msg("persisted model unusable, starting unfitted")
	}

	var baseline recommend.BaselineSource
	if cfg.Dataset.BaselinePath != "" {
		baseline = dataset.NewCSVSource(cfg.Dataset.BaselinePath)
	}
	pipeline := recommend.NewRetrainPipeline(db, baseline, engine, logger)

	trainingSvc := services.NewTrainingService(pipeline, engine, services.TrainingServiceConfig{
		QueueSize: cfg.Training.QueueSize,
		Interval:  cfg.Training.Interval,
	}, logger)

	if cfg.Training.OnStartup && !engine.Status().Fitted {
		trainingSvc.TriggerRetrain()
	}

	handler := api.NewHandler(engine, trainingSvc, db)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
		CORSOrigins:     cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddTrainingService(trainingSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("serving")
	if err := tree.Serve(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree exited")
		os.Exit(1)
	}

	logging.Info().Msg("shutdown complete")
}
