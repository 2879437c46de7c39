// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

// Package config loads and validates the service configuration from
// layered sources: built-in defaults, an optional YAML file, and
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Dataset  DatasetConfig  `koanf:"dataset"`
	Model    ModelConfig    `koanf:"model"`
	Training TrainingConfig `koanf:"training"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig configures the DuckDB store holding live ratings.
type DatabaseConfig struct {
	// Path is the database file; empty selects an in-memory database.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage, for example "2GB".
	MaxMemory string `koanf:"max_memory"`
}

// DatasetConfig configures the static baseline dataset.
type DatasetConfig struct {
	// BaselinePath is a CSV of curated ratings merged under live data on
	// every retrain. Empty disables the baseline.
	BaselinePath string `koanf:"baseline_path"`
}

// ModelConfig configures model persistence.
type ModelConfig struct {
	// Path is the model file written on every successful fit.
	Path string `koanf:"path"`
}

// TrainingConfig configures fitting and prediction.
type TrainingConfig struct {
	// Neighbors is the k of the k-nearest-neighbor predictor.
	Neighbors int `koanf:"neighbors"`

	// DefaultResults is the recommendation count when the request omits it;
	// MaxResults caps requested counts.
	DefaultResults int `koanf:"default_results"`
	MaxResults     int `koanf:"max_results"`

	// QueueSize is the retrain trigger buffer. Triggers beyond a full
	// buffer are dropped.
	QueueSize int `koanf:"queue_size"`

	// Interval between periodic retrains. Zero disables the ticker.
	Interval time.Duration `koanf:"interval"`

	// OnStartup retrains immediately at boot when no model file exists.
	OnStartup bool `koanf:"on_startup"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return errors.New("server.timeout must be positive")
	}
	if c.Model.Path == "" {
		return errors.New("model.path must be set")
	}
	if c.Training.Neighbors <= 0 {
		return errors.New("training.neighbors must be positive")
	}
	if c.Training.DefaultResults <= 0 {
		return errors.New("training.default_results must be positive")
	}
	if c.Training.MaxResults < 0 {
		return errors.New("training.max_results must not be negative")
	}
	if c.Training.QueueSize <= 0 {
		return errors.New("training.queue_size must be positive")
	}
	if c.Training.Interval < 0 {
		return errors.New("training.interval must not be negative")
	}
	return nil
}
