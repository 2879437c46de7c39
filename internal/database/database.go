// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

// Package database wraps the DuckDB store holding live destination
// ratings and exposes the extraction query the retrain pipeline runs.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/wayfarer/internal/config"
	"github.com/tomtom215/wayfarer/internal/logging"
	"github.com/tomtom215/wayfarer/internal/metrics"
	"github.com/tomtom215/wayfarer/internal/recommend"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New creates a database connection and initializes the schema. An empty
// path opens an in-memory database, used by tests and local development.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg.Path != "" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, runtime.NumCPU(), cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	if err := db.initialize(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("database ready")
	return db, nil
}

// Conn exposes the underlying connection for tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// initialize creates the ratings table if missing.
func (db *DB) initialize() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS destination_ratings (
			id              UUID DEFAULT uuid(),
			customer_id     VARCHAR NOT NULL,
			destination_id  VARCHAR NOT NULL,
			customer_rating DOUBLE,
			rated_type      VARCHAR NOT NULL DEFAULT 'DESTINATION',
			status          VARCHAR NOT NULL DEFAULT 'ACTIVE',
			created_at      TIMESTAMP DEFAULT current_timestamp,
			deleted_at      TIMESTAMP
		)
	`)
	return err
}

// ratingColumns is the exact shape FetchRatings expects from the
// extraction query. A mismatch means the schema drifted under us.
var ratingColumns = []string{"customer_id", "destination_id", "customer_rating"}

// FetchRatings extracts the live rating set: destination ratings with a
// non-null value, active status, and no deletion mark. The result columns
// are validated against the expected shape; drift fails with
// recommend.ErrMalformedSource rather than silently mis-mapping fields.
func (db *DB) FetchRatings(ctx context.Context) ([]recommend.Rating, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT customer_id, destination_id, customer_rating
		FROM destination_ratings
		WHERE customer_rating IS NOT NULL
		  AND rated_type = 'DESTINATION'
		  AND status = 'ACTIVE'
		  AND deleted_at IS NULL
		ORDER BY created_at, customer_id, destination_id
	`)
	if err != nil {
		metrics.DBExtractErrors.Inc()
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		metrics.DBExtractErrors.Inc()
		return nil, fmt.Errorf("read result columns: %w", err)
	}
	if err := validateColumns(cols); err != nil {
		metrics.DBExtractErrors.Inc()
		return nil, err
	}

	var ratings []recommend.Rating
	for rows.Next() {
		var r recommend.Rating
		if err := rows.Scan(&r.UserID, &r.ItemID, &r.Value); err != nil {
			metrics.DBExtractErrors.Inc()
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		metrics.DBExtractErrors.Inc()
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}

	metrics.DBExtractDuration.Observe(time.Since(start).Seconds())
	logging.Debug().Int("rows", len(ratings)).Dur("duration", time.Since(start)).Msg("live ratings extracted")
	return ratings, nil
}

// validateColumns checks the result set shape against ratingColumns.
func validateColumns(cols []string) error {
	if len(cols) != len(ratingColumns) {
		return fmt.Errorf("%w: got %d columns, want %d", recommend.ErrMalformedSource, len(cols), len(ratingColumns))
	}
	for i, want := range ratingColumns {
		if cols[i] != want {
			return fmt.Errorf("%w: column %d is %q, want %q", recommend.ErrMalformedSource, i, cols[i], want)
		}
	}
	return nil
}

// InsertRating stores one rating. Used by tests and seed tooling.
func (db *DB) InsertRating(ctx context.Context, customerID, destinationID string, rating float64) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO destination_ratings (customer_id, destination_id, customer_rating)
		VALUES (?, ?, ?)
	`, customerID, destinationID, rating)
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}
