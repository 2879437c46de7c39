// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

// Package dataset loads the static baseline rating dataset that live
// ratings are merged onto during retrains.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/wayfarer/internal/logging"
	"github.com/tomtom215/wayfarer/internal/recommend"
)

// Column names the baseline CSV must carry, in any order.
const (
	columnUser  = "customer_id"
	columnItem  = "destination_id"
	columnValue = "customer_rating"
)

// CSVSource reads baseline ratings from a CSV export.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source reading the given file on every load, so
// a replaced file takes effect on the next retrain without a restart.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// LoadRatings parses the baseline file. The header is normalized before
// matching, so exports with stray quotes or padding still resolve their
// columns. Rows with a missing field or an unparsable rating are skipped
// with a warning rather than failing the whole load.
func (s *CSVSource) LoadRatings(ctx context.Context) ([]recommend.Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open baseline dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read baseline header: %w", err)
	}

	userCol, itemCol, valueCol, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var ratings []recommend.Rating
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logging.Warn().Err(err).Int("line", line).Str("file", s.path).Msg("skipping malformed baseline row")
			continue
		}
		if len(record) <= userCol || len(record) <= itemCol || len(record) <= valueCol {
			logging.Warn().Int("line", line).Str("file", s.path).Msg("skipping short baseline row")
			continue
		}

		userID := strings.TrimSpace(record[userCol])
		itemID := strings.TrimSpace(record[itemCol])
		value, parseErr := strconv.ParseFloat(strings.TrimSpace(record[valueCol]), 64)
		if userID == "" || itemID == "" || parseErr != nil {
			logging.Warn().Int("line", line).Str("file", s.path).Msg("skipping unparsable baseline row")
			continue
		}

		ratings = append(ratings, recommend.Rating{UserID: userID, ItemID: itemID, Value: value})
	}

	logging.Info().Int("ratings", len(ratings)).Str("file", s.path).Msg("baseline dataset loaded")
	return ratings, nil
}

// resolveColumns locates the three required columns in the header.
func resolveColumns(header []string) (userCol, itemCol, valueCol int, err error) {
	userCol, itemCol, valueCol = -1, -1, -1
	for i, name := range header {
		switch normalizeHeader(name) {
		case columnUser:
			userCol = i
		case columnItem:
			itemCol = i
		case columnValue:
			valueCol = i
		}
	}
	if userCol < 0 || itemCol < 0 || valueCol < 0 {
		return 0, 0, 0, fmt.Errorf("%w: baseline header missing required columns %v",
			recommend.ErrMalformedSource, []string{columnUser, columnItem, columnValue})
	}
	return userCol, itemCol, valueCol, nil
}

// normalizeHeader lowercases a header cell and strips whitespace, BOM
// bytes, and stray quote characters left by spreadsheet exports.
func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `"'`)
	return strings.ToLower(strings.TrimSpace(name))
}
