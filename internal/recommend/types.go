// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import (
	"context"
	"time"
)

// Rating is a single user rating of a destination. User and destination
// identifiers are opaque strings compared by equality only.
type Rating struct {
	// UserID identifies the rating user.
	UserID string `json:"user_id"`

	// ItemID identifies the rated destination.
	ItemID string `json:"item_id"`

	// Value is the rating value on whatever scale the upstream uses.
	Value float64 `json:"value"`
}

// RatingScale is the observed bounds of all rating values at fit time.
// It is derived from the data, not fixed a priori, and changes whenever
// the extremes of the underlying ratings change.
type RatingScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScoredItem is a recommended destination with its predicted rating.
type ScoredItem struct {
	// ItemID is the recommended destination.
	ItemID string `json:"item_id"`

	// Score is the predicted rating for the requesting user.
	Score float64 `json:"predicted_score"`
}

// ModelStatus describes the currently active model, if any.
type ModelStatus struct {
	// Fitted reports whether an active model is available.
	Fitted bool `json:"fitted"`

	// Version is the model version, incremented on each fit.
	Version int `json:"version"`

	// TrainedAt is when the active model was fitted.
	TrainedAt time.Time `json:"trained_at"`

	// UserCount is the number of distinct users in the trainset.
	UserCount int `json:"user_count"`

	// ItemCount is the number of distinct destinations in the trainset.
	ItemCount int `json:"item_count"`

	// RatingCount is the number of deduplicated rating rows.
	RatingCount int `json:"rating_count"`
}

// LiveRatingSource supplies freshly extracted ratings, typically from the
// application database. An empty slice is a valid result and causes the
// retrain pipeline to skip the rebuild.
type LiveRatingSource interface {
	FetchRatings(ctx context.Context) ([]Rating, error)
}

// BaselineSource supplies the static batch dataset that live ratings are
// merged onto, typically a curated CSV export.
type BaselineSource interface {
	LoadRatings(ctx context.Context) ([]Rating, error)
}
