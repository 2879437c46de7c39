// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import "errors"

// Sentinel errors for the recommendation domain. Callers distinguish them
// with errors.Is; the API layer maps each onto a coded response.
var (
	// ErrEmptyDataset is returned when a fit is attempted on zero rating
	// rows. The rating scale would be undefined, so the fit is rejected.
	ErrEmptyDataset = errors.New("recommend: empty dataset")

	// ErrModelNotFitted is returned when recommendations are requested
	// before any successful fit or load.
	ErrModelNotFitted = errors.New("recommend: model not fitted")

	// ErrUnknownUser is returned when the requested user does not appear
	// in the trainset. Cold-start users are reported explicitly rather
	// than silently degraded to the global mean.
	ErrUnknownUser = errors.New("recommend: unknown user")

	// ErrMalformedSource is returned when an external rating source does
	// not produce the expected three-column shape.
	ErrMalformedSource = errors.New("recommend: malformed rating source")

	// ErrNoLiveRatings is returned by the retrain pipeline when the live
	// extract is empty. Retraining is skipped and the persisted model is
	// left untouched so a dead upstream cannot regenerate a degenerate
	// model from stale baseline data alone.
	ErrNoLiveRatings = errors.New("recommend: no live ratings, retrain skipped")
)
