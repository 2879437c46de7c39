// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

// Package recommend implements user-based k-nearest-neighbor collaborative
// filtering over sparse destination ratings.
//
// # Pipeline
//
// Raw ratings flow through the package in a fixed order:
//
//	RatingTable -> Trainset -> similarity matrix -> prediction -> Recommend
//
// A RatingTable holds the deduplicated (user, destination, rating) rows. A
// Trainset maps the opaque string identifiers onto dense integer indices and
// records the observed rating scale. The similarity stage computes the full
// symmetric user-user cosine matrix over co-rated destinations. Prediction
// estimates an unseen rating from the k most similar raters of a destination,
// and Recommend ranks every unrated destination for a user.
//
// # Model Lifecycle
//
// The fitted state (similarity matrix, trainset, rating table, destination
// universe) is bundled into an immutable Model. The Engine owns the single
// active Model reference behind a mutex: readers take the lock briefly to
// grab the pointer, writers (retrain, reload) hold it for the whole rebuild
// and then replace the reference in one swap. A Model is never mutated after
// fitting, so readers keep scoring on a snapshot while a newer one is built.
//
// # Determinism
//
// Given the same rating table the whole pipeline is bit-for-bit reproducible:
// index assignment follows row order, similarity accumulates over sorted
// indices rather than map iteration, and every ranking step has an explicit
// tie-break.
package recommend
