// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

// Package storage persists fitted recommendation models.
//
// A model file is a gob-encoded envelope carrying an explicit schema
// version, metadata, and the gzip-compressed gob encoding of the model
// state. Two schemas are recognized:
//
//   - v2 (current): similarity matrix, trainset, rating table, and
//     destination universe, the full four-part model.
//   - v1 (legacy): similarity matrix and trainset only. Loading a v1 file
//     yields an empty rating table and an empty universe.
//
// Any other schema version fails with ErrUnsupportedFormat. The explicit
// version tag replaces the arity sniffing of earlier deployments; each
// known version has its own decoder.
//
// # Atomicity
//
// Save writes to a temporary file in the destination directory, syncs it,
// and renames it over the destination. A concurrent loader observes either
// the complete old content or the complete new content, never a torn write.
//
// # Integrity
//
// The uncompressed state is checksummed with SHA-256 on save and verified
// on load. A missing file is ErrNotFound; a checksum mismatch, truncated
// envelope, or unreadable compression stream is ErrCorruptModel. The three
// failure kinds are distinguishable so callers can decide whether to retry,
// retrain from scratch, or alert.
package storage
