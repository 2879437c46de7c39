// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Schema versions understood by this package.
const (
	// SchemaVersionLegacy is the historical two-part format: similarity
	// state and trainset only.
	SchemaVersionLegacy = 1

	// SchemaVersionCurrent is the four-part format: similarity state,
	// trainset, rating table, and destination universe.
	SchemaVersionCurrent = 2
)

// Load failure taxonomy. Checked with errors.Is.
var (
	// ErrNotFound is returned when no model file exists at the store path.
	ErrNotFound = errors.New("storage: model file not found")

	// ErrCorruptModel is returned when the file exists but its content is
	// truncated, undecodable, or fails checksum verification.
	ErrCorruptModel = errors.New("storage: corrupt model file")

	// ErrUnsupportedFormat is returned when the envelope decodes but
	// declares a schema version this build does not understand.
	ErrUnsupportedFormat = errors.New("storage: unsupported model format")
)

// RatingEntry is one cell of the serialized sparse rating matrix. Key is a
// dense index on the opposite axis.
type RatingEntry struct {
	Key   int
	Value float64
}

// TrainsetState is the serializable form of a fitted trainset.
type TrainsetState struct {
	// Users and Items map dense indices back to raw identifiers.
	Users []string
	Items []string

	// UserRatings holds, per user index, the (item index, value) entries
	// sorted by item index. The item-axis view is rebuilt on load.
	UserRatings [][]RatingEntry

	ScaleMin   float64
	ScaleMax   float64
	GlobalMean float64
}

// RatingRow is one deduplicated row of the rating table.
type RatingRow struct {
	UserID string
	ItemID string
	Value  float64
}

// ModelState is the current (v2) four-part model tuple.
type ModelState struct {
	Similarity [][]float64
	Trainset   TrainsetState
	Table      []RatingRow
	Universe   []string
}

// LegacyModelState is the v1 two-part model tuple.
type LegacyModelState struct {
	Similarity [][]float64
	Trainset   TrainsetState
}

// ModelMetadata describes a stored model.
type ModelMetadata struct {
	// ModelVersion increments on every fit, across restarts.
	ModelVersion int

	// TrainedAt is when the model was fitted; SavedAt when it was written.
	TrainedAt time.Time
	SavedAt   time.Time

	UserCount   int
	ItemCount   int
	RatingCount int

	// Checksum is the SHA-256 of the uncompressed state encoding.
	Checksum string

	// SizeBytes is the compressed state size.
	SizeBytes int64
}

// storedFile is the on-disk envelope.
type storedFile struct {
	SchemaVersion  int
	Metadata       ModelMetadata
	CompressedData []byte
}

// Store persists a single active model at a fixed path.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store writing to the given file path, creating the
// parent directory if needed.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create model directory: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Path returns the destination file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes the model state and metadata atomically: the state is encoded,
// checksummed, compressed, and written to a temporary file that is renamed
// over the destination.
func (s *Store) Save(ctx context.Context, state *ModelState, meta ModelMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(state); err != nil {
		return fmt.Errorf("encode model state: %w", err)
	}

	hash := sha256.Sum256(raw.Bytes())
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("compress model state: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()

	sf := storedFile{
		SchemaVersion:  SchemaVersionCurrent,
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}

	return s.writeAtomic(sf)
}

// writeAtomic writes the envelope to a temp file in the destination
// directory and renames it into place.
func (s *Store) writeAtomic(sf storedFile) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()

	// Remove the temp file on any failure path so aborted saves leave no
	// debris next to the live model.
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		cleanup()
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close model file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace model file: %w", err)
	}
	return nil
}

// Load reads, validates, and decodes the model file. Legacy v1 files are
// upgraded in memory to the four-part shape with an empty rating table and
// universe.
func (s *Store) Load(ctx context.Context) (*ModelState, *ModelMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("%w: decode envelope: %v", ErrCorruptModel, err)
	}

	raw, err := decompress(sf.CompressedData)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptModel)
	}

	state, err := decodeState(sf.SchemaVersion, raw)
	if err != nil {
		return nil, nil, err
	}

	meta := sf.Metadata
	return state, &meta, nil
}

// decodeState dispatches to the decoder for the declared schema version.
func decodeState(schemaVersion int, raw []byte) (*ModelState, error) {
	switch schemaVersion {
	case SchemaVersionCurrent:
		var state ModelState
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&state); err != nil {
			return nil, fmt.Errorf("%w: decode state: %v", ErrCorruptModel, err)
		}
		return &state, nil

	case SchemaVersionLegacy:
		var legacy LegacyModelState
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&legacy); err != nil {
			return nil, fmt.Errorf("%w: decode legacy state: %v", ErrCorruptModel, err)
		}
		return &ModelState{
			Similarity: legacy.Similarity,
			Trainset:   legacy.Trainset,
			Table:      []RatingRow{},
			Universe:   []string{},
		}, nil

	default:
		return nil, fmt.Errorf("%w: schema version %d", ErrUnsupportedFormat, schemaVersion)
	}
}

func decompress(data []byte) ([]byte, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open compression stream: %v", err)
	}
	defer func() { _ = gzr.Close() }()

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read compressed state: %v", err)
	}
	return raw, nil
}
