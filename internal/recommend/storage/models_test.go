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
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func testState() *ModelState {
	return &ModelState{
		Similarity: [][]float64{{1, 0.5}, {0.5, 1}},
		Trainset: TrainsetState{
			Users: []string{"u1", "u2"},
			Items: []string{"a", "b", "c"},
			UserRatings: [][]RatingEntry{
				{{Key: 0, Value: 5}, {Key: 1, Value: 3}},
				{{Key: 0, Value: 4}, {Key: 1, Value: 5}, {Key: 2, Value: 2}},
			},
			ScaleMin:   2,
			ScaleMax:   5,
			GlobalMean: 3.8,
		},
		Table: []RatingRow{
			{UserID: "u1", ItemID: "a", Value: 5},
			{UserID: "u1", ItemID: "b", Value: 3},
			{UserID: "u2", ItemID: "a", Value: 4},
			{UserID: "u2", ItemID: "b", Value: 5},
			{UserID: "u2", ItemID: "c", Value: 2},
		},
		Universe: []string{"a", "b", "c"},
	}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.bin")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store, path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state := testState()
	meta := ModelMetadata{
		ModelVersion: 3,
		TrainedAt:    time.Now().Truncate(time.Second),
		UserCount:    2,
		ItemCount:    3,
		RatingCount:  5,
	}

	if err := store.Save(ctx, state, meta); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, gotMeta, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, state) {
		t.Errorf("Load() state = %+v, want %+v", got, state)
	}
	if gotMeta.ModelVersion != 3 || gotMeta.UserCount != 2 || gotMeta.ItemCount != 3 || gotMeta.RatingCount != 5 {
		t.Errorf("Load() metadata = %+v", gotMeta)
	}
	if gotMeta.Checksum == "" || gotMeta.SizeBytes == 0 {
		t.Errorf("Load() metadata missing integrity fields: %+v", gotMeta)
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testState(), ModelMetadata{ModelVersion: 1}); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if err := store.Save(ctx, testState(), ModelMetadata{ModelVersion: 2}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	_, meta, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if meta.ModelVersion != 2 {
		t.Errorf("ModelVersion = %d, want 2", meta.ModelVersion)
	}

	// No temp debris next to the model file.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("model directory has %d entries, want 1: %v", len(entries), entries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, err := store.Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoadGarbageFile(t *testing.T) {
	store, path := newTestStore(t)

	if err := os.WriteFile(path, []byte("not a model"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, _, err := store.Load(context.Background())
	if !errors.Is(err, ErrCorruptModel) {
		t.Errorf("Load() error = %v, want ErrCorruptModel", err)
	}
}

func TestLoadChecksumMismatch(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testState(), ModelMetadata{ModelVersion: 1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Rewrite the envelope with a corrupted checksum.
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	_ = f.Close()

	sf.Metadata.Checksum = "deadbeef"
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sf); err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, _, err = store.Load(ctx)
	if !errors.Is(err, ErrCorruptModel) {
		t.Errorf("Load() error = %v, want ErrCorruptModel", err)
	}
}

// writeEnvelope writes a well-formed envelope with the given schema
// version and raw state encoding.
func writeEnvelope(t *testing.T, path string, schemaVersion int, raw []byte) {
	t.Helper()

	hash := sha256.Sum256(raw)
	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}

	sf := storedFile{
		SchemaVersion: schemaVersion,
		Metadata: ModelMetadata{
			ModelVersion: 1,
			Checksum:     hex.EncodeToString(hash[:]),
		},
		CompressedData: compressed.Bytes(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sf); err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write envelope: %v", err)
	}
}

func TestLoadLegacyTwoPartFormat(t *testing.T) {
	store, path := newTestStore(t)

	legacy := LegacyModelState{
		Similarity: [][]float64{{1, 0.9}, {0.9, 1}},
		Trainset:   testState().Trainset,
	}
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(&legacy); err != nil {
		t.Fatalf("encode legacy state: %v", err)
	}
	writeEnvelope(t, path, SchemaVersionLegacy, raw.Bytes())

	state, _, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(state.Similarity, legacy.Similarity) {
		t.Errorf("Similarity = %v, want %v", state.Similarity, legacy.Similarity)
	}
	if !reflect.DeepEqual(state.Trainset, legacy.Trainset) {
		t.Errorf("Trainset differs after legacy upgrade")
	}
	// Legacy files carry no table or universe; both come back empty.
	if len(state.Table) != 0 || len(state.Universe) != 0 {
		t.Errorf("legacy upgrade: Table=%v Universe=%v, want both empty", state.Table, state.Universe)
	}
}

func TestLoadUnsupportedSchemaVersion(t *testing.T) {
	store, path := newTestStore(t)

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(testState()); err != nil {
		t.Fatalf("encode state: %v", err)
	}
	writeEnvelope(t, path, 99, raw.Bytes())

	_, _, err := store.Load(context.Background())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}
