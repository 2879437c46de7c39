// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import (
	"reflect"
	"testing"
)

func TestNewRatingTableDeduplication(t *testing.T) {
	tests := []struct {
		name     string
		input    []Rating
		wantRows []Rating
	}{
		{
			name:     "empty input",
			input:    nil,
			wantRows: nil,
		},
		{
			name: "no duplicates",
			input: []Rating{
				{UserID: "u1", ItemID: "a", Value: 5},
				{UserID: "u2", ItemID: "a", Value: 4},
			},
			wantRows: []Rating{
				{UserID: "u1", ItemID: "a", Value: 5},
				{UserID: "u2", ItemID: "a", Value: 4},
			},
		},
		{
			name: "exact duplicates collapse to first occurrence",
			input: []Rating{
				{UserID: "u1", ItemID: "a", Value: 5},
				{UserID: "u1", ItemID: "a", Value: 5},
				{UserID: "u2", ItemID: "b", Value: 3},
				{UserID: "u1", ItemID: "a", Value: 5},
			},
			wantRows: []Rating{
				{UserID: "u1", ItemID: "a", Value: 5},
				{UserID: "u2", ItemID: "b", Value: 3},
			},
		},
		{
			name: "same pair with differing values are both kept",
			input: []Rating{
				{UserID: "u1", ItemID: "a", Value: 5},
				{UserID: "u1", ItemID: "a", Value: 4},
			},
			wantRows: []Rating{
				{UserID: "u1", ItemID: "a", Value: 5},
				{UserID: "u1", ItemID: "a", Value: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewRatingTable(tt.input)
			if got := table.Rows(); !reflect.DeepEqual(got, tt.wantRows) {
				t.Errorf("Rows() = %v, want %v", got, tt.wantRows)
			}
			if table.Len() != len(tt.wantRows) {
				t.Errorf("Len() = %d, want %d", table.Len(), len(tt.wantRows))
			}
		})
	}
}

func TestRatingTableUniqueItemsSorted(t *testing.T) {
	table := NewRatingTable([]Rating{
		{UserID: "u1", ItemID: "zurich", Value: 5},
		{UserID: "u1", ItemID: "athens", Value: 3},
		{UserID: "u2", ItemID: "madrid", Value: 4},
		{UserID: "u2", ItemID: "athens", Value: 2},
	})

	want := []string{"athens", "madrid", "zurich"}
	if got := table.UniqueItems(); !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueItems() = %v, want %v", got, want)
	}
}

func TestRatingTableRatedItems(t *testing.T) {
	table := NewRatingTable([]Rating{
		{UserID: "u1", ItemID: "a", Value: 5},
		{UserID: "u1", ItemID: "b", Value: 3},
		{UserID: "u2", ItemID: "a", Value: 4},
	})

	rated := table.RatedItems("u1")
	if len(rated) != 2 {
		t.Fatalf("RatedItems(u1) has %d entries, want 2", len(rated))
	}
	for _, id := range []string{"a", "b"} {
		if _, ok := rated[id]; !ok {
			t.Errorf("RatedItems(u1) missing %q", id)
		}
	}

	if got := table.RatedItems("ghost"); len(got) != 0 {
		t.Errorf("RatedItems(ghost) = %v, want empty", got)
	}
}
