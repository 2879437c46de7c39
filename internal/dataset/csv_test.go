// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tomtom215/wayfarer/internal/recommend"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "baseline.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadRatings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []recommend.Rating
	}{
		{
			name: "clean file",
			content: "customer_id,destination_id,customer_rating\n" +
				"u1,paris,5\n" +
				"u2,rome,3.5\n",
			want: []recommend.Rating{
				{UserID: "u1", ItemID: "paris", Value: 5},
				{UserID: "u2", ItemID: "rome", Value: 3.5},
			},
		},
		{
			name: "header with stray quotes and padding",
			content: `"customer_id",destination_id ," customer_rating "` + "\n" +
				"u1,paris,4\n",
			want: []recommend.Rating{
				{UserID: "u1", ItemID: "paris", Value: 4},
			},
		},
		{
			name: "columns in different order",
			content: "customer_rating,customer_id,destination_id\n" +
				"2,u1,oslo\n",
			want: []recommend.Rating{
				{UserID: "u1", ItemID: "oslo", Value: 2},
			},
		},
		{
			name: "bad rows skipped",
			content: "customer_id,destination_id,customer_rating\n" +
				"u1,paris,5\n" +
				"u2,rome,not-a-number\n" +
				",lima,3\n" +
				"u3,quito\n" +
				"u4,oslo,4\n",
			want: []recommend.Rating{
				{UserID: "u1", ItemID: "paris", Value: 5},
				{UserID: "u4", ItemID: "oslo", Value: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewCSVSource(writeCSV(t, tt.content))
			got, err := src.LoadRatings(context.Background())
			if err != nil {
				t.Fatalf("LoadRatings() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadRatings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadRatingsMissingColumns(t *testing.T) {
	src := NewCSVSource(writeCSV(t, "user,place,stars\nu1,paris,5\n"))

	_, err := src.LoadRatings(context.Background())
	if !errors.Is(err, recommend.ErrMalformedSource) {
		t.Errorf("LoadRatings() error = %v, want ErrMalformedSource", err)
	}
}

func TestLoadRatingsMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"))

	if _, err := src.LoadRatings(context.Background()); err == nil {
		t.Error("LoadRatings() succeeded on a missing file")
	}
}
