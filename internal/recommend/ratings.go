// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import "sort"

// RatingTable holds the deduplicated rating rows a model is fitted on,
// along with derived per-user rated sets and the destination universe.
//
// Deduplication is by full-row equality: two rows for the same (user,
// destination) pair with different values are both kept. Whether such
// rows should instead be merged (latest wins, averaged) is an open
// question upstream; the table preserves both so no information is lost.
type RatingTable struct {
	rows    []Rating
	byUser  map[string]map[string]struct{}
	itemSet map[string]struct{}
}

// NewRatingTable builds a table from raw rows, dropping exact duplicates
// while preserving first-occurrence order.
func NewRatingTable(rows []Rating) *RatingTable {
	t := &RatingTable{
		byUser:  make(map[string]map[string]struct{}),
		itemSet: make(map[string]struct{}),
	}

	seen := make(map[Rating]struct{}, len(rows))
	for _, r := range rows {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		t.rows = append(t.rows, r)

		if t.byUser[r.UserID] == nil {
			t.byUser[r.UserID] = make(map[string]struct{})
		}
		t.byUser[r.UserID][r.ItemID] = struct{}{}
		t.itemSet[r.ItemID] = struct{}{}
	}

	return t
}

// Rows returns the deduplicated rows in first-occurrence order.
func (t *RatingTable) Rows() []Rating {
	return t.rows
}

// Len returns the number of deduplicated rows.
func (t *RatingTable) Len() int {
	return len(t.rows)
}

// UniqueItems returns the sorted set of distinct destination identifiers.
// Sorting keeps candidate generation deterministic.
func (t *RatingTable) UniqueItems() []string {
	items := make([]string, 0, len(t.itemSet))
	for id := range t.itemSet {
		items = append(items, id)
	}
	sort.Strings(items)
	return items
}

// RatedItems returns the set of destinations already rated by the user.
// Unknown users get an empty set, not an error.
func (t *RatingTable) RatedItems(userID string) map[string]struct{} {
	rated, ok := t.byUser[userID]
	if !ok {
		return map[string]struct{}{}
	}
	return rated
}
