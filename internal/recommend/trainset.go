// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import "sort"

// ratingEntry is one cell of the sparse rating matrix: Key is a dense user
// or destination index depending on which axis the entry lives on.
type ratingEntry struct {
	Key   int
	Value float64
}

// Trainset is the indexed, matrix-form representation of a rating table.
// It is built fresh on every fit and never mutated afterwards.
type Trainset struct {
	userIndex map[string]int
	itemIndex map[string]int

	// users and items map dense indices back to raw identifiers.
	users []string
	items []string

	// userRatings[u] lists (item index, value) sorted by item index.
	// itemRaters[i] lists (user index, value) sorted by user index.
	// Sorted slices keep similarity and prediction iteration order
	// independent of map layout.
	userRatings [][]ratingEntry
	itemRaters  [][]ratingEntry

	scale      RatingScale
	globalMean float64
}

// BuildTrainset assigns dense indices to every distinct user and destination
// in the table, builds the sparse rating matrix on both axes, and derives the
// observed rating scale. Index assignment follows row order, so the same
// table always yields the same trainset. A table with zero rows fails with
// ErrEmptyDataset.
func BuildTrainset(table *RatingTable) (*Trainset, error) {
	rows := table.Rows()
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	ts := &Trainset{
		userIndex: make(map[string]int),
		itemIndex: make(map[string]int),
	}

	var sum float64
	ts.scale = RatingScale{Min: rows[0].Value, Max: rows[0].Value}

	for _, r := range rows {
		u, ok := ts.userIndex[r.UserID]
		if !ok {
			u = len(ts.users)
			ts.userIndex[r.UserID] = u
			ts.users = append(ts.users, r.UserID)
			ts.userRatings = append(ts.userRatings, nil)
		}

		i, ok := ts.itemIndex[r.ItemID]
		if !ok {
			i = len(ts.items)
			ts.itemIndex[r.ItemID] = i
			ts.items = append(ts.items, r.ItemID)
			ts.itemRaters = append(ts.itemRaters, nil)
		}

		ts.userRatings[u] = append(ts.userRatings[u], ratingEntry{Key: i, Value: r.Value})
		ts.itemRaters[i] = append(ts.itemRaters[i], ratingEntry{Key: u, Value: r.Value})

		sum += r.Value
		if r.Value < ts.scale.Min {
			ts.scale.Min = r.Value
		}
		if r.Value > ts.scale.Max {
			ts.scale.Max = r.Value
		}
	}

	for u := range ts.userRatings {
		sortEntries(ts.userRatings[u])
	}
	for i := range ts.itemRaters {
		sortEntries(ts.itemRaters[i])
	}

	ts.globalMean = sum / float64(len(rows))
	return ts, nil
}

// sortEntries orders entries by key ascending, keeping input order for
// duplicate keys (duplicate (user, item) pairs with differing values).
func sortEntries(entries []ratingEntry) {
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Key < entries[b].Key
	})
}

// NumUsers returns the number of distinct users.
func (ts *Trainset) NumUsers() int { return len(ts.users) }

// NumItems returns the number of distinct destinations.
func (ts *Trainset) NumItems() int { return len(ts.items) }

// Scale returns the observed rating scale.
func (ts *Trainset) Scale() RatingScale { return ts.scale }

// GlobalMean returns the mean of all rating values in the trainset.
func (ts *Trainset) GlobalMean() float64 { return ts.globalMean }

// UserIdx resolves a raw user identifier to its dense index.
func (ts *Trainset) UserIdx(userID string) (int, bool) {
	u, ok := ts.userIndex[userID]
	return u, ok
}

// ItemIdx resolves a raw destination identifier to its dense index.
func (ts *Trainset) ItemIdx(itemID string) (int, bool) {
	i, ok := ts.itemIndex[itemID]
	return i, ok
}
