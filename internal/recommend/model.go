// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wayfarer/internal/recommend/storage"
)

// Model is a fitted snapshot: similarity matrix, trainset, rating table,
// and destination universe, all derived from the same fit. It is immutable
// after construction and replaced wholesale on retrain or reload.
type Model struct {
	trainset *Trainset
	sim      [][]float64
	table    *RatingTable
	universe []string

	version   int
	trainedAt time.Time
}

// fitModel builds a complete model from a rating table.
func fitModel(table *RatingTable, version int) (*Model, error) {
	ts, err := BuildTrainset(table)
	if err != nil {
		return nil, err
	}

	return &Model{
		trainset:  ts,
		sim:       computeSimilarity(ts),
		table:     table,
		universe:  table.UniqueItems(),
		version:   version,
		trainedAt: time.Now(),
	}, nil
}

// candidateResult is the outcome of scoring a single unrated destination:
// either a score or a failure reason. Failures are filtered and logged by
// the aggregation step instead of aborting the batch.
type candidateResult struct {
	itemID string
	score  float64
	err    error
}

// recommend scores every destination the user has not rated and returns the
// top k by predicted score. Ties are broken by ascending destination ID so
// output order is stable. Per-candidate failures are logged and excluded;
// zero candidates or zero successes yield an empty slice, not an error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (m *Model) recommend(userID string, k, neighbors int, logger zerolog.Logger) ([]ScoredItem, error) {
	u, ok := m.trainset.UserIdx(userID)
	if !ok {
		return nil, ErrUnknownUser
	}

	rated := m.table.RatedItems(userID)

	results := make([]candidateResult, 0, len(m.universe))
	for _, itemID := range m.universe {
		if _, already := rated[itemID]; already {
			continue
		}
		results = append(results, m.scoreCandidate(u, itemID, neighbors))
	}

	scored := make([]ScoredItem, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			logger.Warn().
				Str("user_id", userID).
				Str("item_id", res.itemID).
				Err(res.err).
				Msg("candidate prediction failed")
			continue
		}
		scored = append(scored, ScoredItem{ItemID: res.itemID, Score: res.score})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].ItemID < scored[b].ItemID
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// scoreCandidate predicts one destination for the user at index u.
// Destinations present in the universe but absent from the trainset (only
// possible with hand-edited model files) fall back to the global mean.
func (m *Model) scoreCandidate(u int, itemID string, neighbors int) candidateResult {
	i, ok := m.trainset.ItemIdx(itemID)
	if !ok {
		return candidateResult{itemID: itemID, score: m.trainset.globalMean}
	}

	est, err := predictRating(m.trainset, m.sim, u, i, neighbors)
	if err != nil {
		return candidateResult{itemID: itemID, err: err}
	}
	return candidateResult{itemID: itemID, score: est}
}

// status summarizes the model for the status endpoint.
func (m *Model) status() ModelStatus {
	return ModelStatus{
		Fitted:      true,
		Version:     m.version,
		TrainedAt:   m.trainedAt,
		UserCount:   m.trainset.NumUsers(),
		ItemCount:   m.trainset.NumItems(),
		RatingCount: m.table.Len(),
	}
}

// toState converts the model to its serializable form.
func (m *Model) toState() *storage.ModelState {
	ts := m.trainset

	userRatings := make([][]storage.RatingEntry, len(ts.userRatings))
	for u, entries := range ts.userRatings {
		userRatings[u] = make([]storage.RatingEntry, len(entries))
		for j, e := range entries {
			userRatings[u][j] = storage.RatingEntry{Key: e.Key, Value: e.Value}
		}
	}

	rows := m.table.Rows()
	tableRows := make([]storage.RatingRow, len(rows))
	for j, r := range rows {
		tableRows[j] = storage.RatingRow{UserID: r.UserID, ItemID: r.ItemID, Value: r.Value}
	}

	universe := make([]string, len(m.universe))
	copy(universe, m.universe)

	return &storage.ModelState{
		Similarity: m.sim,
		Trainset: storage.TrainsetState{
			Users:       append([]string(nil), ts.users...),
			Items:       append([]string(nil), ts.items...),
			UserRatings: userRatings,
			ScaleMin:    ts.scale.Min,
			ScaleMax:    ts.scale.Max,
			GlobalMean:  ts.globalMean,
		},
		Table:    tableRows,
		Universe: universe,
	}
}

// modelFromState reconstructs a model from its serialized form, rebuilding
// the index maps and the item-axis view of the rating matrix.
func modelFromState(state *storage.ModelState, meta *storage.ModelMetadata) *Model {
	st := state.Trainset

	ts := &Trainset{
		userIndex:   make(map[string]int, len(st.Users)),
		itemIndex:   make(map[string]int, len(st.Items)),
		users:       append([]string(nil), st.Users...),
		items:       append([]string(nil), st.Items...),
		userRatings: make([][]ratingEntry, len(st.Users)),
		itemRaters:  make([][]ratingEntry, len(st.Items)),
		scale:       RatingScale{Min: st.ScaleMin, Max: st.ScaleMax},
		globalMean:  st.GlobalMean,
	}
	for u, id := range st.Users {
		ts.userIndex[id] = u
	}
	for i, id := range st.Items {
		ts.itemIndex[id] = i
	}

	for u := range st.UserRatings {
		if u >= len(ts.userRatings) {
			break
		}
		entries := make([]ratingEntry, len(st.UserRatings[u]))
		for j, e := range st.UserRatings[u] {
			entries[j] = ratingEntry{Key: e.Key, Value: e.Value}
			if e.Key >= 0 && e.Key < len(ts.itemRaters) {
				ts.itemRaters[e.Key] = append(ts.itemRaters[e.Key], ratingEntry{Key: u, Value: e.Value})
			}
		}
		ts.userRatings[u] = entries
	}
	for i := range ts.itemRaters {
		sortEntries(ts.itemRaters[i])
	}

	rows := make([]Rating, len(state.Table))
	for j, r := range state.Table {
		rows[j] = Rating{UserID: r.UserID, ItemID: r.ItemID, Value: r.Value}
	}

	m := &Model{
		trainset: ts,
		sim:      state.Similarity,
		table:    NewRatingTable(rows),
		universe: append([]string(nil), state.Universe...),
	}
	if meta != nil {
		m.version = meta.ModelVersion
		m.trainedAt = meta.TrainedAt
	}
	return m
}
