// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// neighbor is a candidate rater of the target destination with their
// similarity to the target user.
type neighbor struct {
	idx    int
	sim    float64
	rating float64
}

// predictRating estimates how user u would rate destination i from the k
// most similar users who rated i.
//
// Neighbors are ranked by similarity descending with ties broken by
// ascending user index, so repeated runs pick the same set. With no eligible
// neighbor the global mean is returned. If every selected neighbor has zero
// similarity the unweighted mean of their ratings is used instead of
// dividing by zero.
func predictRating(ts *Trainset, sim [][]float64, u, i, k int) (float64, error) {
	raters := ts.itemRaters[i]

	neighbors := make([]neighbor, 0, len(raters))
	for _, e := range raters {
		if e.Key == u {
			continue
		}
		neighbors = append(neighbors, neighbor{idx: e.Key, sim: sim[u][e.Key], rating: e.Value})
	}

	if len(neighbors) == 0 {
		return ts.globalMean, nil
	}

	sort.SliceStable(neighbors, func(a, b int) bool {
		if neighbors[a].sim != neighbors[b].sim {
			return neighbors[a].sim > neighbors[b].sim
		}
		return neighbors[a].idx < neighbors[b].idx
	})
	if k > 0 && len(neighbors) > k {
		neighbors = neighbors[:k]
	}

	var num, den, flat float64
	for _, n := range neighbors {
		num += n.sim * n.rating
		den += math.Abs(n.sim)
		flat += n.rating
	}

	var est float64
	if den == 0 {
		est = flat / float64(len(neighbors))
	} else {
		est = num / den
	}

	if math.IsNaN(est) || math.IsInf(est, 0) {
		return 0, fmt.Errorf("non-finite prediction for item %q", ts.items[i])
	}
	return est, nil
}
