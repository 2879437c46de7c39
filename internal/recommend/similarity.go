// Wayfarer - Destination Rating Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfarer

package recommend

import "math"

// computeSimilarity builds the full symmetric user-user cosine matrix.
//
// For each pair the similarity is the normalized dot product over the set of
// destinations both users rated, with the norms restricted to that same set:
//
//	sim(u,v) = sum(r_u,i * r_v,i) / (||r_u|| * ||r_v||)  over co-rated i
//
// Pairs with no co-rated destination get 0, never NaN. The diagonal is set
// to 1 but is never consulted by prediction. Iteration runs over the sorted
// per-user entry slices, so the output is bit-for-bit reproducible for a
// given trainset.
func computeSimilarity(ts *Trainset) [][]float64 {
	n := ts.NumUsers()
	sim := make([][]float64, n)
	for u := range sim {
		sim[u] = make([]float64, n)
		sim[u][u] = 1
	}

	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			s := cosineOverlap(ts.userRatings[u], ts.userRatings[v])
			sim[u][v] = s
			sim[v][u] = s
		}
	}

	return sim
}

// cosineOverlap computes the cosine over the intersection of two sorted
// entry slices using a two-pointer merge.
func cosineOverlap(a, b []ratingEntry) float64 {
	var dot, normA, normB float64

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Key < b[j].Key:
			i++
		case a[i].Key > b[j].Key:
			j++
		default:
			dot += a[i].Value * b[j].Value
			normA += a[i].Value * a[i].Value
			normB += b[j].Value * b[j].Value
			i++
			j++
		}
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
