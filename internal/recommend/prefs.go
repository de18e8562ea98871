// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

// Blend ratio between implicit genre frequency and explicit genre picks.
const (
	implicitGenreBlend = 0.7
	explicitGenreBlend = 0.3
)

// computeGenreWeights blends the user's explicit genre picks with the genre
// frequency of their watchlist and watch history into per-genre affinity
// weights in [0, 1].
//
// Implicit counts are normalized against the user's single most frequent
// genre. A genre with neither signal is absent from the map and reads as 0.
// The result is recomputed on every request; nothing is persisted.
func computeGenreWeights(explicitIDs []int64, movieGenres map[int64][]int64) map[int64]float64 {
	counts := make(map[int64]int)
	for _, genreIDs := range movieGenres {
		for _, gid := range genreIDs {
			counts[gid]++
		}
	}

	maxCount := 1 // avoid division by zero for users with no history
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	explicit := make(map[int64]struct{}, len(explicitIDs))
	for _, gid := range explicitIDs {
		explicit[gid] = struct{}{}
	}

	weights := make(map[int64]float64, len(counts)+len(explicit))
	for gid, c := range counts {
		weights[gid] = implicitGenreBlend * float64(c) / float64(maxCount)
	}
	for gid := range explicit {
		weights[gid] += explicitGenreBlend
	}

	return weights
}

// weightedGenreIDs returns the genre ids with nonzero weight, sorted
// ascending for deterministic query shapes.
func weightedGenreIDs(weights map[int64]float64) []int64 {
	ids := make([]int64, 0, len(weights))
	for gid, w := range weights {
		if w > 0 {
			ids = append(ids, gid)
		}
	}
	sortInt64s(ids)
	return ids
}
