// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import "sort"

const (
	// minNeighborOverlap is the minimum shared movie count for a user to
	// qualify as a taste-neighbor.
	minNeighborOverlap = 2

	// minNeighborCatalog filters out users with too little history to be
	// statistically meaningful.
	minNeighborCatalog = 5
)

// rankSimilarUsers turns raw store overlaps into the top taste-neighbors by
// Jaccard similarity: overlap / (mySize + theirSize - overlap).
//
// Callers pass the requesting user's own catalog size (watchlist union
// watched). A user with an empty catalog has no collaborative signal and the
// caller should skip the overlap query entirely.
func rankSimilarUsers(ownSize int, overlaps []UserOverlap, maxNeighbors int) []SimilarUser {
	if ownSize == 0 {
		return nil
	}

	neighbors := make([]SimilarUser, 0, len(overlaps))
	for _, o := range overlaps {
		if o.Overlap < minNeighborOverlap || o.CatalogSize < minNeighborCatalog {
			continue
		}
		union := ownSize + o.CatalogSize - o.Overlap
		if union <= 0 {
			continue
		}
		neighbors = append(neighbors, SimilarUser{
			UserID:     o.UserID,
			Similarity: float64(o.Overlap) / float64(union),
		})
	}

	// Similarity descending, user id ascending for a stable ranking.
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	if len(neighbors) > maxNeighbors {
		neighbors = neighbors[:maxNeighbors]
	}
	return neighbors
}
