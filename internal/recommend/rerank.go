// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

// primaryGenre picks the candidate's dominant genre: the tag with the
// highest user weight, smallest genre id on ties. Untagged movies have none.
func primaryGenre(genreIDs []int64, weights map[int64]float64) (int64, bool) {
	if len(genreIDs) == 0 {
		return 0, false
	}
	best := genreIDs[0]
	bestWeight := weights[best]
	for _, gid := range genreIDs[1:] {
		w := weights[gid]
		if w > bestWeight || (w == bestWeight && gid < best) {
			best = gid
			bestWeight = w
		}
	}
	return best, true
}

// diversityRerank reorders a score-sorted candidate list so no three
// consecutive items share the same primary genre, then backfills deferred
// items in their original score order until limit is reached. Diversity is a
// soft preference: the feed is never truncated to satisfy it.
//
// The walk is greedy and stable: relative score order is preserved within
// the constraint, and the output is a deterministic function of its inputs.
func diversityRerank(items []ScoredCandidate, movieGenres map[int64][]int64, weights map[int64]float64, limit int) []ScoredCandidate {
	if limit <= 0 || len(items) == 0 {
		return nil
	}
	if limit > len(items) {
		limit = len(items)
	}

	type genreTag struct {
		id int64
		ok bool
	}
	tag := func(c ScoredCandidate) genreTag {
		id, ok := primaryGenre(movieGenres[c.MovieID], weights)
		return genreTag{id: id, ok: ok}
	}

	accepted := make([]ScoredCandidate, 0, limit)
	acceptedTags := make([]genreTag, 0, limit)
	var deferred []ScoredCandidate

	for _, c := range items {
		if len(accepted) == limit {
			break
		}
		t := tag(c)

		// Defer only when the two immediately preceding accepted items
		// both carry the same primary genre as this candidate.
		if t.ok && len(acceptedTags) >= 2 {
			prev1 := acceptedTags[len(acceptedTags)-1]
			prev2 := acceptedTags[len(acceptedTags)-2]
			if prev1.ok && prev2.ok && prev1.id == t.id && prev2.id == t.id {
				deferred = append(deferred, c)
				continue
			}
		}

		accepted = append(accepted, c)
		acceptedTags = append(acceptedTags, t)
	}

	// Backfill from deferred items in score order rather than returning a
	// short page.
	for _, c := range deferred {
		if len(accepted) == limit {
			break
		}
		accepted = append(accepted, c)
	}

	return accepted
}
