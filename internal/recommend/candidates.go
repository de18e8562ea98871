// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"sort"
	"time"
)

// sourceResults holds the raw output of the five candidate source queries.
// The queries are independent and fetched concurrently; see Engine.gather.
type sourceResults struct {
	friendAdds   []WatchlistAdd
	neighborAdds []WatchlistAdd
	genreMovies  []int64
	popular      []MovieCount
	trending     []int64
}

// candidateSet is the unioned candidate pool with the per-movie accumulators
// the scorer needs.
type candidateSet struct {
	// ids is the deduplicated candidate pool, sorted ascending so the
	// whole pipeline is deterministic.
	ids []int64

	friendAdds   map[int64][]time.Time
	friendCounts map[int64]int
	collabSums   map[int64]float64
}

// aggregateCandidates unions the five source results into one candidate set,
// excluding every movie id in the user's watchlist or watch history. An empty
// result is a valid output, not an error.
func aggregateCandidates(res sourceResults, neighbors []SimilarUser, exclude map[int64]struct{}) candidateSet {
	set := candidateSet{
		friendAdds:   make(map[int64][]time.Time),
		friendCounts: make(map[int64]int),
		collabSums:   make(map[int64]float64),
	}

	seen := make(map[int64]struct{})
	add := func(id int64) {
		if _, excluded := exclude[id]; excluded {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		set.ids = append(set.ids, id)
	}

	// Friends' watchlists, keeping add timestamps for the decay signal and
	// distinct friend counts for explanation text.
	friendsPerMovie := make(map[int64]map[int64]struct{})
	for _, a := range res.friendAdds {
		add(a.MovieID)
		if _, excluded := exclude[a.MovieID]; excluded {
			continue
		}
		set.friendAdds[a.MovieID] = append(set.friendAdds[a.MovieID], a.AddedAt)
		if friendsPerMovie[a.MovieID] == nil {
			friendsPerMovie[a.MovieID] = make(map[int64]struct{})
		}
		friendsPerMovie[a.MovieID][a.UserID] = struct{}{}
	}
	for id, friends := range friendsPerMovie {
		set.friendCounts[id] = len(friends)
	}

	// Taste-neighbors' watchlists weighted by each neighbor's similarity.
	similarity := make(map[int64]float64, len(neighbors))
	for _, n := range neighbors {
		similarity[n.UserID] = n.Similarity
	}
	for _, a := range res.neighborAdds {
		sim, ok := similarity[a.UserID]
		if !ok {
			continue
		}
		add(a.MovieID)
		if _, excluded := exclude[a.MovieID]; excluded {
			continue
		}
		set.collabSums[a.MovieID] += sim
	}

	for _, id := range res.genreMovies {
		add(id)
	}
	for _, mc := range res.popular {
		add(mc.MovieID)
	}
	for _, id := range res.trending {
		add(id)
	}

	sortInt64s(set.ids)
	return set
}

func sortInt64s(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
