// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"math"
	"sort"
	"time"
)

const (
	// friendHalfLifeDays is the half-life of a friend's watchlist add: a
	// 30-day-old add counts half as much as a fresh one.
	friendHalfLifeDays = 30.0

	// friendSaturation: three or more strongly-recent friend adds saturate
	// the friend signal at 1.0.
	friendSaturation = 3.0

	// collabSaturation divides the summed neighbor similarities before
	// clamping to 1.0.
	collabSaturation = 1.5

	// qualityVoteFloor is the minimum external vote count before the vote
	// average is trusted over raw popularity.
	qualityVoteFloor = 50

	// popularityScale normalizes the provider popularity metric for movies
	// below the vote floor.
	popularityScale = 100.0

	// Quality blends 60/40 with release freshness.
	qualityBlend   = 0.6
	freshnessBlend = 0.4

	// platformScale normalizes the platform watchlist-add count.
	platformScale = 10.0
)

// scoringInput bundles the per-request data the scorer consumes. Every map
// lookup miss simply scores 0 on the corresponding signal.
type scoringInput struct {
	candidateIDs []int64

	// friendAdds holds add timestamps of friends per movie; friendCounts
	// the undecayed friend count.
	friendAdds   map[int64][]time.Time
	friendCounts map[int64]int

	// collabSums holds the summed similarity of taste-neighbors with the
	// movie on their watchlist.
	collabSums map[int64]float64

	genreWeights   map[int64]float64
	movieGenres    map[int64][]int64
	movieProviders map[int64][]int64
	userProviders  map[int64]struct{}
	movies         map[int64]Movie
	platformCounts map[int64]int

	now time.Time
}

// scoreCandidates computes the six signals and the combined score for every
// candidate, returning the list sorted by score descending with movie id as
// the deterministic tie-break.
func scoreCandidates(in scoringInput, w Weights) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(in.candidateIDs))

	for _, id := range in.candidateIDs {
		movie := in.movies[id]
		providerID, available := sharedProvider(in.movieProviders[id], in.userProviders)

		s := Signals{
			Friend:        friendSignal(in.friendAdds[id], in.now),
			Genre:         genreSignal(in.movieGenres[id], in.genreWeights),
			Collaborative: collaborativeSignal(in.collabSums[id]),
			Quality:       qualitySignal(movie, in.now),
			Streaming:     0,
			Platform:      platformSignal(in.platformCounts[id]),
		}
		if available {
			s.Streaming = 1
		}

		scored = append(scored, ScoredCandidate{
			MovieID:       id,
			Score:         w.Combine(s),
			Signals:       s,
			FriendCount:   in.friendCounts[id],
			PlatformCount: in.platformCounts[id],
			ProviderID:    providerID,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].MovieID < scored[j].MovieID
	})

	return scored
}

// friendSignal sums a 30-day half-life decay over each friend's add time and
// saturates at three strongly-recent adds.
func friendSignal(adds []time.Time, now time.Time) float64 {
	if len(adds) == 0 {
		return 0
	}
	sum := 0.0
	for _, added := range adds {
		days := now.Sub(added).Hours() / 24
		if days < 0 {
			days = 0
		}
		sum += math.Pow(0.5, days/friendHalfLifeDays)
	}
	return clamp01(sum / friendSaturation)
}

// genreSignal averages the user's genre weights over the movie's genre tags.
// Untagged movies and users without weights score 0.
func genreSignal(genreIDs []int64, weights map[int64]float64) float64 {
	if len(genreIDs) == 0 || len(weights) == 0 {
		return 0
	}
	sum := 0.0
	for _, gid := range genreIDs {
		sum += weights[gid]
	}
	return sum / float64(len(genreIDs))
}

// collaborativeSignal normalizes the summed neighbor similarities.
func collaborativeSignal(similaritySum float64) float64 {
	return clamp01(similaritySum / collabSaturation)
}

// qualitySignal blends external rating (or popularity for thinly-voted
// movies) with release freshness.
func qualitySignal(m Movie, now time.Time) float64 {
	var quality float64
	if m.VoteCount >= qualityVoteFloor {
		quality = clamp01(m.VoteAverage / 10)
	} else {
		quality = clamp01(m.Popularity / popularityScale)
	}
	return qualityBlend*quality + freshnessBlend*freshness(m.ReleaseDate, now)
}

// freshness scores a release date: unreleased titles score full, then the
// score steps down at three and twelve months after release. A zero release
// date is treated as unreleased.
func freshness(release time.Time, now time.Time) float64 {
	if release.IsZero() || release.After(now) {
		return 1.0
	}
	age := now.Sub(release)
	switch {
	case age < 3*30*24*time.Hour:
		return 0.8
	case age < 12*30*24*time.Hour:
		return 0.5
	default:
		return 0.0
	}
}

// platformSignal normalizes the platform-wide watchlist-add count.
func platformSignal(count int) float64 {
	return clamp01(float64(count) / platformScale)
}

// sharedProvider returns one provider id the movie shares with the user's
// services; the smallest shared id keeps the choice deterministic.
func sharedProvider(movieProviders []int64, userProviders map[int64]struct{}) (int64, bool) {
	var best int64
	found := false
	for _, pid := range movieProviders {
		if _, ok := userProviders[pid]; !ok {
			continue
		}
		if !found || pid < best {
			best = pid
			found = true
		}
	}
	return best, found
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
