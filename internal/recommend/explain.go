// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import "time"

// trendingWindow reclassifies a quality win as "trending" when the release
// date falls within three months of now.
const trendingWindow = 90 * 24 * time.Hour

// selectReason picks the explanation for one candidate: the signal with the
// largest weighted contribution wins, ties broken by a fixed priority order:
// friends, genre, collaborative, quality, streaming, platform, first listed
// winning. The selection is deterministic given the signal values; a
// fully cold candidate with all-zero signals resolves to the friends arm by
// the same rule.
func selectReason(c ScoredCandidate, w Weights, release time.Time, now time.Time) Reason {
	contributions := []struct {
		kind  ReasonKind
		value float64
	}{
		{ReasonFriends, c.Signals.Friend * w.Friend},
		{ReasonGenreMatch, c.Signals.Genre * w.Genre},
		{ReasonBecauseYouWatched, c.Signals.Collaborative * w.Collaborative},
		{ReasonTopRated, c.Signals.Quality * w.Quality},
		{ReasonAvailableOn, c.Signals.Streaming * w.Streaming},
		{ReasonPopularOnMiru, c.Signals.Platform * w.Platform},
	}

	winner := contributions[0]
	for _, cand := range contributions[1:] {
		if cand.value > winner.value {
			winner = cand
		}
	}

	switch winner.kind {
	case ReasonFriends:
		return Reason{Kind: ReasonFriends, FriendCount: c.FriendCount}
	case ReasonGenreMatch:
		return Reason{Kind: ReasonGenreMatch}
	case ReasonBecauseYouWatched:
		// Title comes from the enrichment pass.
		return Reason{Kind: ReasonBecauseYouWatched}
	case ReasonTopRated:
		if !release.IsZero() && absDuration(now.Sub(release)) <= trendingWindow {
			return Reason{Kind: ReasonTrending}
		}
		return Reason{Kind: ReasonTopRated}
	case ReasonAvailableOn:
		// Provider name comes from the enrichment pass.
		return Reason{Kind: ReasonAvailableOn}
	case ReasonPopularOnMiru:
		return Reason{Kind: ReasonPopularOnMiru, PopularCount: c.PlatformCount}
	default:
		return Reason{Kind: ReasonFriends, FriendCount: c.FriendCount}
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
