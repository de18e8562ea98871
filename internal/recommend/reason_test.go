// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

var reasonNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSelectReason(t *testing.T) {
	t.Parallel()

	w := DefaultConfig().Weights
	oldRelease := reasonNow.Add(-2 * 365 * 24 * time.Hour)
	recentRelease := reasonNow.Add(-30 * 24 * time.Hour)

	tests := []struct {
		name      string
		candidate ScoredCandidate
		release   time.Time
		wantKind  ReasonKind
	}{
		{
			name: "dominant friend signal",
			candidate: ScoredCandidate{
				Signals:     Signals{Friend: 0.9, Genre: 0.5},
				FriendCount: 2,
			},
			release:  oldRelease,
			wantKind: ReasonFriends,
		},
		{
			name: "dominant genre signal",
			candidate: ScoredCandidate{
				Signals: Signals{Friend: 0.1, Genre: 0.9},
			},
			release:  oldRelease,
			wantKind: ReasonGenreMatch,
		},
		{
			name: "equal raw values resolved by weights",
			candidate: ScoredCandidate{
				// friend 1.0*0.30 beats genre 1.0*0.20.
				Signals:     Signals{Friend: 1.0, Genre: 1.0},
				FriendCount: 1,
			},
			release:  oldRelease,
			wantKind: ReasonFriends,
		},
		{
			name: "collaborative wins",
			candidate: ScoredCandidate{
				Signals: Signals{Collaborative: 1.0, Quality: 0.5},
			},
			release:  oldRelease,
			wantKind: ReasonBecauseYouWatched,
		},
		{
			name: "quality on an old release",
			candidate: ScoredCandidate{
				Signals: Signals{Quality: 1.0},
			},
			release:  oldRelease,
			wantKind: ReasonTopRated,
		},
		{
			name: "quality on a recent release reclassified trending",
			candidate: ScoredCandidate{
				Signals: Signals{Quality: 1.0},
			},
			release:  recentRelease,
			wantKind: ReasonTrending,
		},
		{
			name: "quality with unknown release stays top rated",
			candidate: ScoredCandidate{
				Signals: Signals{Quality: 1.0},
			},
			release:  time.Time{},
			wantKind: ReasonTopRated,
		},
		{
			name: "streaming wins",
			candidate: ScoredCandidate{
				Signals:    Signals{Streaming: 1.0, Platform: 0.5},
				ProviderID: 8,
			},
			release:  oldRelease,
			wantKind: ReasonAvailableOn,
		},
		{
			name: "platform wins",
			candidate: ScoredCandidate{
				Signals:       Signals{Platform: 1.0, Streaming: 0.5},
				PlatformCount: 12,
			},
			release:  oldRelease,
			wantKind: ReasonPopularOnMiru,
		},
		{
			name:      "all-zero signals default to friends",
			candidate: ScoredCandidate{},
			release:   oldRelease,
			wantKind:  ReasonFriends,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := selectReason(tt.candidate, w, tt.release, reasonNow)
			if got.Kind != tt.wantKind {
				t.Errorf("reason kind = %s, want %s", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestSelectReasonPayloads(t *testing.T) {
	t.Parallel()

	w := DefaultConfig().Weights

	r := selectReason(ScoredCandidate{
		Signals:     Signals{Friend: 1.0},
		FriendCount: 4,
	}, w, time.Time{}, reasonNow)
	if r.FriendCount != 4 {
		t.Errorf("friends payload = %d, want 4", r.FriendCount)
	}

	r = selectReason(ScoredCandidate{
		Signals:       Signals{Platform: 1.0},
		PlatformCount: 37,
	}, w, time.Time{}, reasonNow)
	if r.PopularCount != 37 {
		t.Errorf("popular payload = %d, want 37", r.PopularCount)
	}
}

func TestReasonText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		reason Reason
		want   string
	}{
		{name: "one friend", reason: Reason{Kind: ReasonFriends, FriendCount: 1}, want: "1 friend wants to watch this"},
		{name: "many friends", reason: Reason{Kind: ReasonFriends, FriendCount: 3}, want: "3 friends want to watch this"},
		{name: "genre", reason: Reason{Kind: ReasonGenreMatch}, want: "Matches your favorite genres"},
		{name: "because you watched", reason: Reason{Kind: ReasonBecauseYouWatched, Title: "Heat"}, want: "Because you watched Heat"},
		{name: "because you watched fallback", reason: Reason{Kind: ReasonBecauseYouWatched}, want: "Because you watched your watchlist"},
		{name: "top rated", reason: Reason{Kind: ReasonTopRated}, want: "Highly rated"},
		{name: "trending", reason: Reason{Kind: ReasonTrending}, want: "Trending now"},
		{name: "available on", reason: Reason{Kind: ReasonAvailableOn, Provider: "Netflix"}, want: "Available on Netflix"},
		{name: "available on fallback", reason: Reason{Kind: ReasonAvailableOn}, want: "Available on your services"},
		{name: "popular singular", reason: Reason{Kind: ReasonPopularOnMiru, PopularCount: 1}, want: "On 1 watchlist on Miru"},
		{name: "popular plural", reason: Reason{Kind: ReasonPopularOnMiru, PopularCount: 12}, want: "On 12 watchlists on Miru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.reason.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReasonMarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Reason{Kind: ReasonFriends, FriendCount: 2})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"kind":"friends"`, `"count":2`, `"text":"2 friends want to watch this"`} {
		if !strings.Contains(s, want) {
			t.Errorf("friends JSON %s missing %s", s, want)
		}
	}

	data, err = json.Marshal(Reason{Kind: ReasonAvailableOn, Provider: "Netflix"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s = string(data)
	if !strings.Contains(s, `"kind":"available_on"`) || !strings.Contains(s, `"provider":"Netflix"`) {
		t.Errorf("available_on JSON missing fields: %s", s)
	}
	if strings.Contains(s, `"count"`) || strings.Contains(s, `"title"`) {
		t.Errorf("available_on JSON leaks inactive payloads: %s", s)
	}

	data, err = json.Marshal(Reason{Kind: ReasonTrending})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s = string(data)
	if !strings.Contains(s, `"kind":"trending"`) {
		t.Errorf("trending JSON missing kind: %s", s)
	}
	for _, forbidden := range []string{`"count"`, `"title"`, `"provider"`} {
		if strings.Contains(s, forbidden) {
			t.Errorf("trending JSON carries payload %s: %s", forbidden, s)
		}
	}
}

func TestReasonKindString(t *testing.T) {
	t.Parallel()

	want := map[ReasonKind]string{
		ReasonFriends:           "friends",
		ReasonGenreMatch:        "genre_match",
		ReasonBecauseYouWatched: "because_you_watched",
		ReasonTopRated:          "top_rated",
		ReasonTrending:          "trending",
		ReasonAvailableOn:       "available_on",
		ReasonPopularOnMiru:     "popular_on_miru",
	}
	for kind, name := range want {
		if got := kind.String(); got != name {
			t.Errorf("ReasonKind(%d).String() = %q, want %q", kind, got, name)
		}
	}
}
