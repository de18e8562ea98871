// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ReasonKind identifies the winning signal behind a recommendation. The set
// is closed: every consumer switches exhaustively over it, so adding a
// seventh signal forces every switch to be revisited.
type ReasonKind int

const (
	// ReasonFriends means friends of the user want to watch the movie.
	ReasonFriends ReasonKind = iota
	// ReasonGenreMatch means the movie matches the user's genre tastes.
	ReasonGenreMatch
	// ReasonBecauseYouWatched means taste-neighbors of the user have it on
	// their watchlists.
	ReasonBecauseYouWatched
	// ReasonTopRated means the movie is a highly rated catalog title.
	ReasonTopRated
	// ReasonTrending means the movie is highly rated and recently released.
	ReasonTrending
	// ReasonAvailableOn means the movie streams on one of the user's
	// services.
	ReasonAvailableOn
	// ReasonPopularOnMiru means the movie is widely watchlisted on the
	// platform.
	ReasonPopularOnMiru
)

// String returns the wire name of the reason kind.
func (k ReasonKind) String() string {
	switch k {
	case ReasonFriends:
		return "friends"
	case ReasonGenreMatch:
		return "genre_match"
	case ReasonBecauseYouWatched:
		return "because_you_watched"
	case ReasonTopRated:
		return "top_rated"
	case ReasonTrending:
		return "trending"
	case ReasonAvailableOn:
		return "available_on"
	case ReasonPopularOnMiru:
		return "popular_on_miru"
	default:
		return "unknown"
	}
}

// Reason is the single "why this" attribution attached to each returned item.
// Only the payload fields of the active kind are meaningful.
type Reason struct {
	Kind ReasonKind

	// FriendCount is the payload of ReasonFriends.
	FriendCount int

	// Title is the payload of ReasonBecauseYouWatched: the user's most
	// recently watched movie, filled by enrichment.
	Title string

	// Provider is the payload of ReasonAvailableOn: the streaming service
	// name, filled by enrichment.
	Provider string

	// PopularCount is the payload of ReasonPopularOnMiru.
	PopularCount int
}

// Enrichment fallbacks used when the second-pass lookups find nothing.
const (
	fallbackWatchedTitle = "your watchlist"
	fallbackProvider     = "your services"
)

// Text renders the human-readable explanation.
func (r Reason) Text() string {
	switch r.Kind {
	case ReasonFriends:
		if r.FriendCount == 1 {
			return "1 friend wants to watch this"
		}
		return fmt.Sprintf("%d friends want to watch this", r.FriendCount)
	case ReasonGenreMatch:
		return "Matches your favorite genres"
	case ReasonBecauseYouWatched:
		title := r.Title
		if title == "" {
			title = fallbackWatchedTitle
		}
		return fmt.Sprintf("Because you watched %s", title)
	case ReasonTopRated:
		return "Highly rated"
	case ReasonTrending:
		return "Trending now"
	case ReasonAvailableOn:
		provider := r.Provider
		if provider == "" {
			provider = fallbackProvider
		}
		return fmt.Sprintf("Available on %s", provider)
	case ReasonPopularOnMiru:
		if r.PopularCount == 1 {
			return "On 1 watchlist on Miru"
		}
		return fmt.Sprintf("On %d watchlists on Miru", r.PopularCount)
	default:
		return ""
	}
}

// reasonJSON is the wire form of a Reason: a kind tag plus the payload of
// the active arm only.
type reasonJSON struct {
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	Count    int    `json:"count,omitempty"`
	Title    string `json:"title,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// MarshalJSON renders the reason as a tagged object.
func (r Reason) MarshalJSON() ([]byte, error) {
	out := reasonJSON{Kind: r.Kind.String(), Text: r.Text()}

	switch r.Kind {
	case ReasonFriends:
		out.Count = r.FriendCount
	case ReasonBecauseYouWatched:
		out.Title = r.Title
	case ReasonAvailableOn:
		out.Provider = r.Provider
	case ReasonPopularOnMiru:
		out.Count = r.PopularCount
	case ReasonGenreMatch, ReasonTopRated, ReasonTrending:
		// No payload.
	}

	return json.Marshal(out)
}
