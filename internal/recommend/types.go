// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"context"
	"time"
)

// Movie carries the catalog metadata the scorer and the feed response need.
type Movie struct {
	// ID is the catalog movie identifier.
	ID int64 `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// PosterPath is the poster image path relative to the image CDN base.
	PosterPath string `json:"poster_path,omitempty"`

	// ReleaseDate is the theatrical release date. Zero means unreleased or
	// unannounced.
	ReleaseDate time.Time `json:"release_date"`

	// VoteAverage is the external critic/audience rating (0-10).
	VoteAverage float64 `json:"vote_average,omitempty"`

	// VoteCount is the number of external vote records behind VoteAverage.
	VoteCount int `json:"vote_count,omitempty"`

	// Popularity is the provider's raw popularity metric.
	Popularity float64 `json:"popularity,omitempty"`
}

// Genre is one entry of the near-static genre catalog.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WatchlistAdd is a single watchlist entry with its owner and timestamp.
type WatchlistAdd struct {
	MovieID int64
	UserID  int64
	AddedAt time.Time
}

// UserOverlap describes another user's raw movie-set overlap with the
// requesting user, as reported by the store.
type UserOverlap struct {
	UserID int64

	// Overlap is the number of shared movie ids (watchlist union watched).
	Overlap int

	// CatalogSize is the other user's total watchlist+watched count.
	CatalogSize int
}

// SimilarUser is a taste-neighbor with its Jaccard similarity in (0, 1].
type SimilarUser struct {
	UserID     int64
	Similarity float64
}

// MovieCount pairs a movie id with an aggregate count.
type MovieCount struct {
	MovieID int64
	Count   int
}

// Signals holds the six normalized scoring signals, each in [0, 1].
type Signals struct {
	Friend        float64 `json:"friend"`
	Genre         float64 `json:"genre"`
	Collaborative float64 `json:"collaborative"`
	Quality       float64 `json:"quality"`
	Streaming     float64 `json:"streaming"`
	Platform      float64 `json:"platform"`
}

// ScoredCandidate is one candidate movie with its combined score, the raw
// per-signal values, and the auxiliary counters the explanation stage needs.
type ScoredCandidate struct {
	MovieID int64

	// Score is the weighted combination of the six signals, in [0, 1].
	Score float64

	// Signals are the raw per-signal values retained for explanation.
	Signals Signals

	// FriendCount is the undecayed number of friends with the movie on
	// their watchlist.
	FriendCount int

	// PlatformCount is the platform-wide watchlist-add count.
	PlatformCount int

	// ProviderID is one streaming provider shared between the movie and
	// the user's services, zero if none. Used by reason enrichment.
	ProviderID int64
}

// Item is one entry of the returned feed page.
type Item struct {
	MovieID     int64  `json:"movie_id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	FriendCount int    `json:"friend_count"`
	Reason      Reason `json:"reason"`
}

// Page is the paginated result of one ForYou computation.
type Page struct {
	// Items is the requested slice of the diversified full ranking.
	Items []Item `json:"items"`

	// Total is the size of the full ranking the slice was taken from.
	Total int `json:"total"`

	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DataProvider is the read surface over the relational store. It is
// implemented by the store package; the engine owns none of this data and
// performs no writes.
type DataProvider interface {
	// WatchlistMovieIDs returns the movie ids on the user's watchlist.
	WatchlistMovieIDs(ctx context.Context, userID int64) ([]int64, error)

	// WatchedMovieIDs returns the movie ids the user has marked watched.
	WatchedMovieIDs(ctx context.Context, userID int64) ([]int64, error)

	// ExplicitGenreIDs returns the genre ids the user picked during
	// onboarding or in settings.
	ExplicitGenreIDs(ctx context.Context, userID int64) ([]int64, error)

	// UserProviderIDs returns the user's selected streaming service ids.
	UserProviderIDs(ctx context.Context, userID int64) ([]int64, error)

	// GenresForMovies returns genre ids keyed by movie id.
	GenresForMovies(ctx context.Context, movieIDs []int64) (map[int64][]int64, error)

	// ProvidersForMovies returns streaming provider ids keyed by movie id.
	ProvidersForMovies(ctx context.Context, movieIDs []int64) (map[int64][]int64, error)

	// Movies returns catalog metadata keyed by movie id.
	Movies(ctx context.Context, movieIDs []int64) (map[int64]Movie, error)

	// OverlappingUsers returns every other user sharing at least one of the
	// given movie ids, with overlap and catalog-size counts.
	OverlappingUsers(ctx context.Context, userID int64, movieIDs []int64) ([]UserOverlap, error)

	// FriendWatchlistAdds returns watchlist entries of users who follow the
	// given user.
	FriendWatchlistAdds(ctx context.Context, userID int64) ([]WatchlistAdd, error)

	// WatchlistForUsers returns watchlist entries for the given users.
	WatchlistForUsers(ctx context.Context, userIDs []int64) ([]WatchlistAdd, error)

	// TopMoviesByGenres returns catalog movie ids tagged with any of the
	// given genres, ranked by catalog popularity.
	TopMoviesByGenres(ctx context.Context, genreIDs []int64, limit int) ([]int64, error)

	// MostWatchlisted returns the platform-wide most-watchlisted movies.
	MostWatchlisted(ctx context.Context, limit int) ([]MovieCount, error)

	// TrendingMovies returns globally popular catalog movie ids.
	TrendingMovies(ctx context.Context, limit int) ([]int64, error)

	// WatchlistCounts returns platform-wide watchlist-add counts keyed by
	// movie id. Movies with no adds are absent.
	WatchlistCounts(ctx context.Context, movieIDs []int64) (map[int64]int, error)

	// LatestWatchedTitle returns the title of the user's most recently
	// watched movie, or "" if the user has watched nothing.
	LatestWatchedTitle(ctx context.Context, userID int64) (string, error)

	// ProviderNames returns provider display names keyed by provider id.
	ProviderNames(ctx context.Context, providerIDs []int64) (map[int64]string, error)
}
