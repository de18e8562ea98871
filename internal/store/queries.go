// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/miru-app/miru-recs/internal/metrics"
	"github.com/miru-app/miru-recs/internal/recommend"
)

// queryInt64s runs a single-column BIGINT query.
func (db *DB) queryInt64s(ctx context.Context, name, query string, args ...any) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery(name, time.Now())

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", name, err)
	}
	return out, nil
}

// queryInt64Pairs runs a two-column BIGINT query into a one-to-many map.
func (db *DB) queryInt64Pairs(ctx context.Context, name, query string, args ...any) (map[int64][]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery(name, time.Now())

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var key, val int64
		if err := rows.Scan(&key, &val); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out[key] = append(out[key], val)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", name, err)
	}
	return out, nil
}

func observeQuery(name string, start time.Time) {
	metrics.StoreQueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// WatchlistMovieIDs returns the movie ids on the user's watchlist.
func (db *DB) WatchlistMovieIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.queryInt64s(ctx, "watchlist_movie_ids",
		`SELECT movie_id FROM watchlist_items WHERE user_id = ?`, userID)
}

// WatchedMovieIDs returns the movie ids the user has marked watched.
func (db *DB) WatchedMovieIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.queryInt64s(ctx, "watched_movie_ids",
		`SELECT movie_id FROM watched_items WHERE user_id = ?`, userID)
}

// ExplicitGenreIDs returns the user's onboarding genre picks.
func (db *DB) ExplicitGenreIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.queryInt64s(ctx, "explicit_genre_ids",
		`SELECT genre_id FROM user_genres WHERE user_id = ?`, userID)
}

// UserProviderIDs returns the user's selected streaming service ids.
func (db *DB) UserProviderIDs(ctx context.Context, userID int64) ([]int64, error) {
	return db.queryInt64s(ctx, "user_provider_ids",
		`SELECT provider_id FROM user_providers WHERE user_id = ?`, userID)
}

// GenresForMovies returns genre ids keyed by movie id.
func (db *DB) GenresForMovies(ctx context.Context, movieIDs []int64) (map[int64][]int64, error) {
	if len(movieIDs) == 0 {
		return map[int64][]int64{}, nil
	}
	query := fmt.Sprintf(
		`SELECT movie_id, genre_id FROM movie_genres WHERE movie_id IN (%s)`,
		placeholders(len(movieIDs)))
	return db.queryInt64Pairs(ctx, "genres_for_movies", query, int64Args(movieIDs)...)
}

// ProvidersForMovies returns streaming provider ids keyed by movie id.
func (db *DB) ProvidersForMovies(ctx context.Context, movieIDs []int64) (map[int64][]int64, error) {
	if len(movieIDs) == 0 {
		return map[int64][]int64{}, nil
	}
	query := fmt.Sprintf(
		`SELECT movie_id, provider_id FROM movie_providers WHERE movie_id IN (%s)`,
		placeholders(len(movieIDs)))
	return db.queryInt64Pairs(ctx, "providers_for_movies", query, int64Args(movieIDs)...)
}

// Movies returns catalog metadata keyed by movie id.
func (db *DB) Movies(ctx context.Context, movieIDs []int64) (map[int64]recommend.Movie, error) {
	if len(movieIDs) == 0 {
		return map[int64]recommend.Movie{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery("movies", time.Now())

	query := fmt.Sprintf(`
		SELECT id, title, poster_path, release_date, vote_average, vote_count, popularity
		FROM movies
		WHERE id IN (%s)`, placeholders(len(movieIDs)))

	rows, err := db.conn.QueryContext(ctx, query, int64Args(movieIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]recommend.Movie, len(movieIDs))
	for rows.Next() {
		var (
			m          recommend.Movie
			posterPath sql.NullString
			released   sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.Title, &posterPath, &released,
			&m.VoteAverage, &m.VoteCount, &m.Popularity); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		if posterPath.Valid {
			m.PosterPath = posterPath.String
		}
		if released.Valid {
			m.ReleaseDate = released.Time
		}
		out[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return out, nil
}

// OverlappingUsers returns every other user sharing at least one of the
// given movie ids, with the raw overlap and catalog-size counts. The
// similarity policy lives in the recommend package; this query only counts.
func (db *DB) OverlappingUsers(ctx context.Context, userID int64, movieIDs []int64) ([]recommend.UserOverlap, error) {
	if len(movieIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery("overlapping_users", time.Now())

	query := fmt.Sprintf(`
		WITH catalog AS (
			SELECT user_id, movie_id FROM watchlist_items
			UNION
			SELECT user_id, movie_id FROM watched_items
		),
		shared AS (
			SELECT user_id, COUNT(*) AS overlap
			FROM catalog
			WHERE user_id <> ? AND movie_id IN (%s)
			GROUP BY user_id
		)
		SELECT s.user_id, s.overlap, COUNT(c.movie_id) AS catalog_size
		FROM shared s
		JOIN catalog c ON c.user_id = s.user_id
		GROUP BY s.user_id, s.overlap`, placeholders(len(movieIDs)))

	args := append([]any{userID}, int64Args(movieIDs)...)
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query overlapping users: %w", err)
	}
	defer rows.Close()

	var out []recommend.UserOverlap
	for rows.Next() {
		var o recommend.UserOverlap
		if err := rows.Scan(&o.UserID, &o.Overlap, &o.CatalogSize); err != nil {
			return nil, fmt.Errorf("scan overlap: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overlaps: %w", err)
	}
	return out, nil
}

// FriendWatchlistAdds returns watchlist entries of users who follow the
// given user.
func (db *DB) FriendWatchlistAdds(ctx context.Context, userID int64) ([]recommend.WatchlistAdd, error) {
	return db.queryWatchlistAdds(ctx, "friend_watchlist_adds", `
		SELECT w.movie_id, w.user_id, w.added_at
		FROM watchlist_items w
		JOIN follows f ON f.follower_id = w.user_id
		WHERE f.followee_id = ?`, userID)
}

// WatchlistForUsers returns watchlist entries for the given users.
func (db *DB) WatchlistForUsers(ctx context.Context, userIDs []int64) ([]recommend.WatchlistAdd, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT movie_id, user_id, added_at
		FROM watchlist_items
		WHERE user_id IN (%s)`, placeholders(len(userIDs)))
	return db.queryWatchlistAdds(ctx, "watchlist_for_users", query, int64Args(userIDs)...)
}

func (db *DB) queryWatchlistAdds(ctx context.Context, name, query string, args ...any) ([]recommend.WatchlistAdd, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery(name, time.Now())

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	var out []recommend.WatchlistAdd
	for rows.Next() {
		var add recommend.WatchlistAdd
		if err := rows.Scan(&add.MovieID, &add.UserID, &add.AddedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, add)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", name, err)
	}
	return out, nil
}

// TopMoviesByGenres returns catalog movie ids tagged with any of the given
// genres, ranked by catalog popularity.
func (db *DB) TopMoviesByGenres(ctx context.Context, genreIDs []int64, limit int) ([]int64, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT m.id
		FROM movies m
		JOIN movie_genres mg ON mg.movie_id = m.id
		WHERE mg.genre_id IN (%s)
		GROUP BY m.id, m.popularity
		ORDER BY m.popularity DESC, m.id
		LIMIT ?`, placeholders(len(genreIDs)))
	args := append(int64Args(genreIDs), limit)
	return db.queryInt64s(ctx, "top_movies_by_genres", query, args...)
}

// MostWatchlisted returns the platform-wide most-watchlisted movies.
func (db *DB) MostWatchlisted(ctx context.Context, limit int) ([]recommend.MovieCount, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery("most_watchlisted", time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT movie_id, COUNT(*) AS adds
		FROM watchlist_items
		GROUP BY movie_id
		ORDER BY adds DESC, movie_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query most watchlisted: %w", err)
	}
	defer rows.Close()

	var out []recommend.MovieCount
	for rows.Next() {
		var mc recommend.MovieCount
		if err := rows.Scan(&mc.MovieID, &mc.Count); err != nil {
			return nil, fmt.Errorf("scan most watchlisted: %w", err)
		}
		out = append(out, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate most watchlisted: %w", err)
	}
	return out, nil
}

// TrendingMovies returns globally popular catalog movie ids by the metadata
// provider's popularity metric.
func (db *DB) TrendingMovies(ctx context.Context, limit int) ([]int64, error) {
	return db.queryInt64s(ctx, "trending_movies", `
		SELECT id
		FROM movies
		ORDER BY popularity DESC, id
		LIMIT ?`, limit)
}

// WatchlistCounts returns platform-wide watchlist-add counts keyed by movie
// id. Movies with no adds are absent from the map.
func (db *DB) WatchlistCounts(ctx context.Context, movieIDs []int64) (map[int64]int, error) {
	if len(movieIDs) == 0 {
		return map[int64]int{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery("watchlist_counts", time.Now())

	query := fmt.Sprintf(`
		SELECT movie_id, COUNT(*)
		FROM watchlist_items
		WHERE movie_id IN (%s)
		GROUP BY movie_id`, placeholders(len(movieIDs)))

	rows, err := db.conn.QueryContext(ctx, query, int64Args(movieIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query watchlist counts: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var (
			movieID int64
			count   int
		)
		if err := rows.Scan(&movieID, &count); err != nil {
			return nil, fmt.Errorf("scan watchlist count: %w", err)
		}
		out[movieID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist counts: %w", err)
	}
	return out, nil
}

// LatestWatchedTitle returns the title of the user's most recently watched
// movie, or "" if the user has watched nothing.
func (db *DB) LatestWatchedTitle(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery("latest_watched_title", time.Now())

	var title string
	err := db.conn.QueryRowContext(ctx, `
		SELECT m.title
		FROM watched_items w
		JOIN movies m ON m.id = w.movie_id
		WHERE w.user_id = ?
		ORDER BY w.watched_at DESC, w.movie_id
		LIMIT 1`, userID).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest watched title: %w", err)
	}
	return title, nil
}

// ProviderNames returns provider display names keyed by provider id.
func (db *DB) ProviderNames(ctx context.Context, providerIDs []int64) (map[int64]string, error) {
	if len(providerIDs) == 0 {
		return map[int64]string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	defer observeQuery("provider_names", time.Now())

	query := fmt.Sprintf(
		`SELECT id, name FROM watch_providers WHERE id IN (%s)`,
		placeholders(len(providerIDs)))

	rows, err := db.conn.QueryContext(ctx, query, int64Args(providerIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query provider names: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string, len(providerIDs))
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan provider name: %w", err)
		}
		out[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider names: %w", err)
	}
	return out, nil
}
