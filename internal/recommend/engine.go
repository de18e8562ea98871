// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/miru-app/miru-recs/internal/metrics"
)

// Engine computes the personalized "for you" feed. It is stateless across
// requests: every call reads through the DataProvider and recomputes the
// ranking, so identical store contents yield identical pages.
type Engine struct {
	cfg    *Config
	data   DataProvider
	genres *GenreCatalog
	logger zerolog.Logger
	clock  func() time.Time
}

// New builds an engine. clock may be nil, in which case time.Now is used.
func New(cfg *Config, data DataProvider, genres *GenreCatalog, logger zerolog.Logger, clock func() time.Time) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommendation config: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("recommend: data provider is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		cfg:    cfg,
		data:   data,
		genres: genres,
		logger: logger,
		clock:  clock,
	}, nil
}

// Genres exposes the cached genre taxonomy for the API layer.
func (e *Engine) Genres(ctx context.Context) ([]Genre, error) {
	if e.genres == nil {
		return nil, fmt.Errorf("recommend: no genre catalog configured")
	}
	return e.genres.Genres(ctx)
}

// profile is everything the pipeline learns about the requesting user before
// candidate sourcing. The zero value is the anonymous profile.
type profile struct {
	watchlist      []int64
	watched        []int64
	explicitGenres []int64
	providerIDs    []int64

	ownMovieIDs  []int64
	exclude      map[int64]struct{}
	genreWeights map[int64]float64
	neighbors    []SimilarUser
}

// ForYou returns one page of the personalized feed. The full ranking is
// computed and diversified on every call, then sliced by offset and limit,
// so consecutive pages are disjoint contiguous slices of one consistent
// ordering. A user with no usable taste data gets the popularity and
// trending sources only; an empty page is a valid result, never an error.
// Any store or upstream failure aborts the request and propagates.
func (e *Engine) ForYou(ctx context.Context, userID int64, limit, offset int) (Page, error) {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	page, err := e.forYou(ctx, userID, limit, offset)
	switch {
	case err != nil:
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return Page{}, err
	case len(page.Items) == 0:
		metrics.RecommendRequests.WithLabelValues("empty").Inc()
	default:
		metrics.RecommendRequests.WithLabelValues("ok").Inc()
	}
	return page, nil
}

func (e *Engine) forYou(ctx context.Context, userID int64, limit, offset int) (Page, error) {
	prof, err := e.loadProfile(ctx, userID)
	if err != nil {
		return Page{}, err
	}

	set, err := e.gatherCandidates(ctx, userID, prof)
	if err != nil {
		return Page{}, err
	}
	metrics.CandidatePoolSize.Observe(float64(len(set.ids)))

	if len(set.ids) == 0 {
		e.logger.Debug().Int64("user_id", userID).Msg("no candidates after aggregation")
		return Page{Items: []Item{}, Limit: limit, Offset: offset}, nil
	}

	ranked, movies, err := e.scoreAndRank(ctx, prof, set)
	if err != nil {
		return Page{}, err
	}

	total := len(ranked)
	slice := paginate(ranked, limit, offset)

	items, err := e.buildItems(ctx, userID, slice, movies)
	if err != nil {
		return Page{}, err
	}

	e.logger.Debug().
		Int64("user_id", userID).
		Int("candidates", len(set.ids)).
		Int("total", total).
		Int("returned", len(items)).
		Msg("for-you page computed")

	return Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// loadProfile runs the profile and taste stages. An anonymous request
// (userID zero) returns the empty profile without touching the store.
func (e *Engine) loadProfile(ctx context.Context, userID int64) (profile, error) {
	prof := profile{exclude: map[int64]struct{}{}}
	if userID == 0 {
		return prof, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prof.watchlist, err = e.data.WatchlistMovieIDs(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		prof.watched, err = e.data.WatchedMovieIDs(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		prof.explicitGenres, err = e.data.ExplicitGenreIDs(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		prof.providerIDs, err = e.data.UserProviderIDs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return profile{}, fmt.Errorf("loading user profile: %w", err)
	}

	for _, id := range prof.watchlist {
		prof.exclude[id] = struct{}{}
	}
	for _, id := range prof.watched {
		prof.exclude[id] = struct{}{}
	}
	prof.ownMovieIDs = make([]int64, 0, len(prof.exclude))
	for id := range prof.exclude {
		prof.ownMovieIDs = append(prof.ownMovieIDs, id)
	}
	sortInt64s(prof.ownMovieIDs)

	var (
		ownGenres map[int64][]int64
		overlaps  []UserOverlap
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ownGenres, err = e.data.GenresForMovies(gctx, prof.ownMovieIDs)
		return err
	})
	if len(prof.ownMovieIDs) > 0 {
		g.Go(func() error {
			var err error
			overlaps, err = e.data.OverlappingUsers(gctx, userID, prof.ownMovieIDs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return profile{}, fmt.Errorf("loading taste data: %w", err)
	}

	start := e.clock()
	prof.genreWeights = computeGenreWeights(prof.explicitGenres, ownGenres)
	metrics.ObserveStage("genre_prefs", start)

	start = e.clock()
	prof.neighbors = rankSimilarUsers(len(prof.ownMovieIDs), overlaps, e.cfg.Limits.MaxNeighbors)
	metrics.ObserveStage("similar_users", start)

	return prof, nil
}

// gatherCandidates fans out to the five candidate sources concurrently and
// merges the results. Sources with no input for this user are skipped.
func (e *Engine) gatherCandidates(ctx context.Context, userID int64, prof profile) (candidateSet, error) {
	start := e.clock()
	defer metrics.ObserveStage("candidates", start)

	var res sourceResults
	g, gctx := errgroup.WithContext(ctx)

	if userID != 0 {
		g.Go(func() error {
			var err error
			res.friendAdds, err = e.data.FriendWatchlistAdds(gctx, userID)
			return err
		})
	}
	if len(prof.neighbors) > 0 {
		neighborIDs := make([]int64, len(prof.neighbors))
		for i, n := range prof.neighbors {
			neighborIDs[i] = n.UserID
		}
		g.Go(func() error {
			var err error
			res.neighborAdds, err = e.data.WatchlistForUsers(gctx, neighborIDs)
			return err
		})
	}
	if genreIDs := weightedGenreIDs(prof.genreWeights); len(genreIDs) > 0 {
		g.Go(func() error {
			var err error
			res.genreMovies, err = e.data.TopMoviesByGenres(gctx, genreIDs, e.cfg.Limits.GenreSource)
			return err
		})
	}
	g.Go(func() error {
		var err error
		res.popular, err = e.data.MostWatchlisted(gctx, e.cfg.Limits.PopularSource)
		return err
	})
	g.Go(func() error {
		var err error
		res.trending, err = e.data.TrendingMovies(gctx, e.cfg.Limits.TrendingSource)
		return err
	})
	if err := g.Wait(); err != nil {
		return candidateSet{}, fmt.Errorf("gathering candidates: %w", err)
	}

	return aggregateCandidates(res, prof.neighbors, prof.exclude), nil
}

// scoreAndRank loads candidate metadata in bulk, scores every candidate,
// and diversifies the full ordering. The returned movie map backs the later
// item construction.
func (e *Engine) scoreAndRank(ctx context.Context, prof profile, set candidateSet) ([]ScoredCandidate, map[int64]Movie, error) {
	var (
		movies         map[int64]Movie
		movieGenres    map[int64][]int64
		movieProviders map[int64][]int64
		platformCounts map[int64]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = e.data.Movies(gctx, set.ids)
		return err
	})
	g.Go(func() error {
		var err error
		movieGenres, err = e.data.GenresForMovies(gctx, set.ids)
		return err
	})
	g.Go(func() error {
		var err error
		movieProviders, err = e.data.ProvidersForMovies(gctx, set.ids)
		return err
	})
	g.Go(func() error {
		var err error
		platformCounts, err = e.data.WatchlistCounts(gctx, set.ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("loading candidate metadata: %w", err)
	}

	userProviders := make(map[int64]struct{}, len(prof.providerIDs))
	for _, id := range prof.providerIDs {
		userProviders[id] = struct{}{}
	}

	start := e.clock()
	scored := scoreCandidates(scoringInput{
		candidateIDs:   set.ids,
		friendAdds:     set.friendAdds,
		friendCounts:   set.friendCounts,
		collabSums:     set.collabSums,
		genreWeights:   prof.genreWeights,
		movieGenres:    movieGenres,
		movieProviders: movieProviders,
		userProviders:  userProviders,
		movies:         movies,
		platformCounts: platformCounts,
		now:            e.clock(),
	}, e.cfg.Weights)
	metrics.ObserveStage("scoring", start)

	start = e.clock()
	ranked := diversityRerank(scored, movieGenres, prof.genreWeights, len(scored))
	metrics.ObserveStage("rerank", start)

	return ranked, movies, nil
}

// buildItems selects an explanation per page item and runs the enrichment
// second pass over the page slice only.
func (e *Engine) buildItems(ctx context.Context, userID int64, slice []ScoredCandidate, movies map[int64]Movie) ([]Item, error) {
	start := e.clock()
	defer metrics.ObserveStage("enrich", start)

	now := e.clock()
	items := make([]Item, len(slice))
	providerIDs := make(map[int64]struct{})
	needWatchedTitle := false

	for i, c := range slice {
		m := movies[c.MovieID]
		reason := selectReason(c, e.cfg.Weights, m.ReleaseDate, now)
		switch reason.Kind {
		case ReasonBecauseYouWatched:
			needWatchedTitle = true
		case ReasonAvailableOn:
			if c.ProviderID != 0 {
				providerIDs[c.ProviderID] = struct{}{}
			}
		}
		items[i] = Item{
			MovieID:     c.MovieID,
			Title:       m.Title,
			PosterPath:  m.PosterPath,
			FriendCount: c.FriendCount,
			Reason:      reason,
		}
		if !m.ReleaseDate.IsZero() {
			items[i].ReleaseDate = m.ReleaseDate.Format("2006-01-02")
		}
	}

	var (
		watchedTitle  string
		providerNames map[int64]string
	)
	g, gctx := errgroup.WithContext(ctx)
	if needWatchedTitle && userID != 0 {
		g.Go(func() error {
			var err error
			watchedTitle, err = e.data.LatestWatchedTitle(gctx, userID)
			return err
		})
	}
	if len(providerIDs) > 0 {
		ids := make([]int64, 0, len(providerIDs))
		for id := range providerIDs {
			ids = append(ids, id)
		}
		sortInt64s(ids)
		g.Go(func() error {
			var err error
			providerNames, err = e.data.ProviderNames(gctx, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enriching explanations: %w", err)
	}

	for i, c := range slice {
		switch items[i].Reason.Kind {
		case ReasonBecauseYouWatched:
			items[i].Reason.Title = watchedTitle
		case ReasonAvailableOn:
			items[i].Reason.Provider = providerNames[c.ProviderID]
		}
	}

	return items, nil
}

// paginate slices the full ranking by offset and limit, clamping to bounds.
func paginate(ranked []ScoredCandidate, limit, offset int) []ScoredCandidate {
	if offset >= len(ranked) {
		return nil
	}
	end := offset + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[offset:end]
}
