// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/miru-app/miru-recs/internal/logging"
)

var engineNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// mockData is an in-memory DataProvider for pipeline tests. Unset maps read
// as empty, matching a user or catalog with no such data.
type mockData struct {
	watchlist      map[int64][]int64
	watched        map[int64][]int64
	explicitGenres map[int64][]int64
	userProviders  map[int64][]int64
	movieGenres    map[int64][]int64
	movieProviders map[int64][]int64
	movies         map[int64]Movie
	overlaps       map[int64][]UserOverlap
	friendAdds     map[int64][]WatchlistAdd
	userWatchlists map[int64][]WatchlistAdd
	genreTop       []int64
	popular        []MovieCount
	trending       []int64
	watchCounts    map[int64]int
	latestWatched  map[int64]string
	providerNames  map[int64]string

	err error // when set, every call fails
}

var _ DataProvider = (*mockData)(nil)

func (m *mockData) WatchlistMovieIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.watchlist[userID], m.err
}

func (m *mockData) WatchedMovieIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.watched[userID], m.err
}

func (m *mockData) ExplicitGenreIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.explicitGenres[userID], m.err
}

func (m *mockData) UserProviderIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.userProviders[userID], m.err
}

func (m *mockData) GenresForMovies(ctx context.Context, movieIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range movieIDs {
		if g, ok := m.movieGenres[id]; ok {
			out[id] = g
		}
	}
	return out, m.err
}

func (m *mockData) ProvidersForMovies(ctx context.Context, movieIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range movieIDs {
		if p, ok := m.movieProviders[id]; ok {
			out[id] = p
		}
	}
	return out, m.err
}

func (m *mockData) Movies(ctx context.Context, movieIDs []int64) (map[int64]Movie, error) {
	out := make(map[int64]Movie)
	for _, id := range movieIDs {
		if mv, ok := m.movies[id]; ok {
			out[id] = mv
		}
	}
	return out, m.err
}

func (m *mockData) OverlappingUsers(ctx context.Context, userID int64, movieIDs []int64) ([]UserOverlap, error) {
	return m.overlaps[userID], m.err
}

func (m *mockData) FriendWatchlistAdds(ctx context.Context, userID int64) ([]WatchlistAdd, error) {
	return m.friendAdds[userID], m.err
}

func (m *mockData) WatchlistForUsers(ctx context.Context, userIDs []int64) ([]WatchlistAdd, error) {
	var out []WatchlistAdd
	for _, uid := range userIDs {
		out = append(out, m.userWatchlists[uid]...)
	}
	return out, m.err
}

func (m *mockData) TopMoviesByGenres(ctx context.Context, genreIDs []int64, limit int) ([]int64, error) {
	if len(m.genreTop) > limit {
		return m.genreTop[:limit], m.err
	}
	return m.genreTop, m.err
}

func (m *mockData) MostWatchlisted(ctx context.Context, limit int) ([]MovieCount, error) {
	if len(m.popular) > limit {
		return m.popular[:limit], m.err
	}
	return m.popular, m.err
}

func (m *mockData) TrendingMovies(ctx context.Context, limit int) ([]int64, error) {
	if len(m.trending) > limit {
		return m.trending[:limit], m.err
	}
	return m.trending, m.err
}

func (m *mockData) WatchlistCounts(ctx context.Context, movieIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int)
	for _, id := range movieIDs {
		if c, ok := m.watchCounts[id]; ok {
			out[id] = c
		}
	}
	return out, m.err
}

func (m *mockData) LatestWatchedTitle(ctx context.Context, userID int64) (string, error) {
	return m.latestWatched[userID], m.err
}

func (m *mockData) ProviderNames(ctx context.Context, providerIDs []int64) (map[int64]string, error) {
	out := make(map[int64]string)
	for _, id := range providerIDs {
		if n, ok := m.providerNames[id]; ok {
			out[id] = n
		}
	}
	return out, m.err
}

func newTestEngine(t *testing.T, data DataProvider) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), data, nil, logging.NewTestLogger(nil), func() time.Time { return engineNow })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func pageMovieIDs(p Page) []int64 {
	out := make([]int64, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.MovieID
	}
	return out
}

func TestForYouEmptyStoreIsNotAnError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockData{})

	page, err := e.ForYou(context.Background(), 7, 20, 0)
	if err != nil {
		t.Fatalf("ForYou on empty store failed: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
	if page.Items == nil {
		t.Error("Items must be an empty slice, not nil, so it serializes as []")
	}
}

func TestForYouAnonymousGetsPopularAndTrending(t *testing.T) {
	t.Parallel()

	data := &mockData{
		movies: map[int64]Movie{
			1: {ID: 1, Title: "One", VoteAverage: 8, VoteCount: 100},
			2: {ID: 2, Title: "Two", VoteAverage: 7, VoteCount: 100},
		},
		popular:     []MovieCount{{MovieID: 1, Count: 5}},
		trending:    []int64{2},
		watchCounts: map[int64]int{1: 5},
	}
	e := newTestEngine(t, data)

	page, err := e.ForYou(context.Background(), 0, 20, 0)
	if err != nil {
		t.Fatalf("anonymous ForYou failed: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("Total = %d, want 2", page.Total)
	}
	for _, it := range page.Items {
		if it.FriendCount != 0 {
			t.Errorf("anonymous item %d has friend count %d", it.MovieID, it.FriendCount)
		}
		if it.Reason.Kind == ReasonBecauseYouWatched {
			t.Errorf("anonymous item %d explained by watch history", it.MovieID)
		}
	}
}

func TestForYouExcludesOwnMovies(t *testing.T) {
	t.Parallel()

	data := &mockData{
		watchlist: map[int64][]int64{7: {1}},
		watched:   map[int64][]int64{7: {2}},
		movies: map[int64]Movie{
			1: {ID: 1, Title: "One"},
			2: {ID: 2, Title: "Two"},
			3: {ID: 3, Title: "Three"},
		},
		trending: []int64{1, 2, 3},
	}
	e := newTestEngine(t, data)

	page, err := e.ForYou(context.Background(), 7, 20, 0)
	if err != nil {
		t.Fatalf("ForYou failed: %v", err)
	}
	got := pageMovieIDs(page)
	if !reflect.DeepEqual(got, []int64{3}) {
		t.Errorf("page = %v, want [3]: own watchlist and history must be excluded", got)
	}
}

func TestForYouDeterministic(t *testing.T) {
	t.Parallel()

	day := 24 * time.Hour
	data := &mockData{
		watchlist:      map[int64][]int64{7: {100}},
		explicitGenres: map[int64][]int64{7: {28}},
		userProviders:  map[int64][]int64{7: {8}},
		movieGenres: map[int64][]int64{
			100: {28}, 1: {28}, 2: {18}, 3: {28},
		},
		movieProviders: map[int64][]int64{1: {8}, 2: {15}},
		movies: map[int64]Movie{
			1: {ID: 1, Title: "One", VoteAverage: 8, VoteCount: 100},
			2: {ID: 2, Title: "Two", VoteAverage: 7, VoteCount: 100},
			3: {ID: 3, Title: "Three", VoteAverage: 6, VoteCount: 100},
		},
		friendAdds: map[int64][]WatchlistAdd{
			7: {{MovieID: 1, UserID: 21, AddedAt: engineNow.Add(-2 * day)}},
		},
		popular:     []MovieCount{{MovieID: 2, Count: 9}},
		trending:    []int64{1, 2, 3},
		watchCounts: map[int64]int{1: 3, 2: 9},
	}
	e := newTestEngine(t, data)

	first, err := e.ForYou(context.Background(), 7, 20, 0)
	if err != nil {
		t.Fatalf("ForYou failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.ForYou(context.Background(), 7, 20, 0)
		if err != nil {
			t.Fatalf("ForYou failed on repeat: %v", err)
		}
		if !reflect.DeepEqual(pageMovieIDs(first), pageMovieIDs(again)) {
			t.Fatalf("ordering not deterministic: %v vs %v", pageMovieIDs(first), pageMovieIDs(again))
		}
	}
}

func TestForYouPaginationSlicesOneRanking(t *testing.T) {
	t.Parallel()

	movies := make(map[int64]Movie, 10)
	trending := make([]int64, 10)
	for i := int64(1); i <= 10; i++ {
		movies[i] = Movie{ID: i, Title: "Movie", VoteAverage: float64(i), VoteCount: 100}
		trending[i-1] = i
	}
	data := &mockData{movies: movies, trending: trending}
	e := newTestEngine(t, data)

	full, err := e.ForYou(context.Background(), 7, 10, 0)
	if err != nil {
		t.Fatalf("ForYou failed: %v", err)
	}
	if full.Total != 10 {
		t.Fatalf("Total = %d, want 10", full.Total)
	}

	var paged []int64
	for offset := 0; offset < 10; offset += 3 {
		page, err := e.ForYou(context.Background(), 7, 3, offset)
		if err != nil {
			t.Fatalf("ForYou at offset %d failed: %v", offset, err)
		}
		if page.Total != 10 {
			t.Errorf("Total at offset %d = %d, want 10", offset, page.Total)
		}
		paged = append(paged, pageMovieIDs(page)...)
	}

	if !reflect.DeepEqual(paged, pageMovieIDs(full)) {
		t.Errorf("concatenated pages %v differ from the full ranking %v", paged, pageMovieIDs(full))
	}
}

func TestForYouOffsetPastEnd(t *testing.T) {
	t.Parallel()

	data := &mockData{
		movies:   map[int64]Movie{1: {ID: 1, Title: "One"}},
		trending: []int64{1},
	}
	e := newTestEngine(t, data)

	page, err := e.ForYou(context.Background(), 7, 20, 500)
	if err != nil {
		t.Fatalf("ForYou past end failed: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected empty slice past end, got %v", pageMovieIDs(page))
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}

func TestForYouStoreErrorPropagates(t *testing.T) {
	t.Parallel()

	data := &mockData{err: errors.New("store unavailable")}
	e := newTestEngine(t, data)

	if _, err := e.ForYou(context.Background(), 7, 20, 0); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestForYouEnrichment(t *testing.T) {
	t.Parallel()

	day := 24 * time.Hour
	data := &mockData{
		watchlist:     map[int64][]int64{7: {100}},
		watched:       map[int64][]int64{7: {101}},
		userProviders: map[int64][]int64{7: {8}},
		overlaps: map[int64][]UserOverlap{
			7: {{UserID: 9, Overlap: 2, CatalogSize: 6}},
		},
		userWatchlists: map[int64][]WatchlistAdd{
			9: {{MovieID: 1, UserID: 9, AddedAt: engineNow.Add(-day)}},
		},
		movieProviders: map[int64][]int64{2: {8}},
		movies: map[int64]Movie{
			// Old releases keep the quality signal at zero so the
			// collaborative and streaming signals dominate.
			1: {ID: 1, Title: "One", ReleaseDate: engineNow.Add(-800 * day)},
			2: {ID: 2, Title: "Two", ReleaseDate: engineNow.Add(-800 * day)},
		},
		trending:      []int64{1, 2},
		latestWatched: map[int64]string{7: "Heat"},
		providerNames: map[int64]string{8: "Netflix"},
	}
	e := newTestEngine(t, data)

	page, err := e.ForYou(context.Background(), 7, 20, 0)
	if err != nil {
		t.Fatalf("ForYou failed: %v", err)
	}

	byID := make(map[int64]Item, len(page.Items))
	for _, it := range page.Items {
		byID[it.MovieID] = it
	}

	collab, ok := byID[1]
	if !ok {
		t.Fatalf("movie 1 missing from page %v", pageMovieIDs(page))
	}
	if collab.Reason.Kind != ReasonBecauseYouWatched {
		t.Fatalf("movie 1 reason = %s, want because_you_watched", collab.Reason.Kind)
	}
	if collab.Reason.Title != "Heat" {
		t.Errorf("because_you_watched title = %q, want Heat", collab.Reason.Title)
	}

	streaming, ok := byID[2]
	if !ok {
		t.Fatalf("movie 2 missing from page %v", pageMovieIDs(page))
	}
	if streaming.Reason.Kind != ReasonAvailableOn {
		t.Fatalf("movie 2 reason = %s, want available_on", streaming.Reason.Kind)
	}
	if streaming.Reason.Provider != "Netflix" {
		t.Errorf("available_on provider = %q, want Netflix", streaming.Reason.Provider)
	}
}

func TestForYouColdStartHasNoCollaborativeReasons(t *testing.T) {
	t.Parallel()

	// The user's catalog is too small for any neighbor to qualify, so the
	// collaborative signal is zero everywhere and no item can be explained
	// by watch history.
	data := &mockData{
		watchlist: map[int64][]int64{7: {100}},
		overlaps: map[int64][]UserOverlap{
			7: {{UserID: 9, Overlap: 1, CatalogSize: 3}},
		},
		movies: map[int64]Movie{
			1: {ID: 1, Title: "One", VoteAverage: 8, VoteCount: 100},
		},
		trending: []int64{1},
	}
	e := newTestEngine(t, data)

	page, err := e.ForYou(context.Background(), 7, 20, 0)
	if err != nil {
		t.Fatalf("ForYou failed: %v", err)
	}
	for _, it := range page.Items {
		if it.Reason.Kind == ReasonBecauseYouWatched {
			t.Errorf("cold-start item %d explained by watch history", it.MovieID)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Weights.Friend = 0.5 // sum now exceeds 1

	if _, err := New(cfg, &mockData{}, nil, logging.NewTestLogger(nil), nil); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestNewRequiresDataProvider(t *testing.T) {
	t.Parallel()

	if _, err := New(DefaultConfig(), nil, nil, logging.NewTestLogger(nil), nil); err == nil {
		t.Fatal("expected error for missing data provider")
	}
}
