// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package recommend

import "testing"

const (
	genreAction int64 = 28
	genreDrama  int64 = 18
)

func TestPrimaryGenre(t *testing.T) {
	t.Parallel()

	weights := map[int64]float64{genreAction: 0.9, genreDrama: 0.5}

	tests := []struct {
		name     string
		genreIDs []int64
		wantID   int64
		wantOK   bool
	}{
		{name: "untagged", genreIDs: nil, wantOK: false},
		{name: "single tag", genreIDs: []int64{genreDrama}, wantID: genreDrama, wantOK: true},
		{name: "highest weight wins", genreIDs: []int64{genreDrama, genreAction}, wantID: genreAction, wantOK: true},
		{name: "tie broken by smallest id", genreIDs: []int64{99, 97}, wantID: 97, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, ok := primaryGenre(tt.genreIDs, weights)
			if ok != tt.wantOK {
				t.Fatalf("ok = %t, want %t", ok, tt.wantOK)
			}
			if ok && id != tt.wantID {
				t.Errorf("primaryGenre = %d, want %d", id, tt.wantID)
			}
		})
	}
}

func rerankFixture(ids []int64, scores []float64) []ScoredCandidate {
	out := make([]ScoredCandidate, len(ids))
	for i := range ids {
		out[i] = ScoredCandidate{MovieID: ids[i], Score: scores[i]}
	}
	return out
}

func rerankIDs(items []ScoredCandidate) []int64 {
	out := make([]int64, len(items))
	for i, c := range items {
		out[i] = c.MovieID
	}
	return out
}

func TestDiversityRerank(t *testing.T) {
	t.Parallel()

	weights := map[int64]float64{genreAction: 0.9, genreDrama: 0.5}

	tests := []struct {
		name        string
		items       []ScoredCandidate
		movieGenres map[int64][]int64
		limit       int
		want        []int64
	}{
		{
			name:  "two same-genre leaders stay put",
			items: rerankFixture([]int64{1, 2, 3}, []float64{0.9, 0.8, 0.7}),
			movieGenres: map[int64][]int64{
				1: {genreAction}, 2: {genreAction}, 3: {genreDrama},
			},
			limit: 3,
			want:  []int64{1, 2, 3},
		},
		{
			name:  "third consecutive same genre deferred past next other genre",
			items: rerankFixture([]int64{1, 2, 3, 4}, []float64{0.9, 0.8, 0.7, 0.6}),
			movieGenres: map[int64][]int64{
				1: {genreAction}, 2: {genreAction}, 3: {genreAction}, 4: {genreDrama},
			},
			limit: 4,
			want:  []int64{1, 2, 4, 3},
		},
		{
			name:  "all one genre backfilled unchanged",
			items: rerankFixture([]int64{1, 2, 3, 4}, []float64{0.9, 0.8, 0.7, 0.6}),
			movieGenres: map[int64][]int64{
				1: {genreAction}, 2: {genreAction}, 3: {genreAction}, 4: {genreAction},
			},
			limit: 4,
			want:  []int64{1, 2, 3, 4},
		},
		{
			name:  "untagged movies never deferred",
			items: rerankFixture([]int64{1, 2, 3}, []float64{0.9, 0.8, 0.7}),
			movieGenres: map[int64][]int64{
				1: {genreAction}, 2: {genreAction},
			},
			limit: 3,
			want:  []int64{1, 2, 3},
		},
		{
			name:  "limit truncates after rerank",
			items: rerankFixture([]int64{1, 2, 3, 4}, []float64{0.9, 0.8, 0.7, 0.6}),
			movieGenres: map[int64][]int64{
				1: {genreAction}, 2: {genreAction}, 3: {genreAction}, 4: {genreDrama},
			},
			limit: 2,
			want:  []int64{1, 2},
		},
		{
			name:  "empty input",
			items: nil,
			limit: 10,
			want:  []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := rerankIDs(diversityRerank(tt.items, tt.movieGenres, weights, tt.limit))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("reranked[%d] = %d, want %d (full: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestDiversityRerankNeverDropsItems(t *testing.T) {
	t.Parallel()

	// A long single-genre run must come back complete, just reordered.
	ids := make([]int64, 20)
	scores := make([]float64, 20)
	genres := make(map[int64][]int64, 20)
	for i := range ids {
		ids[i] = int64(i + 1)
		scores[i] = 1.0 - float64(i)*0.01
		genres[ids[i]] = []int64{genreAction}
	}
	// Two drama entries in the middle.
	genres[5] = []int64{genreDrama}
	genres[6] = []int64{genreDrama}

	got := diversityRerank(rerankFixture(ids, scores), genres, map[int64]float64{genreAction: 0.9, genreDrama: 0.5}, len(ids))
	if len(got) != len(ids) {
		t.Fatalf("rerank dropped items: got %d, want %d", len(got), len(ids))
	}
	seen := make(map[int64]bool, len(got))
	for _, c := range got {
		if seen[c.MovieID] {
			t.Fatalf("movie %d duplicated in rerank output", c.MovieID)
		}
		seen[c.MovieID] = true
	}
}
