// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

// Package recommend implements the personalized "for you" feed engine.
//
// The engine is a per-request pipeline of five stages:
//
//  1. Genre preference estimation: explicit genre choices blended with
//     implicit genre frequency from the user's watchlist and watch history.
//  2. Similar-user finding: taste-neighbors ranked by Jaccard similarity of
//     movie sets.
//  3. Candidate aggregation: five independent sources (friends' watchlists,
//     neighbors' watchlists, genre-matching catalog, platform-popular,
//     trending) queried concurrently, unioned, minus the user's own movies.
//  4. Signal scoring: six normalized signals combined with fixed weights.
//  5. Diversity reranking and explanation selection over the final page.
//
// The engine holds no state between requests other than a genre catalog
// snapshot refreshed on expiry. All "learning" is a per-request recomputation
// of heuristic weights; there is no trained model. Data access goes through
// the DataProvider interface so the engine has no dependency on the store
// package and no circular imports.
//
// Empty results at any stage are valid outputs, not errors: a user with no
// history, no friends, and no genre picks still gets the popularity and
// quality-floor candidates, and a zero-data platform yields an empty feed.
// Upstream read failures are not retried here; they propagate to the caller.
package recommend
