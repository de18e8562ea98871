// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/miru-app/miru-recs/internal/config"
	"github.com/miru-app/miru-recs/internal/logging"
)

func testConfig(baseURL string) *config.MetadataConfig {
	return &config.MetadataConfig{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		Timeout:   2 * time.Second,
		RateLimit: 100,
	}
}

func TestGenresFetchesAndDecodes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/genre/movie/list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("api key missing from request")
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":18,"name":"Drama"}]}`)); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), logging.NewTestLogger(nil))

	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("Genres failed: %v", err)
	}
	if len(genres) != 2 {
		t.Fatalf("got %d genres, want 2", len(genres))
	}
	if genres[0].ID != 28 || genres[0].Name != "Action" {
		t.Errorf("genres[0] = %+v", genres[0])
	}
}

func TestGenresNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), logging.NewTestLogger(nil))

	if _, err := client.Genres(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestGenresMalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{not json`)); err != nil {
			t.Errorf("writing response: %v", err)
		}
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), logging.NewTestLogger(nil))

	if _, err := client.Genres(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGenresContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), logging.NewTestLogger(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Genres(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), logging.NewTestLogger(nil))

	// Enough failures to trip the breaker, then the breaker itself rejects.
	for i := 0; i < 10; i++ {
		if _, err := client.Genres(context.Background()); err == nil {
			t.Fatal("expected failure")
		}
	}
	if _, err := client.Genres(context.Background()); err == nil {
		t.Fatal("expected open-circuit rejection")
	}
}
