// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/miru-app/miru-recs/internal/config"
	"github.com/miru-app/miru-recs/internal/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := config.Default()
	cfg.Security.JWTSecret = "test-secret"

	h := newTestHandler(t, &stubData{}, &stubPinger{})
	return NewRouter(h, cfg, logging.NewTestLogger(nil)).Setup()
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "for-you", path: "/api/v1/recommendations/for-you", wantStatus: http.StatusOK},
		{name: "health live", path: "/api/v1/health/live", wantStatus: http.StatusOK},
		{name: "health ready", path: "/api/v1/health/ready", wantStatus: http.StatusOK},
		{name: "metrics", path: "/metrics", wantStatus: http.StatusOK},
		{name: "unknown route", path: "/api/v1/nonexistent", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRouterRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/for-you", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
