// Miru - Social Movie Discovery
// Copyright 2026 Miru Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/miru-app/miru-recs

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDKey is the context key holding the authenticated user id. Zero
// means anonymous.
const UserIDKey contextKey = "user_id"

// Session verifies the bearer session token issued by the main application
// and puts the user id in the request context. Requests without a token
// proceed as anonymous; requests with an invalid token are rejected so a
// broken client notices instead of silently getting a generic feed.
func Session(secret string, reject func(w http.ResponseWriter, r *http.Request, status int, code, message string)) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				reject(w, r, http.StatusUnauthorized, "invalid_token", "malformed authorization header")
				return
			}

			userID, err := verifySessionToken(raw, secret)
			if err != nil {
				reject(w, r, http.StatusUnauthorized, "invalid_token", "session token rejected")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next(w, r.WithContext(ctx))
		}
	}
}

func verifySessionToken(raw, secret string) (int64, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, fmt.Errorf("parsing session token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("reading subject claim: %w", err)
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid subject claim %q", sub)
	}
	return userID, nil
}

// GetUserID extracts the authenticated user id from context, or 0 for
// anonymous requests.
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}
