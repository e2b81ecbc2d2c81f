// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-elect/auth"
)

// AdminKeyHeader carries the admin key on admin requests.
const AdminKeyHeader = "X-Admin-Key"

type contextKey int

const voterIDKey contextKey = iota

// RequireVoter rejects requests without a valid bearer session token and
// stores the authenticated voter ID in the request context.
func RequireVoter(sessionSalt string, now func() time.Time) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
				return
			}

			voterID, err := auth.ParseSessionToken(token, sessionSalt, now())
			if errors.Is(err, auth.ErrTokenExpired) {
				ErrorResponse(w, http.StatusUnauthorized, "Session expired")
				return
			}
			if err != nil {
				ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), voterIDKey, voterID)))
		}
	}
}

// VoterID returns the voter authenticated by RequireVoter, or "".
func VoterID(r *http.Request) string {
	id, _ := r.Context().Value(voterIDKey).(string)
	return id
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
