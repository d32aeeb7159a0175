// Package api implements the Fehu REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const ownerCtxKey ctxKey = iota

// DefaultOwnerKey is used when a request carries no X-Owner-Key header.
const DefaultOwnerKey = "default"

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OwnerMiddleware resolves the owner key from the X-Owner-Key header and
// stores it on the request context. Every data route is scoped to it.
func OwnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get("X-Owner-Key"))
		if owner == "" {
			owner = DefaultOwnerKey
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerCtxKey, owner)))
	})
}

func ownerFrom(ctx context.Context) string {
	if owner, ok := ctx.Value(ownerCtxKey).(string); ok && owner != "" {
		return owner
	}
	return DefaultOwnerKey
}
