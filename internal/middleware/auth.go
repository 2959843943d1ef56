// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"foodgram/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	userIDKey    contextKey = "user_id"
	tokenKey     contextKey = "token"
	requestIDKey contextKey = "request_id"
)

// TokenStore resolves API tokens to user ids.
type TokenStore interface {
	Lookup(ctx context.Context, token string) (userID int64, ok bool, err error)
}

// LoadIdentity resolves the Authorization token, if any, and stores the
// user id in the request context. It does NOT enforce authentication, but
// a token that is present and unknown is rejected with 401.
func LoadIdentity(tokens TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.FromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok, err := tokens.Lookup(r.Context(), token)
			if err != nil {
				slog.Error("token lookup failed", "error", err, "request_id", RequestIDFromCtx(r.Context()))
				writeDetail(w, http.StatusInternalServerError, "Внутренняя ошибка сервера.")
				return
			}
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "Недопустимый токен.")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401. Must be applied after
// LoadIdentity in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFromCtx(r.Context()) == 0 {
			writeDetail(w, http.StatusUnauthorized, "Учетные данные не были предоставлены.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFromCtx returns the authenticated user's id, or 0 for anonymous
// requests.
func UserIDFromCtx(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// TokenFromCtx returns the token the request authenticated with.
func TokenFromCtx(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// WithUserID returns a copy of ctx carrying userID as the authenticated
// user. Used by handler tests to bypass token lookup.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
