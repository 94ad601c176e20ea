package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"nexium-server/internal/auth"
	"nexium-server/internal/shared/errors"
	"nexium-server/internal/shared/response"
)

type contextKey string

const SessionContextKey contextKey = "session"

// Session validates the bearer token and attaches the claims to the request
// context. Action routes refuse anonymous requests.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "session",
			"method", r.Method,
			"path", r.URL.Path,
		)

		token := bearerToken(r)
		if token == "" {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		claims, err := auth.ValidateSessionToken(token)
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("invalid session token"))
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the validated claims, or nil on an unguarded
// route.
func SessionFromContext(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(SessionContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	// Browser clients carry the token in a cookie instead.
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}
