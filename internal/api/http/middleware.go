package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/logger"
	"gearloop-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "user-claims"

// AuthMiddleware validates the bearer token and injects the caller's claims
// into the request context. Routes mounted behind it can rely on
// ClaimsFromContext returning a verified identity.
func AuthMiddleware(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, r, domain.NewError(domain.ErrUnauthenticated, "authorization header is required"))
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, r, domain.NewError(domain.ErrUnauthenticated, "authorization header must use the Bearer scheme"))
				return
			}

			claims, err := tm.ValidateToken(token)
			if err != nil {
				writeError(w, r, domain.WrapError(domain.ErrUnauthenticated, "invalid token", err))
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the authenticated caller. The zero return only
// happens on routes not mounted behind AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*security.UserClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.UserClaims)
	return claims, ok
}

func actorID(r *http.Request) (int32, error) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return 0, domain.NewError(domain.ErrUnauthenticated, "no authenticated user")
	}
	return claims.UserID, nil
}

// RequestLogging logs each request with its latency and status.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
