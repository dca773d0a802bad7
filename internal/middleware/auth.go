// Package middleware provides the HTTP middleware chain: session auth,
// capability checks, CORS, rate limiting, request logging, and metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopops/backoffice/internal/app/domain/identity"
	"github.com/shopops/backoffice/internal/app/services/auth"
	"github.com/shopops/backoffice/internal/httputil"
	"github.com/shopops/backoffice/pkg/logger"
)

// SessionCookie is the HTTP-only cookie carrying the session token.
const SessionCookie = "session"

type contextKey string

const claimsKey contextKey = "claims"

// WithClaims returns a context carrying resolved user claims.
func WithClaims(ctx context.Context, c identity.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFrom extracts the resolved user claims, if any.
func ClaimsFrom(ctx context.Context) (identity.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(identity.Claims)
	return c, ok
}

// TokenFromRequest extracts the session token from the cookie or, failing
// that, a Bearer Authorization header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// SessionMiddleware resolves the session token to fresh user claims on every
// request. Paths in skipPaths pass through unauthenticated; their handlers
// decide what an absent user means.
type SessionMiddleware struct {
	auth      *auth.Service
	log       *logger.Logger
	skipPaths map[string]bool
}

// NewSessionMiddleware creates a session middleware.
func NewSessionMiddleware(authService *auth.Service, log *logger.Logger, skipPaths []string) *SessionMiddleware {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	if log == nil {
		log = logger.NewDefault("middleware")
	}
	return &SessionMiddleware{auth: authService, log: log, skipPaths: skip}
}

// Handler returns the middleware handler.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		claims, err := m.auth.CurrentUser(r.Context(), token)
		if err == nil {
			r = r.WithContext(WithClaims(r.Context(), claims))
		} else if !m.skipPaths[r.URL.Path] {
			httputil.Unauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability gates a handler on the current user's role capability.
func RequireCapability(c identity.Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			httputil.Unauthorized(w, "authentication required")
			return
		}
		if !claims.Role.Can(c) {
			httputil.Forbidden(w, "insufficient permissions")
			return
		}
		next(w, r)
	}
}
