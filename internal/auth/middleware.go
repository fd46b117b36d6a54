package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// SessionCookie is the cookie name the dashboard uses for its token.
const SessionCookie = "session"

type contextKey struct{}

// WithAdmin returns a context carrying admin.
func WithAdmin(ctx context.Context, admin Admin) context.Context {
	return context.WithValue(ctx, contextKey{}, admin)
}

// AdminFromContext returns the admin set by RequireSession.
func AdminFromContext(ctx context.Context) (Admin, bool) {
	admin, ok := ctx.Value(contextKey{}).(Admin)
	return admin, ok
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireSession rejects requests without a live session with 401 and
// otherwise stores the admin in the request context.
func (a *Authenticator) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, err := a.Current(r.Context(), TokenFromRequest(r))
		if err != nil {
			if !errors.Is(err, ErrSessionExpired) {
				a.logger.Error("session lookup failed",
					zap.String("op", "auth.RequireSession"),
					zap.Error(err))
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
	})
}
