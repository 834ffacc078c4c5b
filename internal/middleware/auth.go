package middleware

import (
	"context"
	"net/http"

	"github.com/coldsend/coldsend/internal/session"
)

const (
	// SessionContextKey is the context key for the authenticated session
	SessionContextKey contextKey = "session"

	// SessionIDContextKey is the context key for the raw session id
	SessionIDContextKey contextKey = "session_id"

	// SessionCookieName is the browser cookie carrying the session id
	SessionCookieName = "coldsend_session"
)

// WithSession loads the session referenced by the session cookie into the
// request context. It is optional: requests without a valid session continue
// anonymously. Authentication is decided only by the server-held session
// record, never by client-supplied identity headers.
func WithSession(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				// Unknown or expired session, continue anonymously
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, sess)
			ctx = context.WithValue(ctx, SessionIDContextKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that do not carry an authenticated
// session with a 401 JSON error, before any further work happens.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			respondUnauthorized(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetSession retrieves the authenticated session from the request context.
func GetSession(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(SessionContextKey).(session.Session)
	return sess, ok
}

// GetSessionID retrieves the raw session id from the request context.
// Empty when the request is anonymous.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDContextKey).(string); ok {
		return id
	}
	return ""
}
