package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/session"
)

// SessionHeader carries the id returned by POST /api/session
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

// SessionResolver is the part of the session store the middleware needs
type SessionResolver interface {
	Get(id string) (*session.Session, error)
}

// Session middleware loads the caller's session from the X-Session-ID header
// and stores it in the request context
func Session(store SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)

			if id == "" {
				writeError(w, http.StatusUnauthorized, "Session required: create one with POST /api/session")
				return
			}

			sess, err := store.Get(id)
			if err != nil {
				writeError(w, http.StatusNotFound, "Session not found or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying sess
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session stored by the Session middleware
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*session.Session)
	return sess, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
