package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/session"
)

// SessionHandler creates and ends client sessions
type SessionHandler struct {
	store  *session.Store
	logger *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store *session.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		logger: logger,
	}
}

// SessionResponse is returned when a session is created
type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateSession handles POST /api/session
// A session is created even when table availability cannot be loaded; the
// cart works regardless and GET /api/reservation retries the floor plan.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create(r.Context())

	w.Header().Set(middleware.SessionHeader, sess.ID)
	WriteJSON(w, http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
	}, h.logger)
}

// DeleteSession handles DELETE /api/session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Session required", h.logger)
		return
	}

	h.store.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}
