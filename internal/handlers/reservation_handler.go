package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/service"
)

// ReservationHandler exposes the session's table selection and reservation form
type ReservationHandler struct {
	log *slog.Logger
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(log *slog.Logger) *ReservationHandler {
	return &ReservationHandler{log: log}
}

// SelectTableRequest is the body of PUT /api/reservation/table
type SelectTableRequest struct {
	TableID string `json:"tableId"`
}

// GetReservation handles GET /api/reservation
// The floor plan is reloaded from the availability source first. If that
// fails the last known floor plan is returned.
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	selector, ok := h.selector(w, r)
	if !ok {
		return
	}

	if err := selector.Refresh(r.Context()); err != nil {
		h.log.Warn("serving cached floor plan", "error", err)
	}

	WriteJSON(w, http.StatusOK, newReservationView(selector), h.log)
}

// SelectTable handles PUT /api/reservation/table
// - 200: table selected (replacing any previous choice)
// - 404: unknown table
// - 409: table is reserved or occupied
func (h *ReservationHandler) SelectTable(w http.ResponseWriter, r *http.Request) {
	selector, ok := h.selector(w, r)
	if !ok {
		return
	}

	var req SelectTableRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.Warn("failed to decode select table request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	if err := selector.SelectTable(req.TableID); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newReservationView(selector), h.log)
}

// ClearTable handles DELETE /api/reservation/table
func (h *ReservationHandler) ClearTable(w http.ResponseWriter, r *http.Request) {
	selector, ok := h.selector(w, r)
	if !ok {
		return
	}

	if err := selector.ClearSelection(); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newReservationView(selector), h.log)
}

// UpdateForm handles PATCH /api/reservation/form
// The body is an object of field name to raw value. Values may be JSON
// strings or numbers ({"partySize": 4} is stored as "4"). Every name and
// value is checked before any value is stored.
func (h *ReservationHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	selector, ok := h.selector(w, r)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.log.Warn("failed to decode reservation form", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	fields := make(map[string]string, len(raw))
	for name, value := range raw {
		if _, err := (models.ReservationForm{}).Get(models.ReservationField(name)); err != nil {
			WriteServiceError(w, fmt.Errorf("%w: %q", service.ErrUnknownField, name), h.log)
			return
		}
		text, err := formValue(value)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value for %s", name), h.log)
			return
		}
		fields[name] = text
	}

	for _, field := range models.ReservationFields {
		value, present := fields[string(field)]
		if !present {
			continue
		}
		if err := selector.UpdateField(field, value); err != nil {
			WriteServiceError(w, err, h.log)
			return
		}
	}

	WriteJSON(w, http.StatusOK, newReservationView(selector), h.log)
}

// Submit handles POST /api/reservation/submit
// - 201: reservation acknowledged, form and selection cleared
// - 400: no table selected, empty field or invalid party size
// - 409: a submission is already in flight
// - 502: the reservation service failed or timed out; state kept
func (h *ReservationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	selector, ok := h.selector(w, r)
	if !ok {
		return
	}

	req, err := selector.Submit(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, req, h.log)
	h.log.Info("reservation placed", "reservation_id", req.ID, "table_id", req.TableID)
}

// formValue returns the raw text of a JSON string or number
func formValue(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch value := v.(type) {
	case string:
		return value, nil
	case json.Number:
		return value.String(), nil
	default:
		return "", fmt.Errorf("unsupported value %s", raw)
	}
}

func (h *ReservationHandler) selector(w http.ResponseWriter, r *http.Request) (*service.ReservationSelector, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Session required", h.log)
		return nil, false
	}
	return sess.Reservation, true
}
