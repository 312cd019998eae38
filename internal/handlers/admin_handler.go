package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/go-chi/chi/v5"
)

// TableStatusWriter is a table source whose statuses can be changed by staff
type TableStatusWriter interface {
	SetStatus(ctx context.Context, id string, status models.TableStatus) error
}

// AdminHandler handles restaurant staff requests
type AdminHandler struct {
	tables TableStatusWriter
	log    *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(tables TableStatusWriter, log *slog.Logger) *AdminHandler {
	return &AdminHandler{
		tables: tables,
		log:    log,
	}
}

// TableStatusRequest is the body of PUT /api/admin/tables/{tableId}/status
type TableStatusRequest struct {
	Status string `json:"status"`
}

// SetTableStatus handles PUT /api/admin/tables/{tableId}/status
// - 200: status changed
// - 400: status is not available, reserved or occupied
// - 404: unknown table
func (h *AdminHandler) SetTableStatus(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableId")

	var req TableStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.Warn("failed to decode table status request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	status, err := models.ParseTableStatus(req.Status)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	if err := h.tables.SetStatus(r.Context(), tableID, status); err != nil {
		WriteServiceError(w, err, h.log)
		return
	}

	h.log.Info("table status changed", "table_id", tableID, "status", string(status))
	WriteJSON(w, http.StatusOK, map[string]string{
		"id":     tableID,
		"status": string(status),
	}, h.log)
}
