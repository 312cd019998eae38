package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/repository"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/service"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// WriteServiceError maps a domain error to its HTTP status
func WriteServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status := StatusFor(err)
	message := err.Error()

	switch {
	case status == http.StatusInternalServerError:
		logger.Error("request failed", "error", err)
		message = "Internal server error"
	case status == http.StatusBadGateway:
		logger.Warn("submission failed", "error", err)
	default:
		logger.Info("request rejected", "status", status, "error", err)
	}

	WriteError(w, status, message, logger)
}

// StatusFor returns the HTTP status code for a domain error
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrCheckoutNotReady),
		errors.Is(err, service.ErrIncompleteReservation),
		errors.Is(err, service.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, errItemNotFound),
		errors.Is(err, repository.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTableUnavailable),
		errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrSubmissionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into dst. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
