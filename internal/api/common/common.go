package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	"github.com/stacklok/listonic-sync/internal/service"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSONResponse writes a JSON response with the given data
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// WriteErrorResponse writes a standardized error response
func WriteErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}

// WriteServiceError maps a service error onto a status code and writes it
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusForError(err)
	if code >= http.StatusInternalServerError {
		slog.Warn("Request failed", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	}
	WriteErrorResponse(w, err.Error(), code)
}

// StatusForError returns the HTTP status for an error of the service layer
func StatusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apierrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotReady):
		return http.StatusServiceUnavailable
	case apierrors.IsAuth(err):
		return http.StatusUnauthorized
	case apierrors.IsRequest(err):
		return http.StatusBadGateway
	case apierrors.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
