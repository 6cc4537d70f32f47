// Package handler contains the HTTP handlers for the portfolio API.
//
// Handlers do three things only: parse the request, call a service, and
// write the response. Every error response flows through writeError so
// the domain-error-to-status mapping lives in exactly one place.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nadhifra/portofolio-api/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API
// endpoints. Fields is present only on validation errors and carries
// every violated field, so a form can render all messages at once.
type ErrorResponse struct {
	Error   string               `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string               `json:"message"` // human-readable description
	Fields  []apperror.Violation `json:"fields,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set before the first body write — Encode
// writes, so the order here is fixed.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code
// and sends it.
//
// The service layer returns apperror sentinels wrapped in *AppError;
// errors.Is walks the chain (through any fmt.Errorf %w wrapping) to
// find the sentinel, and errors.As extracts the typed error for its
// safe message and violations. Services never see a status code.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Fields:  appErr.Violations,
		})
		return
	}

	// Unknown error. Never leak internals (SQL, file paths) to the
	// client; the handler has already logged the real error.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an unexpected error occurred",
	})
}

// decodeBody decodes a JSON request body into a generic payload map.
// Services validate the map against their rule tables; the handler only
// cares that the body is well-formed JSON.
func decodeBody(r *http.Request) (map[string]any, error) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, apperror.ValidationFailed("body", "request body must be a JSON object")
	}
	return payload, nil
}
