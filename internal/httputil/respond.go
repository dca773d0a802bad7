// Package httputil provides the JSON response and request-decoding helpers
// shared by every HTTP handler.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
)

// ErrorResponse is the error body every endpoint returns. Field is set for
// validation failures so clients can highlight the offending input.
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// DecodeJSON decodes the request body into v. On failure it writes a 400
// response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := io.LimitReader(r.Body, 1<<20)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		BadRequest(w, "invalid request body")
		return false
	}
	return true
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: message})
}

// ValidationError writes a 400 naming the invalid field.
func ValidationError(w http.ResponseWriter, message, field string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: message, Field: field})
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusNotFound, ErrorResponse{Message: message})
}

// Unauthorized writes a 401 with the given message.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Message: message})
}

// Forbidden writes a 403 with the given message.
func Forbidden(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusForbidden, ErrorResponse{Message: message})
}

// Conflict writes a 409 with the given message.
func Conflict(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusConflict, ErrorResponse{Message: message})
}

// InternalError writes a 500 with the given message.
func InternalError(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: message})
}

// WriteError maps a service error to the appropriate status code. Validation
// errors carry their field name into the response body; anything unrecognized
// becomes a generic 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		ValidationError(w, ve.Message, ve.Field)
	case errors.Is(err, errs.ErrUnauthorized):
		Unauthorized(w, "authentication required")
	case errors.Is(err, storage.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, storage.ErrDuplicate),
		errors.Is(err, storage.ErrInsufficientStock),
		errors.Is(err, errs.ErrConflict):
		Conflict(w, err.Error())
	default:
		InternalError(w, "internal server error")
	}
}
