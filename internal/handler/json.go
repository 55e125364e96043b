package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/catalog-admin/internal/domain"
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// readJSON decodes the request body into the given destination.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

type fieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeServiceError maps a service error onto a status code and JSON body.
// Unexpected errors are logged under op and reported generically.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]fieldErrorDTO, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = fieldErrorDTO{Field: f.Field, Message: f.Message}
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  verr.Fields[0].Message,
			"fields": fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, userMessage(err))
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

// userMessage returns the message of the domain sentinel err wraps, without
// the internal context added on the way up.
func userMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrEmptyName, domain.ErrDuplicateName,
		domain.ErrMissingTitle, domain.ErrMissingCover, domain.ErrUnknownCategory,
		domain.ErrDuplicateUser, domain.ErrSecretInvalid, domain.ErrSecretUsed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return domain.ErrInvalidInput.Error()
}

// envelope is the response shape of the category API.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: status < 400, Message: message, Data: data})
}
