package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/garnizeh/interntrack/internal/resume"
	"github.com/garnizeh/interntrack/pkg/models"
)

// envelope is the JSON body shape of every response.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// writeSuccess merges payload into a success envelope.
func writeSuccess(w http.ResponseWriter, status int, message string, payload envelope) {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, message string, details map[string]string) {
	body := envelope{"success": false, "message": message}
	if len(details) > 0 {
		body["details"] = details
	}
	writeJSON(w, status, body)
}

// writeServiceError maps domain errors onto HTTP statuses. message is the
// client-facing summary used for unexpected failures.
func writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if ve, ok := models.IsValidation(err); ok {
		writeError(w, http.StatusBadRequest, message, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusBadRequest, "User already exists", nil)
	case errors.Is(err, models.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", nil)
	case errors.Is(err, resume.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Failed to upload file", map[string]string{"resume": err.Error()})
	case errors.Is(err, resume.ErrContentType), errors.Is(err, resume.ErrEmpty), errors.Is(err, resume.ErrUnreadable):
		writeError(w, http.StatusBadRequest, "Failed to upload file", map[string]string{"resume": err.Error()})
	default:
		logger.Error(message,
			slog.Any("err", err),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		body := envelope{"success": false, "message": message, "error": "Internal server error"}
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

const maxJSONBody = 1 << 20

// readBody returns the raw request body, capped at maxJSONBody.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
}
