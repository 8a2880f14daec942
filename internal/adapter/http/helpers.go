package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/singhpravendra/user-service/internal/logger"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the envelope for every failure response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Details map[string]any `json:"details"`
	TraceID string         `json:"trace_id"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// writeErrorBody formats the error envelope with the request's trace id.
func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, message, errType string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Message: message,
		Type:    errType,
		Details: details,
		TraceID: logger.TraceID(r.Context()),
	}})
}

// readJSON decodes a JSON request body with a size limit. On failure it
// writes the 422 per-field validation shape and returns false.
func readJSON[T any](w http.ResponseWriter, r *http.Request, v *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFieldErrors(w, r, []fieldError{{
			Field:   "body",
			Message: "Invalid JSON body",
			Type:    "json_invalid",
		}})
		return false
	}
	return true
}
