package http

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/singhpravendra/user-service/internal/domain"
	"github.com/singhpravendra/user-service/internal/domain/user"
	"github.com/singhpravendra/user-service/internal/logger"
)

// This file is the failure boundary: it is the only place errors become
// transport responses. Three classes are handled — domain errors with their
// fixed status mapping, request validation failures as a per-field 422, and
// everything else as an opaque 500.

// writeDomainError maps a service failure to its transport response.
// Unrecognized errors never leak detail to the caller.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if de, ok := domain.AsError(err); ok {
		slog.Warn("domain error",
			"message", de.Message,
			"status", de.Status(),
			"path", r.URL.Path,
			"trace_id", logger.TraceID(r.Context()),
		)
		writeErrorBody(w, r, de.Status(), de.Message, de.Type(), de.Details)
		return
	}

	slog.Error("unhandled error",
		"error", err,
		"path", r.URL.Path,
		"trace_id", logger.TraceID(r.Context()),
	)
	writeErrorBody(w, r, http.StatusInternalServerError, "Internal server error", "InternalServerError", nil)
}

// fieldError mirrors user.FieldError for the validation response shape.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// writeFieldErrors reports request-model validation failures: one entry per
// invalid field, always status 422.
func writeFieldErrors(w http.ResponseWriter, r *http.Request, errs []fieldError) {
	slog.Warn("validation error",
		"errors", len(errs),
		"path", r.URL.Path,
		"trace_id", logger.TraceID(r.Context()),
	)
	writeErrorBody(w, r, http.StatusUnprocessableEntity, "Validation error", "ValidationError",
		map[string]any{"errors": errs})
}

// writeValidationErrors adapts the domain request-model field errors.
func writeValidationErrors(w http.ResponseWriter, r *http.Request, errs []user.FieldError) {
	out := make([]fieldError, len(errs))
	for i, e := range errs {
		out[i] = fieldError{Field: e.Field, Message: e.Message, Type: e.Type}
	}
	writeFieldErrors(w, r, out)
}

// writeHTTPError reports transport-level failures (unknown route, bad
// method) in the same envelope.
func writeHTTPError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeErrorBody(w, r, status, message, "HTTPException", nil)
}

// Recover is the outermost failure boundary for panics: the full error and
// stack go to the server log, the caller gets a generic 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && err == http.ErrAbortHandler { //nolint:errorlint // sentinel comparison is intentional
				panic(rec)
			}
			slog.Error("panic recovered",
				"panic", rec,
				"path", r.URL.Path,
				"trace_id", logger.TraceID(r.Context()),
				"stack", string(debug.Stack()),
			)
			writeErrorBody(w, r, http.StatusInternalServerError, "Internal server error", "InternalServerError", nil)
		}()
		next.ServeHTTP(w, r)
	})
}
