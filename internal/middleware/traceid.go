// Package middleware provides HTTP middleware for the user service.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/singhpravendra/user-service/internal/logger"
)

// HeaderTraceID seeds and echoes the per-request correlation id.
const HeaderTraceID = "x-trace-id"

// TraceID is HTTP middleware that takes the trace id from the inbound
// x-trace-id header or generates a fresh one. The id is stored in the
// request context and set on the response header before any later wrapper
// or the handler runs.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderTraceID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := logger.WithTraceID(r.Context(), id)
		w.Header().Set(HeaderTraceID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
