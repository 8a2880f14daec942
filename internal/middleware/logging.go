package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/singhpravendra/user-service/internal/logger"
)

// HeaderResponseTime carries the elapsed handling time in milliseconds.
const HeaderResponseTime = "x-response-time-ms"

// RequestLogger is HTTP middleware that times the rest of the chain, stamps
// x-response-time-ms on the response and emits one structured log line per
// request. Errors from downstream are not swallowed: the wrapped handler's
// status is observed and re-reported, never replaced.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &timingWriter{ResponseWriter: w, status: http.StatusOK, start: time.Now()}
		next.ServeHTTP(tw, r)

		elapsed := time.Since(tw.start)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", tw.status,
			"duration_ms", formatMillis(elapsed),
			"trace_id", logger.TraceID(r.Context()),
		)
	})
}

// formatMillis renders a duration as milliseconds with two decimals,
// matching the x-response-time-ms header format.
func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Microseconds())/1000.0, 'f', 2, 64)
}

// timingWriter sets the response-time header just before the status line is
// written; headers cannot change after WriteHeader.
type timingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	start       time.Time
}

func (w *timingWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	w.Header().Set(HeaderResponseTime, formatMillis(time.Since(w.start)))
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming responses.
func (w *timingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
