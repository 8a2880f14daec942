package logger

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// traceIDKey is the context key for the request trace id.
var traceIDKey = contextKey{}

// WithTraceID returns a new context carrying the given trace id. The value
// lives only as long as the request's context chain, so concurrent requests
// never observe each other's id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// TraceID extracts the trace id from the context.
// Returns an empty string if none is set.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}
