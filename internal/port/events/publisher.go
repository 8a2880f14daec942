// Package events defines the lifecycle event publishing port.
package events

import "context"

// Subjects for user lifecycle events.
const (
	SubjectUserCreated = "users.created"
	SubjectUserDeleted = "users.deleted"
)

// Publisher emits domain lifecycle events to a message backbone.
// Publishing is best-effort: callers log failures and never fail the
// originating request because of one.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// Noop is a Publisher that discards all events. Used when no broker is
// configured.
type Noop struct{}

// Publish discards the event.
func (Noop) Publish(context.Context, string, []byte) error { return nil }

// Close is a no-op.
func (Noop) Close() error { return nil }
