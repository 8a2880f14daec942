// Package repository defines the user storage port (interface).
package repository

import (
	"context"

	"github.com/singhpravendra/user-service/internal/domain/user"
)

// UserRepository is the port interface for user storage backends.
//
// Absence is reported as (nil, nil), never as a domain error; the service
// layer is the sole translator from absence into the error taxonomy.
// Implementations must serialize all five operations against each other so
// the service's check-then-act sequences observe a consistent store.
type UserRepository interface {
	// Save stores or overwrites the user by id and returns the stored entity.
	Save(ctx context.Context, u *user.User) (*user.User, error)

	// Find returns the user with the given id, or nil when absent.
	Find(ctx context.Context, id string) (*user.User, error)

	// List returns all users in insertion order.
	List(ctx context.Context) ([]user.User, error)

	// Delete removes the user if present; deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// FindByEmail returns the user whose email matches case-insensitively,
	// or nil when none does.
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}
