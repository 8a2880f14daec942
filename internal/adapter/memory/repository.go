// Package memory implements the user repository port with process-local storage.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/singhpravendra/user-service/internal/domain/user"
)

// Repository stores users in a map guarded by a single mutex. The map is
// shared process-wide; every operation takes the lock, so a read followed
// by a write from the service layer observes a store no other request is
// mutating mid-operation.
//
// List order is insertion order, tracked by a separate id slice.
type Repository struct {
	mu    sync.Mutex
	users map[string]user.User
	order []string
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{users: make(map[string]user.User)}
}

// Save stores or overwrites the user by id and returns the stored entity.
func (r *Repository) Save(_ context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.ID]; !exists {
		r.order = append(r.order, u.ID)
	}
	r.users[u.ID] = *u

	stored := r.users[u.ID]
	return &stored, nil
}

// Find returns the user with the given id, or nil when absent.
func (r *Repository) Find(_ context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// List returns all users in insertion order.
func (r *Repository) List(_ context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]user.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out, nil
}

// Delete removes the user if present; deleting an absent id is a no-op.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return nil
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// FindByEmail scans for a case-insensitive email match, or nil when none.
func (r *Repository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lower := strings.ToLower(email)
	for _, id := range r.order {
		u := r.users[id]
		if strings.ToLower(u.Email) == lower {
			return &u, nil
		}
	}
	return nil, nil
}
