// Package service contains the business rules on top of the storage port.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/singhpravendra/user-service/internal/domain"
	"github.com/singhpravendra/user-service/internal/domain/user"
	"github.com/singhpravendra/user-service/internal/logger"
	"github.com/singhpravendra/user-service/internal/port/events"
	"github.com/singhpravendra/user-service/internal/port/repository"
)

// UserService enforces the user invariants and is the sole translator from
// repository absence into domain errors. Every failure it returns is a
// *domain.Error.
type UserService struct {
	repo   repository.UserRepository
	events events.Publisher

	// createMu serializes the duplicate-email check and the subsequent save.
	// Without it two concurrent creates with the same email can both pass
	// the check before either write lands.
	createMu sync.Mutex
}

// NewUserService creates a UserService. A nil publisher disables events.
func NewUserService(repo repository.UserRepository, pub events.Publisher) *UserService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &UserService{repo: repo, events: pub}
}

// Create validates the input, enforces email uniqueness and persists a new
// user. The uniqueness check and the save run as one critical section.
func (s *UserService) Create(ctx context.Context, name, email string) (*user.User, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, domain.Validation("Name must be at least 2 characters long", "name")
	}
	if len(name) > 100 {
		return nil, domain.Validation("Name must be at most 100 characters long", "name")
	}

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Validation("Invalid email format", "email")
	}
	email = strings.ToLower(email)

	s.createMu.Lock()
	defer s.createMu.Unlock()

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.internal("find by email", err)
	}
	if existing != nil {
		return nil, domain.Conflict(fmt.Sprintf("User with email '%s' already exists", email))
	}

	u := &user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	saved, err := s.repo.Save(ctx, u)
	if err != nil {
		return nil, s.internal("save user", err)
	}

	slog.Info("user created", "user_id", saved.ID, "email", saved.Email, "trace_id", logger.TraceID(ctx))
	s.publish(ctx, events.SubjectUserCreated, saved)

	return saved, nil
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	if id == "" {
		return nil, domain.Validation("User ID is required", "user_id")
	}

	u, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, s.internal("find user", err)
	}
	if u == nil {
		return nil, domain.NotFound("User", id)
	}
	return u, nil
}

// List returns all users in creation order.
func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.internal("list users", err)
	}
	return users, nil
}

// Delete removes the user with the given id. Deleting an id that was never
// issued, or was already deleted, fails NotFound.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validation("User ID is required", "user_id")
	}

	u, err := s.repo.Find(ctx, id)
	if err != nil {
		return s.internal("find user", err)
	}
	if u == nil {
		return domain.NotFound("User", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.internal("delete user", err)
	}

	slog.Info("user deleted", "user_id", id, "trace_id", logger.TraceID(ctx))
	s.publish(ctx, events.SubjectUserDeleted, u)

	return nil
}

// internal logs the underlying failure and returns an opaque domain error so
// nothing from the repository layer crosses the service boundary untranslated.
// A failure that is already a *domain.Error keeps its kind: the Postgres
// repository reports unique-index violations as Conflict, and that must reach
// the caller as 409, not 500.
func (s *UserService) internal(op string, err error) *domain.Error {
	if de, ok := domain.AsError(err); ok {
		return de
	}
	slog.Error("repository failure", "op", op, "error", err)
	return domain.Internal("Internal server error")
}

// lifecycleEvent is the payload published on user create/delete.
type lifecycleEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publish emits a lifecycle event. Failures are logged and never surfaced.
func (s *UserService) publish(ctx context.Context, subject string, u *user.User) {
	payload, err := json.Marshal(lifecycleEvent{
		UserID:     u.ID,
		Email:      u.Email,
		TraceID:    logger.TraceID(ctx),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("event marshal failed", "subject", subject, "error", err)
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		slog.Error("event publish failed", "subject", subject, "error", err)
	}
}
