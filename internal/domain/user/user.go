// Package user defines the user domain entity and its request/response models.
package user

import (
	"strings"
	"time"
)

// User is the domain entity. Email is stored lower-cased and is the
// uniqueness key across all users. CreatedAt is set once at creation and
// never mutated; there is no update path.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest is the input for creating a new user.
type CreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FieldError describes a single invalid request field, reported by the
// transport-level validation layer before the service is invoked.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Validate checks the request fields and returns one entry per violation.
// A nil result means the request is well-formed. The service layer re-checks
// its own invariants; this layer only mirrors what a schema validator would
// reject before dispatch.
func (r *CreateRequest) Validate() []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		errs = append(errs, FieldError{Field: "name", Message: "Name cannot be empty", Type: "value_error"})
	case len(name) < 2:
		errs = append(errs, FieldError{Field: "name", Message: "Name must be at least 2 characters long", Type: "value_error"})
	case len(name) > 100:
		errs = append(errs, FieldError{Field: "name", Message: "Name must be at most 100 characters long", Type: "value_error"})
	}

	email := strings.TrimSpace(r.Email)
	switch {
	case email == "":
		errs = append(errs, FieldError{Field: "email", Message: "Email is required", Type: "missing"})
	case !strings.Contains(email, "@"):
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email format", Type: "value_error"})
	}

	return errs
}

// Response is the wire shape of a single user.
type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	TraceID   string    `json:"trace_id"`
}

// ListResponse is the wire shape of the user collection.
type ListResponse struct {
	Users   []Response `json:"users"`
	Total   int        `json:"total"`
	TraceID string     `json:"trace_id"`
}

// NewResponse builds the wire shape for u, stamped with the request trace id.
func NewResponse(u *User, traceID string) Response {
	return Response{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		TraceID:   traceID,
	}
}
