// Package http provides the HTTP handlers and middleware for the user service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/singhpravendra/user-service/internal/domain/user"
	"github.com/singhpravendra/user-service/internal/logger"
	"github.com/singhpravendra/user-service/internal/service"
)

// Handlers holds the service dependencies for all user routes. The graph is
// built once at startup by the composition root; nothing is constructed per
// request.
type Handlers struct {
	Users *service.UserService
}

// CreateUser handles POST /users.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateRequest
	if !readJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidationErrors(w, r, errs)
		return
	}

	u, err := h.Users.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.NewResponse(u, logger.TraceID(r.Context())))
}

// GetUser handles GET /users/{id}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.NewResponse(u, logger.TraceID(r.Context())))
}

// ListUsers handles GET /users.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	traceID := logger.TraceID(r.Context())
	out := make([]user.Response, 0, len(users))
	for i := range users {
		out = append(out, user.NewResponse(&users[i], traceID))
	}

	writeJSON(w, http.StatusOK, user.ListResponse{
		Users:   out,
		Total:   len(out),
		TraceID: traceID,
	})
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Users.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
