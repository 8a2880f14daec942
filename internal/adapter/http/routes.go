package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router. Unknown
// routes and bad methods get the standard error envelope rather than chi's
// plain-text defaults.
func MountRoutes(r chi.Router, h *Handlers, health *HealthHandlers) {
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeHTTPError(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeHTTPError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Delete("/{id}", h.DeleteUser)
	})

	r.Get("/health", health.Health)
	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
}
