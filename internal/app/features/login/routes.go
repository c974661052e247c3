// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the sign-in routes to the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
}
