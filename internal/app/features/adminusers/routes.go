// internal/app/features/adminusers/routes.go
package adminusers

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the user management routes to the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeList)
	r.Post("/role", h.HandleUpdateRole)
	r.Post("/invite", h.HandleInvite)
}
