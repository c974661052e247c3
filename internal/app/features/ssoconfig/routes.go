// internal/app/features/ssoconfig/routes.go
package ssoconfig

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the SSO settings routes on the given router.
// The router group is expected to already require admin access; the write
// handlers additionally gate on the full admin role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeSettings)
	r.Post("/", h.HandleUpdate)
	r.Post("/delete", h.HandleDelete)
}
