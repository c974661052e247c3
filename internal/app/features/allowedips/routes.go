// internal/app/features/allowedips/routes.go
package allowedips

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the allowed-IP routes on the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAdd)
	r.Post("/delete", h.HandleDelete)
}
