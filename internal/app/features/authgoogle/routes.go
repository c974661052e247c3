// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the Google OAuth routes to the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
}
