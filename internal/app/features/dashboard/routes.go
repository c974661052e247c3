// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/gatelens/gatelens/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point the
// top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Every dashboard surface requires a signed-in user; role decides the
	// widget set inside the orchestrator, not the router.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
		pr.Get("/banner", h.ServeBanner)
		pr.Get("/widget/{name}", h.ServeWidget)
		pr.Get("/progress", h.ServeProgress)
		pr.Get("/live", h.ServeLive)
	})

	return r
}
