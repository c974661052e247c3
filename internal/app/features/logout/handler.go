// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/app/system/auth"
	"github.com/gatelens/gatelens/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *audit.Store
}

func NewHandler(sessionMgr *auth.SessionManager, auditStore *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Audit:      auditStore,
	}
}

// ServeLogout handles GET /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && h.Audit != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
		err := h.Audit.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			ActorID:   u.ID,
			ActorName: u.Name,
			IP:        r.RemoteAddr,
			UserAgent: r.UserAgent(),
			Success:   true,
		})
		cancel()
		if err != nil {
			h.Log.Warn("audit write failed", zap.Error(err))
		}
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: clear session", zap.Error(err))
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
