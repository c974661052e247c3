// internal/app/features/ssoconfig/handler.go
package ssoconfig

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/gatelens/gatelens/internal/app/features/errors"
	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/app/store/ssocache"
	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/gatelens/gatelens/internal/app/system/gates"
	"github.com/gatelens/gatelens/internal/app/system/timeouts"
	"github.com/gatelens/gatelens/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler owns the SSO settings admin panel.
// Cache and Audit may be nil when Mongo is not wired; the panel then runs
// without the stale-read fallback and the audit trail.
type Handler struct {
	Gateway *gateway.Client
	Cache   *ssocache.Store
	Audit   *audit.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

// NewHandler constructs an ssoconfig Handler.
func NewHandler(gw *gateway.Client, cache *ssocache.Store, auditStore *audit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gateway: gw,
		Cache:   cache,
		Audit:   auditStore,
		Log:     logger,
		ErrLog:  errLog,
	}
}

type ssoVM struct {
	viewdata.BaseVM
	Config          gateway.SSOConfig
	Configured      bool
	PremiumRequired bool
	Stale           bool
	CachedAt        string
	Error           string
}

// ServeSettings displays the SSO configuration form.
// GET /admin/sso
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := ssoVM{BaseVM: viewdata.NewBaseVM(r, "SSO Settings", "/dashboard")}

	cfg, err := h.Gateway.SSOConfig(ctx)
	switch {
	case err == nil:
		vm.Config = cfg
		vm.Configured = cfg.Configured()
		if h.Cache != nil {
			_, _, userID, _ := authz.UserCtx(r)
			if cerr := h.Cache.Put(ctx, cfg, userID); cerr != nil {
				h.Log.Warn("sso config cache write failed", zap.Error(cerr))
			}
		}
	case gateway.IsPremiumRequired(err):
		vm.PremiumRequired = true
	default:
		// Gateway unreachable: show the last cached copy if we have one.
		if h.Cache != nil {
			if cached, cachedAt, cerr := h.Cache.Get(ctx); cerr == nil {
				h.Log.Warn("serving cached sso config, gateway read failed", zap.Error(err))
				vm.Config = cached
				vm.Configured = cached.Configured()
				vm.Stale = true
				vm.CachedAt = cachedAt.Format(time.RFC822)
				break
			}
		}
		h.ErrLog.LogServerError(w, r, "load sso config failed", err, "Unable to load SSO settings from the proxy.", "/dashboard")
		return
	}

	templates.Render(w, r, "sso_settings", vm)
}

// HandleUpdate processes the SSO configuration form.
// POST /admin/sso
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireProxyAdmin(w, r, "Only a proxy admin can change SSO settings.", "/admin/sso")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse sso form failed", err, "Invalid form data.", "/admin/sso")
		return
	}

	cfg := gateway.SSOConfig{
		GoogleClientID:               strings.TrimSpace(r.FormValue("google_client_id")),
		GoogleClientSecret:           strings.TrimSpace(r.FormValue("google_client_secret")),
		MicrosoftClientID:            strings.TrimSpace(r.FormValue("microsoft_client_id")),
		MicrosoftClientSecret:        strings.TrimSpace(r.FormValue("microsoft_client_secret")),
		MicrosoftTenant:              strings.TrimSpace(r.FormValue("microsoft_tenant")),
		GenericClientID:              strings.TrimSpace(r.FormValue("generic_client_id")),
		GenericClientSecret:          strings.TrimSpace(r.FormValue("generic_client_secret")),
		GenericAuthorizationEndpoint: strings.TrimSpace(r.FormValue("generic_authorization_endpoint")),
		GenericTokenEndpoint:         strings.TrimSpace(r.FormValue("generic_token_endpoint")),
		GenericUserinfoEndpoint:      strings.TrimSpace(r.FormValue("generic_userinfo_endpoint")),
		ProxyBaseURL:                 strings.TrimSpace(r.FormValue("proxy_base_url")),
	}

	if !cfg.Configured() {
		h.renderWithError(w, r, "Fill in at least one provider's client ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Gateway.UpdateSSOConfig(ctx, cfg); err != nil {
		if gateway.IsPremiumRequired(err) {
			h.renderWithError(w, r, "SSO configuration requires an enterprise license on the proxy.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update sso config failed", err, "The proxy rejected the SSO settings.", "/admin/sso")
		return
	}

	h.audit(r, res, audit.EventSSOConfigUpdated, "")
	http.Redirect(w, r, "/admin/sso", http.StatusSeeOther)
}

// HandleDelete clears the SSO configuration.
// POST /admin/sso/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireProxyAdmin(w, r, "Only a proxy admin can delete SSO settings.", "/admin/sso")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Gateway.DeleteSSOConfig(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "delete sso config failed", err, "The proxy refused to delete the SSO settings.", "/admin/sso")
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Delete(ctx); err != nil {
			h.Log.Warn("sso config cache delete failed", zap.Error(err))
		}
	}

	h.audit(r, res, audit.EventSSOConfigDeleted, "")
	http.Redirect(w, r, "/admin/sso", http.StatusSeeOther)
}

func (h *Handler) renderWithError(w http.ResponseWriter, r *http.Request, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vm := ssoVM{
		BaseVM: viewdata.NewBaseVM(r, "SSO Settings", "/dashboard"),
		Error:  msg,
	}
	if cfg, err := h.Gateway.SSOConfig(ctx); err == nil {
		vm.Config = cfg
		vm.Configured = cfg.Configured()
	}
	templates.Render(w, r, "sso_settings", vm)
}

func (h *Handler) audit(r *http.Request, res gates.Result, eventType, subject string) {
	if h.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	err := h.Audit.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   res.UserID,
		ActorName: res.Name,
		Subject:   subject,
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Success:   true,
	})
	if err != nil {
		h.Log.Warn("audit write failed", zap.String("event", eventType), zap.Error(err))
	}
}
