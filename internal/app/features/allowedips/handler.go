// internal/app/features/allowedips/handler.go
package allowedips

import (
	"context"
	"net"
	"net/http"
	"strings"

	uierrors "github.com/gatelens/gatelens/internal/app/features/errors"
	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/app/system/gates"
	"github.com/gatelens/gatelens/internal/app/system/timeouts"
	"github.com/gatelens/gatelens/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler owns the allowed-IP admin panel. The list lives on the proxy; the
// console is a thin management surface over it.
type Handler struct {
	Gateway *gateway.Client
	Audit   *audit.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

// NewHandler constructs an allowedips Handler.
func NewHandler(gw *gateway.Client, auditStore *audit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gateway: gw,
		Audit:   auditStore,
		Log:     logger,
		ErrLog:  errLog,
	}
}

type allowedIPsVM struct {
	viewdata.BaseVM
	IPs             []string
	PremiumRequired bool
	Error           string
}

// ServeList displays the allowed-IP list.
// GET /admin/allowed-ips
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := allowedIPsVM{BaseVM: viewdata.NewBaseVM(r, "Allowed IPs", "/dashboard")}

	ips, err := h.Gateway.AllowedIPs(ctx)
	switch {
	case err == nil:
		vm.IPs = ips
	case gateway.IsPremiumRequired(err):
		vm.PremiumRequired = true
	default:
		h.ErrLog.LogServerError(w, r, "load allowed ips failed", err, "Unable to load the allowed-IP list from the proxy.", "/dashboard")
		return
	}

	templates.Render(w, r, "allowed_ips", vm)
}

// HandleAdd appends an address to the allowed-IP list.
// POST /admin/allowed-ips
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireProxyAdmin(w, r, "Only a proxy admin can change the allowed-IP list.", "/admin/allowed-ips")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse allowed-ip form failed", err, "Invalid form data.", "/admin/allowed-ips")
		return
	}

	ip := strings.TrimSpace(r.FormValue("ip"))
	if !validAddress(ip) {
		h.renderWithError(w, r, "Enter a valid IP address or CIDR range.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Gateway.AddAllowedIP(ctx, ip); err != nil {
		if gateway.IsPremiumRequired(err) {
			h.renderWithError(w, r, "IP restrictions require an enterprise license on the proxy.")
			return
		}
		h.ErrLog.LogServerError(w, r, "add allowed ip failed", err, "The proxy rejected the new address.", "/admin/allowed-ips")
		return
	}

	h.audit(r, res, audit.EventAllowedIPAdded, ip)
	http.Redirect(w, r, "/admin/allowed-ips", http.StatusSeeOther)
}

// HandleDelete removes an address from the allowed-IP list.
// POST /admin/allowed-ips/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireProxyAdmin(w, r, "Only a proxy admin can change the allowed-IP list.", "/admin/allowed-ips")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse allowed-ip form failed", err, "Invalid form data.", "/admin/allowed-ips")
		return
	}

	ip := strings.TrimSpace(r.FormValue("ip"))
	if ip == "" {
		h.renderWithError(w, r, "No address given.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Gateway.DeleteAllowedIP(ctx, ip); err != nil {
		h.ErrLog.LogServerError(w, r, "delete allowed ip failed", err, "The proxy refused to remove the address.", "/admin/allowed-ips")
		return
	}

	h.audit(r, res, audit.EventAllowedIPDeleted, ip)
	http.Redirect(w, r, "/admin/allowed-ips", http.StatusSeeOther)
}

// validAddress accepts plain IPs and CIDR ranges, v4 or v6.
func validAddress(s string) bool {
	if s == "" {
		return false
	}
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}

func (h *Handler) renderWithError(w http.ResponseWriter, r *http.Request, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vm := allowedIPsVM{
		BaseVM: viewdata.NewBaseVM(r, "Allowed IPs", "/dashboard"),
		Error:  msg,
	}
	if ips, err := h.Gateway.AllowedIPs(ctx); err == nil {
		vm.IPs = ips
	}
	templates.Render(w, r, "allowed_ips", vm)
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
