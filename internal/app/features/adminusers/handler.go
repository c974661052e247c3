// internal/app/features/adminusers/handler.go
package adminusers

import (
	"context"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	uierrors "github.com/gatelens/gatelens/internal/app/features/errors"
	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/gatelens/gatelens/internal/app/system/gates"
	"github.com/gatelens/gatelens/internal/app/system/timeouts"
	"github.com/gatelens/gatelens/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// pageSize rows per page in the user table.
const pageSize = 25

// Handler owns the proxy user management panel.
type Handler struct {
	Gateway *gateway.Client
	Audit   *audit.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

// NewHandler constructs an adminusers Handler.
func NewHandler(gw *gateway.Client, auditStore *audit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gateway: gw,
		Audit:   auditStore,
		Log:     logger,
		ErrLog:  errLog,
	}
}

type usersVM struct {
	viewdata.BaseVM
	Page       gateway.UserPage
	PrevPage   int
	NextPage   int
	RoleFilter string
	AllRoles   []string
	Invitation *gateway.Invitation
	Error      string
}

func (vm *usersVM) setPaging() {
	if vm.Page.Page > 1 {
		vm.PrevPage = vm.Page.Page - 1
	}
	if vm.Page.Page < vm.Page.TotalPages {
		vm.NextPage = vm.Page.Page + 1
	}
}

// ServeList displays one page of the proxy user table.
// GET /admin/users
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := strconv.Atoi(query.Get(r, "page"))
	if err != nil || page < 1 {
		page = 1
	}
	roleFilter := strings.TrimSpace(query.Get(r, "role"))
	if roleFilter != "" && !authz.ValidRole(roleFilter) {
		roleFilter = ""
	}

	userPage, err := h.Gateway.Users(ctx, roleFilter, page, pageSize)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load users failed", err, "Unable to load the user list from the proxy.", "/dashboard")
		return
	}

	vm := usersVM{
		BaseVM:     viewdata.NewBaseVM(r, "Users", "/dashboard"),
		Page:       userPage,
		RoleFilter: roleFilter,
		AllRoles:   authz.AllRoles,
	}
	vm.setPaging()
	templates.Render(w, r, "admin_users", vm)
}

// HandleUpdateRole changes one user's proxy role.
// POST /admin/users/role
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireProxyAdmin(w, r, "Only a proxy admin can change user roles.", "/admin/users")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse role form failed", err, "Invalid form data.", "/admin/users")
		return
	}

	userID := strings.TrimSpace(r.FormValue("user_id"))
	role := strings.TrimSpace(r.FormValue("user_role"))
	if userID == "" || !authz.ValidRole(role) {
		h.ErrLog.LogBadRequest(w, r, "invalid role update", nil, "Pick a valid role for the user.", "/admin/users")
		return
	}
	if userID == res.UserID {
		// Self-demotion locks the last admin out; the proxy allows it, we don't.
		h.ErrLog.LogBadRequest(w, r, "self role change refused", nil, "You cannot change your own role.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Gateway.UpdateUserRole(ctx, userID, role); err != nil {
		h.ErrLog.LogServerError(w, r, "update user role failed", err, "The proxy rejected the role change.", "/admin/users")
		return
	}

	h.audit(r, res, audit.EventUserRoleUpdated, userID, map[string]string{"new_role": role})
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// HandleInvite creates a user on the proxy and shows the one-time
// invitation link.
// POST /admin/users/invite
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireProxyAdmin(w, r, "Only a proxy admin can invite users.", "/admin/users")
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse invite form failed", err, "Invalid form data.", "/admin/users")
		return
	}

	email := strings.TrimSpace(r.FormValue("user_email"))
	role := strings.TrimSpace(r.FormValue("user_role"))
	if _, err := mail.ParseAddress(email); err != nil {
		h.renderWithError(w, r, "Enter a valid email address.")
		return
	}
	if !authz.ValidRole(role) {
		h.renderWithError(w, r, "Pick a valid role for the invitation.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	inv, err := h.Gateway.InviteUser(ctx, email, role)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "invite user failed", err, "The proxy could not create the invitation.", "/admin/users")
		return
	}

	h.audit(r, res, audit.EventUserInvited, email, map[string]string{"role": role})

	userPage, err := h.Gateway.Users(ctx, "", 1, pageSize)
	if err != nil {
		h.Log.Warn("reload users after invite failed", zap.Error(err))
	}
	vm := usersVM{
		BaseVM:     viewdata.NewBaseVM(r, "Users", "/dashboard"),
		Page:       userPage,
		AllRoles:   authz.AllRoles,
		Invitation: &inv,
	}
	vm.setPaging()
	templates.Render(w, r, "admin_users", vm)
}

func (h *Handler) renderWithError(w http.ResponseWriter, r *http.Request, msg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vm := usersVM{
		BaseVM:   viewdata.NewBaseVM(r, "Users", "/dashboard"),
		AllRoles: authz.AllRoles,
		Error:    msg,
	}
	if userPage, err := h.Gateway.Users(ctx, "", 1, pageSize); err == nil {
		vm.Page = userPage
	}
	templates.Render(w, r, "admin_users", vm)
}

func (h *Handler) audit(r *http.Request, res gates.Result, eventType, subject string, details map[string]string) {
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
		Details:   details,
	})
	if err != nil {
		h.Log.Warn("audit write failed", zap.String("event", eventType), zap.Error(err))
	}
}
