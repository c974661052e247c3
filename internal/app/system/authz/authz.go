// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/gatelens/gatelens/internal/app/system/auth"
)

// Proxy roles mirror the role strings the gateway stores on user records.
const (
	RoleProxyAdmin         = "proxy_admin"
	RoleProxyAdminViewer   = "proxy_admin_viewer"
	RoleInternalUser       = "internal_user"
	RoleInternalUserViewer = "internal_user_viewer"
)

// AllRoles lists every role the console recognizes, in privilege order.
var AllRoles = []string{
	RoleProxyAdmin,
	RoleProxyAdminViewer,
	RoleInternalUser,
	RoleInternalUserViewer,
}

// UserCtx returns the user's role (lowercased), name, and ID, plus a found
// flag. If no user is present in context it returns "visitor", "", "", false,
// so callers can trust that ok=true means an authenticated user.
func UserCtx(r *http.Request) (role string, name string, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Name, user.ID, true
}

// IsProxyAdmin reports whether the current user holds the full admin role.
// Only proxy_admin may change settings; viewers are read-only.
func IsProxyAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleProxyAdmin
}

// IsAdminViewer reports whether the current user is specifically a read-only
// admin viewer (not a full admin).
func IsAdminViewer(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleProxyAdminViewer
}

// CanViewAdminPanels reports whether the current user may open the admin
// surfaces (SSO settings, allowed IPs, user management). Full admins and
// admin viewers both qualify; viewers see them read-only.
func CanViewAdminPanels(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == RoleProxyAdmin || role == RoleProxyAdminViewer)
}

// CanViewGlobalBreakdowns reports whether a role sees proxy-wide spend
// breakdowns (teams, tags, customers). Internal users only see their own
// usage, so those widgets are withheld from them. Takes a role string
// rather than a request because the dashboard decides widget sets per
// orchestrator, outside any request.
func CanViewGlobalBreakdowns(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	return role == RoleProxyAdmin || role == RoleProxyAdminViewer
}

// ValidRole reports whether role is one of the recognized proxy roles.
func ValidRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, known := range AllRoles {
		if role == known {
			return true
		}
	}
	return false
}
