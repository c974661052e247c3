package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gatelens/gatelens/internal/app/system/auth"
	"github.com/gatelens/gatelens/internal/app/system/authz"
)

func TestIsProxyAdmin_True(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "u-1", Role: "proxy_admin"})

	if !authz.IsProxyAdmin(req) {
		t.Error("expected IsProxyAdmin to return true for proxy_admin user")
	}
}

func TestIsProxyAdmin_False_Viewer(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "u-1", Role: "proxy_admin_viewer"})

	if authz.IsProxyAdmin(req) {
		t.Error("expected IsProxyAdmin to return false for viewer")
	}
}

func TestIsProxyAdmin_False_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	if authz.IsProxyAdmin(req) {
		t.Error("expected IsProxyAdmin to return false when no user")
	}
}

func TestCanViewAdminPanels(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{"proxy_admin", true},
		{"proxy_admin_viewer", true},
		{"internal_user", false},
		{"internal_user_viewer", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/test", nil)
		req = auth.WithTestUser(req, &auth.SessionUser{ID: "u-1", Role: tc.role})
		if got := authz.CanViewAdminPanels(req); got != tc.want {
			t.Errorf("CanViewAdminPanels(%s) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestCanViewGlobalBreakdowns(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{"proxy_admin", true},
		{"Proxy_Admin_Viewer", true},
		{"internal_user", false},
		{"internal_user_viewer", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := authz.CanViewGlobalBreakdowns(tc.role); got != tc.want {
			t.Errorf("CanViewGlobalBreakdowns(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, name, id, ok := authz.UserCtx(req)
	if ok {
		t.Fatal("expected ok=false with no user")
	}
	if role != "visitor" || name != "" || id != "" {
		t.Errorf("unexpected zero values: role=%q name=%q id=%q", role, name, id)
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "u-9", Name: "Ada", Role: "PROXY_ADMIN"})

	role, name, id, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "proxy_admin" {
		t.Errorf("expected role 'proxy_admin', got %q", role)
	}
	if name != "Ada" || id != "u-9" {
		t.Errorf("unexpected name/id: %q %q", name, id)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range authz.AllRoles {
		if !authz.ValidRole(role) {
			t.Errorf("expected %q to be valid", role)
		}
	}
	if authz.ValidRole("superadmin") {
		t.Error("expected unknown role to be invalid")
	}
	if authz.ValidRole("") {
		t.Error("expected empty role to be invalid")
	}
}

func TestHasAnyRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "u-1", Role: "internal_user"})

	if !authz.HasAnyRole(req, "proxy_admin", "internal_user") {
		t.Error("expected HasAnyRole to match internal_user")
	}
	if authz.HasAnyRole(req, "proxy_admin") {
		t.Error("expected HasAnyRole to reject non-matching role")
	}
}
