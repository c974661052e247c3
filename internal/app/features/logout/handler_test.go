package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatelens/gatelens/internal/app/features/logout"
	"github.com/gatelens/gatelens/internal/app/system/auth"
	"github.com/gatelens/gatelens/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "gatelens_test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return logout.NewHandler(sm, nil, zap.NewNop())
}

func TestServeLogout_RedirectsToHome(t *testing.T) {
	h := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/logout", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	h := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/logout", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "gatelens_test" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge = %d, want -1", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected the session cookie to be set for deletion")
	}
}

func TestServeLogout_HTMX_ReturnsHXRedirect(t *testing.T) {
	h := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/logout", testutil.AdminUser())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Errorf("HX-Redirect = %q, want /", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for HTMX", rec.Code)
	}
}
