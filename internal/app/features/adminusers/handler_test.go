package adminusers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gatelens/gatelens/internal/app/features/adminusers"
	uierrors "github.com/gatelens/gatelens/internal/app/features/errors"
	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/testutil"
	"go.uber.org/zap"
)

type fakeProxy struct {
	mu         sync.Mutex
	hits       map[string]int
	lastUpdate map[string]string
	lastInvite map[string]string
}

func (p *fakeProxy) count(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func (p *fakeProxy) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.hits[r.URL.Path]++
		p.mu.Unlock()

		switch r.URL.Path {
		case "/user/get_users":
			json.NewEncoder(w).Encode(map[string]any{
				"users": []map[string]any{
					{"user_id": "u-1", "user_email": "alice@example.com", "user_role": "proxy_admin", "spend": 12.5},
					{"user_id": "u-2", "user_email": "bob@example.com", "user_role": "internal_user", "spend": 0.4},
				},
				"total": 2, "page": 1, "page_size": 25, "total_pages": 1,
			})
		case "/user/update":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			p.mu.Lock()
			p.lastUpdate = body
			p.mu.Unlock()
			w.Write([]byte(`{}`))
		case "/user/new":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			p.mu.Lock()
			p.lastInvite = body
			p.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]string{"user_id": "u-new"})
		case "/invitation/new":
			json.NewEncoder(w).Encode(map[string]string{
				"id": "inv-1", "user_id": "u-new",
				"invitation_link": "https://proxy.example.com/ui?invitation_id=inv-1",
			})
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestHandler(t *testing.T) (*adminusers.Handler, *fakeProxy) {
	t.Helper()
	proxy := &fakeProxy{hits: map[string]int{}}
	srv := httptest.NewServer(proxy.handler())
	t.Cleanup(srv.Close)

	client := gateway.New(srv.URL, "sk-master", zap.NewNop())
	h := adminusers.NewHandler(client, nil, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return h, proxy
}

func formRequest(target string, form url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestServeList_ReadsGateway(t *testing.T) {
	h, proxy := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/admin/users", testutil.AdminUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.ServeList(rec, req)
	}()

	if proxy.count("/user/get_users") != 1 {
		t.Errorf("gateway reads = %d, want 1", proxy.count("/user/get_users"))
	}
}

func TestServeList_InvalidRoleFilterDropped(t *testing.T) {
	h, proxy := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/admin/users?role=superuser", testutil.AdminUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.ServeList(rec, req)
	}()

	if proxy.count("/user/get_users") != 1 {
		t.Fatalf("gateway reads = %d, want 1", proxy.count("/user/get_users"))
	}
}

func TestHandleUpdateRole_Valid(t *testing.T) {
	h, proxy := newTestHandler(t)

	form := url.Values{}
	form.Set("user_id", "u-2")
	form.Set("user_role", "internal_user_viewer")
	req := formRequest("/admin/users/role", form, testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.HandleUpdateRole(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	proxy.mu.Lock()
	got := proxy.lastUpdate
	proxy.mu.Unlock()
	if got["user_id"] != "u-2" || got["user_role"] != "internal_user_viewer" {
		t.Errorf("update body = %v", got)
	}
}

func TestHandleUpdateRole_InvalidRoleRejected(t *testing.T) {
	h, proxy := newTestHandler(t)

	form := url.Values{}
	form.Set("user_id", "u-2")
	form.Set("user_role", "superuser")
	req := formRequest("/admin/users/role", form, testutil.AdminUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.HandleUpdateRole(rec, req)
	}()

	if proxy.count("/user/update") != 0 {
		t.Error("invalid role must not reach the gateway")
	}
}

func TestHandleUpdateRole_SelfChangeRefused(t *testing.T) {
	h, proxy := newTestHandler(t)

	admin := testutil.AdminUser()
	form := url.Values{}
	form.Set("user_id", admin.ID)
	form.Set("user_role", "internal_user")
	req := formRequest("/admin/users/role", form, admin)
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.HandleUpdateRole(rec, req)
	}()

	if proxy.count("/user/update") != 0 {
		t.Error("self role change must not reach the gateway")
	}
}

func TestHandleUpdateRole_ViewerRejected(t *testing.T) {
	h, proxy := newTestHandler(t)

	form := url.Values{}
	form.Set("user_id", "u-2")
	form.Set("user_role", "internal_user")
	req := formRequest("/admin/users/role", form, testutil.AdminViewerUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.HandleUpdateRole(rec, req)
	}()

	if proxy.count("/user/update") != 0 {
		t.Error("viewer must not reach the gateway update endpoint")
	}
}

func TestHandleInvite_CreatesUserAndInvitation(t *testing.T) {
	h, proxy := newTestHandler(t)

	form := url.Values{}
	form.Set("user_email", "carol@example.com")
	form.Set("user_role", "internal_user")
	req := formRequest("/admin/users/invite", form, testutil.AdminUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.HandleInvite(rec, req)
	}()

	if proxy.count("/user/new") != 1 || proxy.count("/invitation/new") != 1 {
		t.Fatalf("new=%d invitation=%d, want 1 and 1",
			proxy.count("/user/new"), proxy.count("/invitation/new"))
	}
	proxy.mu.Lock()
	got := proxy.lastInvite
	proxy.mu.Unlock()
	if got["user_email"] != "carol@example.com" || got["user_role"] != "internal_user" {
		t.Errorf("invite body = %v", got)
	}
}

func TestHandleInvite_BadEmailRejected(t *testing.T) {
	h, proxy := newTestHandler(t)

	form := url.Values{}
	form.Set("user_email", "not-an-email")
	form.Set("user_role", "internal_user")
	req := formRequest("/admin/users/invite", form, testutil.AdminUser())
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.HandleInvite(rec, req)
	}()

	if proxy.count("/user/new") != 0 {
		t.Error("bad email must not reach the gateway")
	}
}
