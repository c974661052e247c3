package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatelens/gatelens/internal/app/features/health"
	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_AllHealthy(t *testing.T) {
	db := testutil.SetupTestDB(t)

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health/liveliness" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`"I'm alive!"`))
	}))
	t.Cleanup(proxy.Close)

	h := health.NewHandler(db.Client(), gateway.New(proxy.URL, "sk-master", zap.NewNop()), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Proxy    string `json:"proxy"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Database != "connected" || resp.Proxy != "reachable" {
		t.Errorf("response = %+v", resp)
	}
}

func TestServe_ProxyDownStillOK(t *testing.T) {
	db := testutil.SetupTestDB(t)

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(proxy.Close)

	h := health.NewHandler(db.Client(), gateway.New(proxy.URL, "sk-master", zap.NewNop()), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even with the proxy down", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Proxy  string `json:"proxy"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Proxy != "unreachable" {
		t.Errorf("response = %+v", resp)
	}
}
