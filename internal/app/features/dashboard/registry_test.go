package dashboard

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/system/authz"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) (*Registry, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	client := gateway.New(srv.URL, "sk-master", zap.NewNop())
	return NewRegistry(client, zap.NewNop()), backend
}

func TestRegistry_SameUserSameOrchestrator(t *testing.T) {
	reg, _ := newTestRegistry(t)

	a := reg.For("user-1", authz.RoleProxyAdmin)
	b := reg.For("user-1", authz.RoleProxyAdmin)

	if a != b {
		t.Error("expected the same orchestrator for repeat visits")
	}
}

func TestRegistry_DistinctUsersIsolated(t *testing.T) {
	reg, _ := newTestRegistry(t)

	a := reg.For("user-1", authz.RoleProxyAdmin)
	b := reg.For("user-2", authz.RoleProxyAdmin)

	if a == b {
		t.Error("expected per-user orchestrators")
	}
}

func TestRegistry_RoleChangeReplacesOrchestrator(t *testing.T) {
	reg, _ := newTestRegistry(t)

	before := reg.For("user-1", authz.RoleInternalUser)
	after := reg.For("user-1", authz.RoleProxyAdmin)

	if before == after {
		t.Error("expected a fresh orchestrator after a role change")
	}
}

func TestRegistry_SweepEvictsIdle(t *testing.T) {
	reg, _ := newTestRegistry(t)
	reg.idleThreshold = 10 * time.Millisecond

	orch := reg.For("user-1", authz.RoleProxyAdmin)
	time.Sleep(20 * time.Millisecond)
	reg.sweep()

	if reg.For("user-1", authz.RoleProxyAdmin) == orch {
		t.Error("expected idle orchestrator to be evicted")
	}
}

func TestRegistry_SweepKeepsActive(t *testing.T) {
	reg, _ := newTestRegistry(t)
	reg.idleThreshold = time.Hour

	orch := reg.For("user-1", authz.RoleProxyAdmin)
	reg.sweep()

	if reg.For("user-1", authz.RoleProxyAdmin) != orch {
		t.Error("expected active orchestrator to survive the sweep")
	}
}

func TestRegistry_StopShutsDownAll(t *testing.T) {
	reg, _ := newTestRegistry(t)
	reg.Start()

	first := reg.For("user-1", authz.RoleProxyAdmin)
	first.Load(7)

	reg.Stop()

	if reg.For("user-1", authz.RoleProxyAdmin) == first {
		t.Error("expected registry to be empty after Stop")
	}
}
