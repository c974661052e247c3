package ssocache_test

import (
	"testing"

	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/store/ssocache"
	"github.com/gatelens/gatelens/internal/testutil"
)

func TestStore_Get_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ssocache.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _, err := store.Get(ctx)
	if err != ssocache.ErrNotCached {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestStore_PutThenGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ssocache.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := gateway.SSOConfig{
		GoogleClientID: "client-123.apps.googleusercontent.com",
		ProxyBaseURL:   "https://proxy.example.com",
	}
	if err := store.Put(ctx, cfg, "user-1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, cachedAt, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.GoogleClientID != cfg.GoogleClientID {
		t.Errorf("GoogleClientID: got %q, want %q", got.GoogleClientID, cfg.GoogleClientID)
	}
	if cachedAt.IsZero() {
		t.Error("expected a cache timestamp")
	}
}

func TestStore_Put_Overwrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ssocache.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Put(ctx, gateway.SSOConfig{GoogleClientID: "old"}, "user-1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, gateway.SSOConfig{GoogleClientID: "new"}, "user-2"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.GoogleClientID != "new" {
		t.Errorf("GoogleClientID: got %q, want %q", got.GoogleClientID, "new")
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := ssocache.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Put(ctx, gateway.SSOConfig{GoogleClientID: "x"}, "user-1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, _, err := store.Get(ctx)
	if err != ssocache.ErrNotCached {
		t.Fatalf("expected ErrNotCached after delete, got %v", err)
	}
}
