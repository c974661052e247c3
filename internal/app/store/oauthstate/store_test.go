package oauthstate_test

import (
	"testing"
	"time"

	"github.com/gatelens/gatelens/internal/app/store/oauthstate"
	"github.com/gatelens/gatelens/internal/testutil"
)

func TestSaveAndValidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expires := time.Now().UTC().Add(10 * time.Minute)
	if err := store.Save(ctx, "state-abc", "/dashboard?days=7", expires); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ret, valid, err := store.Validate(ctx, "state-abc")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !valid {
		t.Fatal("expected a fresh state to validate")
	}
	if ret != "/dashboard?days=7" {
		t.Errorf("return URL = %q, want %q", ret, "/dashboard?days=7")
	}
}

func TestValidate_OneTimeUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expires := time.Now().UTC().Add(10 * time.Minute)
	if err := store.Save(ctx, "state-once", "", expires); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, valid, _ := store.Validate(ctx, "state-once"); !valid {
		t.Fatal("first validation should succeed")
	}
	if _, valid, _ := store.Validate(ctx, "state-once"); valid {
		t.Error("second validation must fail, state is one-time use")
	}
}

func TestValidate_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expired := time.Now().UTC().Add(-time.Minute)
	if err := store.Save(ctx, "state-old", "", expired); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, valid, _ := store.Validate(ctx, "state-old"); valid {
		t.Error("expired state must not validate")
	}
}

func TestValidate_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, valid, err := store.Validate(ctx, "never-saved")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if valid {
		t.Error("unknown state must not validate")
	}
}

func TestCleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.Save(ctx, "live", "", time.Now().UTC().Add(10*time.Minute))
	store.Save(ctx, "dead-1", "", time.Now().UTC().Add(-time.Minute))
	store.Save(ctx, "dead-2", "", time.Now().UTC().Add(-time.Hour))

	n, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}

	if _, valid, _ := store.Validate(ctx, "live"); !valid {
		t.Error("live state should survive cleanup")
	}
}
