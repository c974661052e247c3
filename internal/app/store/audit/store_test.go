package audit_test

import (
	"testing"
	"time"

	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/testutil"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	event := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   "user-1",
		ActorName: "Ada",
		IP:        "203.0.113.9",
		Success:   true,
	}

	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{ActorID: "user-1"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("EventType: got %q, want %q", events[0].EventType, audit.EventLoginSuccess)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Log to fill the timestamp")
	}
	if events[0].EventID == "" {
		t.Error("expected Log to assign an event ID")
	}
}

func TestStore_Query_ByCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, e := range []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLogout, ActorID: "user-2", Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventAllowedIPAdded, ActorID: "user-2", Subject: "198.51.100.4", Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventSSOConfigUpdated, ActorID: "user-2", Success: true},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	admin, err := store.Query(ctx, audit.QueryFilter{ActorID: "user-2", Category: audit.CategoryAdmin})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(admin) != 2 {
		t.Errorf("admin events: got %d, want 2", len(admin))
	}
}

func TestStore_Query_TimeRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   "user-3",
		Timestamp: time.Now().Add(-48 * time.Hour),
		Success:   true,
	}
	recent := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   "user-3",
		Success:   true,
	}
	if err := store.Log(ctx, old); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.Log(ctx, recent); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	since := time.Now().Add(-time.Hour)
	events, err := store.Query(ctx, audit.QueryFilter{ActorID: "user-3", StartTime: &since})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events in range, want 1", len(events))
	}
}

func TestStore_CountByFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for range 3 {
		e := audit.Event{
			Category:  audit.CategoryAdmin,
			EventType: audit.EventUserRoleUpdated,
			ActorID:   "user-4",
			Success:   true,
		}
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	count, err := store.CountByFilter(ctx, audit.QueryFilter{ActorID: "user-4", EventType: audit.EventUserRoleUpdated})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}
