package dashboard

import (
	"sync"
	"testing"
)

func TestTracker_StartsUnloaded(t *testing.T) {
	tr := NewTracker("summary", "activity")

	if tr.Complete() {
		t.Error("expected new tracker to be incomplete")
	}
	done, total := tr.Progress()
	if done != 0 || total != 2 {
		t.Errorf("Progress() = %d/%d, want 0/2", done, total)
	}
}

func TestTracker_MarkLoaded(t *testing.T) {
	tr := NewTracker("summary", "activity", "top_keys")

	tr.MarkLoaded("activity")

	if !tr.Loaded("activity") {
		t.Error("expected activity to be loaded")
	}
	if tr.Loaded("summary") {
		t.Error("expected summary to still be unloaded")
	}
	done, _ := tr.Progress()
	if done != 1 {
		t.Errorf("done = %d, want 1", done)
	}
}

func TestTracker_MarkLoadedIdempotent(t *testing.T) {
	tr := NewTracker("summary", "activity")

	tr.MarkLoaded("summary")
	tr.MarkLoaded("summary")
	tr.MarkLoaded("summary")

	done, total := tr.Progress()
	if done != 1 || total != 2 {
		t.Errorf("Progress() = %d/%d, want 1/2", done, total)
	}
}

func TestTracker_UnknownNameIgnored(t *testing.T) {
	tr := NewTracker("summary")

	tr.MarkLoaded("retired_widget")

	done, total := tr.Progress()
	if done != 0 || total != 1 {
		t.Errorf("Progress() = %d/%d, want 0/1", done, total)
	}
	if tr.Loaded("retired_widget") {
		t.Error("unknown widget must never report loaded")
	}
}

func TestTracker_Complete(t *testing.T) {
	tr := NewTracker("summary", "activity")

	tr.MarkLoaded("summary")
	if tr.Complete() {
		t.Error("expected incomplete with one widget pending")
	}

	tr.MarkLoaded("activity")
	if !tr.Complete() {
		t.Error("expected complete after all widgets loaded")
	}
}

func TestTracker_MarkAllLoaded(t *testing.T) {
	tr := NewTracker("summary", "activity", "teams")

	tr.MarkAllLoaded()

	if !tr.Complete() {
		t.Error("expected complete after MarkAllLoaded")
	}
}

func TestTracker_DuplicateNamesCollapse(t *testing.T) {
	tr := NewTracker("summary", "summary", "activity")

	_, total := tr.Progress()
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if got := tr.Names(); len(got) != 2 || got[0] != "summary" || got[1] != "activity" {
		t.Errorf("Names() = %v, want [summary activity]", got)
	}
}

func TestTracker_ConcurrentMarks(t *testing.T) {
	names := []string{"summary", "activity", "top_keys", "top_models", "teams"}
	tr := NewTracker(names...)

	var wg sync.WaitGroup
	for _, n := range names {
		for range 4 {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				tr.MarkLoaded(name)
			}(n)
		}
	}
	wg.Wait()

	if !tr.Complete() {
		t.Error("expected complete after concurrent marks")
	}
}
