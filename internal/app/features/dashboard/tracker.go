// internal/app/features/dashboard/tracker.go
package dashboard

import "sync"

// Tracker records which dashboard widgets have finished loading for one
// snapshot. A widget counts as loaded once its fetch settles, success or
// failure, so the progress indicator always converges.
type Tracker struct {
	mu     sync.Mutex
	order  []string
	loaded map[string]bool
}

// NewTracker starts tracking the given widget names, all unloaded.
// Duplicate names collapse to one entry.
func NewTracker(names ...string) *Tracker {
	t := &Tracker{loaded: make(map[string]bool, len(names))}
	for _, n := range names {
		if _, seen := t.loaded[n]; seen {
			continue
		}
		t.order = append(t.order, n)
		t.loaded[n] = false
	}
	return t
}

// MarkLoaded flags a widget as loaded. Idempotent; unknown names are ignored
// so a retired widget name can never wedge the progress count.
func (t *Tracker) MarkLoaded(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, known := t.loaded[name]; known {
		t.loaded[name] = true
	}
}

// MarkAllLoaded flags every widget as loaded at once. Used when the gateway
// reports that expensive queries are disabled and nothing will be fetched.
func (t *Tracker) MarkAllLoaded() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name := range t.loaded {
		t.loaded[name] = true
	}
}

// Loaded reports whether the named widget has finished loading.
func (t *Tracker) Loaded(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded[name]
}

// Progress returns how many widgets are loaded out of the total tracked.
func (t *Tracker) Progress() (done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, v := range t.loaded {
		if v {
			done++
		}
	}
	return done, len(t.loaded)
}

// Complete reports whether every tracked widget has loaded.
func (t *Tracker) Complete() bool {
	done, total := t.Progress()
	return done == total
}

// Names returns the tracked widget names in registration order.
func (t *Tracker) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
