// internal/app/features/dashboard/snapshot.go
package dashboard

import (
	"html/template"
	"sync"
	"time"

	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/system/chartdata"
)

// Widget names, in display order. The last three are proxy-wide breakdowns
// withheld from internal users.
const (
	WidgetSummary   = "summary"
	WidgetActivity  = "activity"
	WidgetTopKeys   = "top_keys"
	WidgetTopModels = "top_models"
	WidgetTeams     = "teams"
	WidgetTags      = "tags"
	WidgetCustomers = "customers"
)

// Snapshot holds one generation of dashboard data for one user. Fetch
// goroutines from a superseded load keep writing into their own abandoned
// snapshot, so readers of the current one never see stale values.
type Snapshot struct {
	mu sync.RWMutex

	days      int
	createdAt time.Time
	tracker   *Tracker

	summary   *gateway.DashboardSummary
	activity  []chartdata.Row
	topKeys   []gateway.KeySpend
	topModels []gateway.ModelSpend
	teams     *gateway.TeamsSummary
	tags      []gateway.TagSpend
	customers []gateway.CustomerSpend

	// Per-widget fetch failures, keyed by widget name.
	errs map[string]string

	// Guard state: when the gateway disables expensive queries the whole
	// dashboard is replaced by a notice.
	limitReached bool
	notice       string

	banner template.HTML

	liveSpend   float64
	liveHasVal  bool
	liveVersion uint64
	liveState   gateway.StreamState
}

func newSnapshot(days int, widgets []string) *Snapshot {
	return &Snapshot{
		days:      days,
		createdAt: time.Now(),
		tracker:   NewTracker(widgets...),
		errs:      make(map[string]string),
		liveState: gateway.StreamDisconnected,
	}
}

// Days returns the range this snapshot was loaded for.
func (s *Snapshot) Days() int { return s.days }

// CreatedAt returns when this snapshot's load began.
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }

// Tracker exposes the widget loading tracker.
func (s *Snapshot) Tracker() *Tracker { return s.tracker }

func (s *Snapshot) setSummary(v *gateway.DashboardSummary) {
	s.mu.Lock()
	s.summary = v
	s.mu.Unlock()
}

func (s *Snapshot) setActivity(rows []chartdata.Row) {
	s.mu.Lock()
	s.activity = rows
	s.mu.Unlock()
}

func (s *Snapshot) setTopKeys(v []gateway.KeySpend) {
	s.mu.Lock()
	s.topKeys = v
	s.mu.Unlock()
}

func (s *Snapshot) setTopModels(v []gateway.ModelSpend) {
	s.mu.Lock()
	s.topModels = v
	s.mu.Unlock()
}

func (s *Snapshot) setTeams(v *gateway.TeamsSummary) {
	s.mu.Lock()
	s.teams = v
	s.mu.Unlock()
}

func (s *Snapshot) setTags(v []gateway.TagSpend) {
	s.mu.Lock()
	s.tags = v
	s.mu.Unlock()
}

func (s *Snapshot) setCustomers(v []gateway.CustomerSpend) {
	s.mu.Lock()
	s.customers = v
	s.mu.Unlock()
}

func (s *Snapshot) setError(widget string, err error) {
	s.mu.Lock()
	s.errs[widget] = err.Error()
	s.mu.Unlock()
}

// WidgetError returns the recorded fetch error for a widget, if any.
func (s *Snapshot) WidgetError(widget string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.errs[widget]
	return msg, ok
}

func (s *Snapshot) setGuard(notice string) {
	s.mu.Lock()
	s.limitReached = true
	s.notice = notice
	s.mu.Unlock()
	s.tracker.MarkAllLoaded()
}

// LimitReached reports whether the gateway refused expensive queries, along
// with the operator-facing notice.
func (s *Snapshot) LimitReached() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limitReached, s.notice
}

func (s *Snapshot) setBanner(b template.HTML) {
	s.mu.Lock()
	s.banner = b
	s.mu.Unlock()
}

// Banner returns the sanitized gateway alert banner, empty when none is set.
func (s *Snapshot) Banner() template.HTML {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banner
}

// SetLiveSpend records a spend figure pushed over the live stream and bumps
// the version so relay subscribers notice the change.
func (s *Snapshot) SetLiveSpend(v float64) {
	s.mu.Lock()
	s.liveSpend = v
	s.liveHasVal = true
	s.liveVersion++
	s.mu.Unlock()
}

// LiveSpend returns the latest streamed spend, whether one has arrived, and
// the update version.
func (s *Snapshot) LiveSpend() (val float64, ok bool, version uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveSpend, s.liveHasVal, s.liveVersion
}

func (s *Snapshot) setLiveState(st gateway.StreamState) {
	s.mu.Lock()
	s.liveState = st
	s.mu.Unlock()
}

// LiveState returns the spend stream connection state for this snapshot.
func (s *Snapshot) LiveState() gateway.StreamState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liveState
}

// View is an immutable copy of the snapshot's data for template rendering.
type View struct {
	Days         int
	Summary      *gateway.DashboardSummary
	Activity     []chartdata.Row
	TopKeys      []gateway.KeySpend
	TopModels    []gateway.ModelSpend
	Teams        *gateway.TeamsSummary
	Tags         []gateway.TagSpend
	Customers    []gateway.CustomerSpend
	Errors       map[string]string
	LimitReached bool
	Notice       string
	Banner       template.HTML
	LiveSpend    float64
	HasLiveSpend bool
	LiveState    string
}

// View copies the current data out under the read lock.
func (s *Snapshot) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	errs := make(map[string]string, len(s.errs))
	for k, v := range s.errs {
		errs[k] = v
	}

	return View{
		Days:         s.days,
		Summary:      s.summary,
		Activity:     s.activity,
		TopKeys:      s.topKeys,
		TopModels:    s.topModels,
		Teams:        s.teams,
		Tags:         s.tags,
		Customers:    s.customers,
		Errors:       errs,
		LimitReached: s.limitReached,
		Notice:       s.notice,
		Banner:       s.banner,
		LiveSpend:    s.liveSpend,
		HasLiveSpend: s.liveHasVal,
		LiveState:    s.liveState.String(),
	}
}
