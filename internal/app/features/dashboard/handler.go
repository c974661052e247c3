// internal/app/features/dashboard/handler.go
package dashboard

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/gatelens/gatelens/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultDays is the date range shown when none is picked.
const DefaultDays = 30

// allowedDays are the ranges the picker offers. Anything else falls back to
// DefaultDays.
var allowedDays = map[int]bool{7: true, 14: true, 30: true, 90: true}

type Handler struct {
	Registry *Registry
	Log      *zap.Logger
}

func NewHandler(reg *Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Registry: reg,
		Log:      logger,
	}
}

func parseDays(r *http.Request) int {
	raw := query.Get(r, "days")
	if raw == "" {
		return DefaultDays
	}
	days, err := strconv.Atoi(raw)
	if err != nil || !allowedDays[days] {
		return DefaultDays
	}
	return days
}

// orchestrator resolves the signed-in user's orchestrator. Routes are behind
// RequireSignedIn, so a missing user means broken middleware ordering.
func (h *Handler) orchestrator(r *http.Request) (*Orchestrator, bool) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return nil, false
	}
	return h.Registry.For(userID, role), true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard – usage page                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDashboard renders the page shell and kicks off a fresh load. Widgets
// arrive via htmx polling as their fetches settle.
//
// The gateway banner arrives with the settings fetch, after the shell has
// already rendered, so the shell shows the previous load's banner and polls
// /dashboard/banner for the fresh one.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	var carried template.HTML
	if prev := orch.Snapshot(); prev != nil {
		carried = prev.Banner()
	}

	days := parseDays(r)
	snap := orch.Load(days)

	data := struct {
		viewdata.BaseVM
		Days    int
		Widgets []string
	}{
		BaseVM:  viewdata.NewBaseVM(r, "Usage", "/").WithBanner(carried),
		Days:    days,
		Widgets: snap.Tracker().Names(),
	}

	templates.Render(w, r, "dashboard", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/banner – gateway alert banner partial                        |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeBanner renders the sanitized gateway alert banner once the settings
// fetch has delivered it. Until the load settles the partial keeps polling;
// a settled load with no banner clears whatever the shell carried over.
func (h *Handler) ServeBanner(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	data := struct {
		Banner   template.HTML
		Complete bool
	}{}
	if snap := orch.Snapshot(); snap != nil {
		done, total := snap.Tracker().Progress()
		data.Banner = snap.Banner()
		data.Complete = done == total
	}

	templates.Render(w, r, "dashboard_banner", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/widget/{name} – htmx widget partial                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeWidget renders one widget from the current snapshot. While the fetch
// is still in flight it renders the pending partial, which keeps polling.
func (h *Handler) ServeWidget(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	name := chi.URLParam(r, "name")
	snap := orch.Snapshot()
	if snap == nil || !contains(snap.Tracker().Names(), name) {
		http.NotFound(w, r)
		return
	}

	if limited, notice := snap.LimitReached(); limited {
		templates.Render(w, r, "dashboard_limit", struct {
			Widget string
			Notice string
		}{Widget: name, Notice: notice})
		return
	}

	if !snap.Tracker().Loaded(name) {
		templates.Render(w, r, "dashboard_widget_pending", struct {
			Widget string
			Days   int
		}{Widget: name, Days: snap.Days()})
		return
	}

	view := snap.View()
	if msg, failed := snap.WidgetError(name); failed {
		templates.Render(w, r, "dashboard_widget_error", struct {
			Widget string
			Error  string
		}{Widget: name, Error: msg})
		return
	}

	templates.Render(w, r, "dashboard_widget_"+name, view)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/progress – loading progress JSON                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProgress(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	type progress struct {
		Loaded   int    `json:"loaded"`
		Total    int    `json:"total"`
		Complete bool   `json:"complete"`
		Days     int    `json:"days"`
		Live     string `json:"live"`
	}

	snap := orch.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if snap == nil {
		json.NewEncoder(w).Encode(progress{})
		return
	}

	done, total := snap.Tracker().Progress()
	json.NewEncoder(w).Encode(progress{
		Loaded:   done,
		Total:    total,
		Complete: done == total,
		Days:     snap.Days(),
		Live:     snap.LiveState().String(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/live – spend updates relayed to the browser as SSE           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLive relays streamed spend figures to the browser. It watches the
// snapshot's update version and emits an event whenever it moves.
func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastVersion uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			snap := orch.Snapshot()
			if snap == nil {
				continue
			}
			val, has, version := snap.LiveSpend()
			if !has || version == lastVersion {
				continue
			}
			lastVersion = version
			fmt.Fprintf(w, "event: spend\ndata: {\"total_spend\": %.6f}\n\n", val)
			flusher.Flush()
		}
	}
}
