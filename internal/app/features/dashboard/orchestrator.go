// internal/app/features/dashboard/orchestrator.go
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/gatelens/gatelens/internal/app/system/chartdata"
	"github.com/gatelens/gatelens/internal/app/system/htmlsanitize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// topN caps the key/model/customer breakdowns, matching the backend's
	// own default page size.
	topN = 10

	// teamsLimit caps the per-team breakdown.
	teamsLimit = 20

	guardNotice = "Spend analytics are paused: the proxy has disabled " +
		"expensive database queries because the spend log table is too large. " +
		"Ask an operator to prune spend logs or raise the row threshold."
)

// Orchestrator loads one user's dashboard. Each Load supersedes the previous
// one: it cancels the old fetch context, closes the old live stream, and
// swaps in a fresh snapshot, so a user flipping the date range never sees a
// slow 90-day response land on top of a 7-day view.
type Orchestrator struct {
	client *gateway.Client
	role   string
	log    *zap.Logger

	mu     sync.Mutex
	snap   *Snapshot
	cancel context.CancelFunc
	stream *gateway.SpendStream
}

// NewOrchestrator builds an orchestrator for one user. The role decides
// which widgets load: internal users don't get the proxy-wide breakdowns.
func NewOrchestrator(client *gateway.Client, role string, log *zap.Logger) *Orchestrator {
	return &Orchestrator{client: client, role: role, log: log}
}

func widgetsForRole(role string) []string {
	widgets := []string{WidgetSummary, WidgetActivity, WidgetTopKeys, WidgetTopModels}
	if authz.CanViewGlobalBreakdowns(role) {
		widgets = append(widgets, WidgetTeams, WidgetTags, WidgetCustomers)
	}
	return widgets
}

// Snapshot returns the current snapshot, nil before the first Load.
func (o *Orchestrator) Snapshot() *Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Load starts fetching a fresh snapshot for the given day range and returns
// it immediately; widgets fill in as their fetches settle. Any in-flight
// load is abandoned.
func (o *Orchestrator) Load(days int) *Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	if o.stream != nil {
		o.stream.Close()
		o.stream = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel

	snap := newSnapshot(days, widgetsForRole(o.role))
	o.snap = snap

	go o.fill(ctx, snap, days)
	return snap
}

// Shutdown cancels any in-flight load and closes the live stream. The
// orchestrator must not be used afterwards.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.stream != nil {
		o.stream.Close()
		o.stream = nil
	}
}

// fill runs the whole load for one snapshot. Settings come first because the
// expensive-query guard decides whether anything else runs at all.
func (o *Orchestrator) fill(ctx context.Context, snap *Snapshot, days int) {
	settings, err := o.client.UISettings(ctx)
	if err != nil {
		// Without settings we can't know the guard state; load widgets
		// anyway and let per-widget errors surface.
		o.log.Warn("ui settings fetch failed", zap.Error(err))
	} else {
		if banner := htmlsanitize.PrepareForDisplay(settings.AlertBannerHTML); banner != "" {
			snap.setBanner(banner)
		}
		if settings.DisableExpensiveQueries {
			snap.setGuard(guardNotice)
			o.log.Info("expensive queries disabled on gateway, skipping dashboard load",
				zap.Int64("spend_log_rows", settings.SpendLogsRowCount))
			return
		}
	}

	o.startStream(snap)

	g := new(errgroup.Group)

	fetchWidget := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(ctx); err != nil {
				snap.setError(name, err)
				o.log.Warn("widget fetch failed",
					zap.String("widget", name),
					zap.Int("days", days),
					zap.Error(err))
			}
			snap.Tracker().MarkLoaded(name)
			return nil
		})
	}

	fetchWidget(WidgetSummary, func(ctx context.Context) error {
		v, err := o.client.DashboardSummary(ctx, days)
		if err != nil {
			return err
		}
		snap.setSummary(&v)
		return nil
	})

	fetchWidget(WidgetActivity, func(ctx context.Context) error {
		v, err := o.client.ActivitySummary(ctx, days)
		if err != nil {
			return err
		}
		end := time.Now()
		start := end.AddDate(0, 0, -(days - 1))
		// Per-model series only appear on days that used the model;
		// discover them so every row carries every series.
		dense, err := chartdata.FillDaily(v.DailyData, start, end, chartdata.SeriesNames(v.DailyData))
		if err != nil {
			return err
		}
		snap.setActivity(dense)
		return nil
	})

	fetchWidget(WidgetTopKeys, func(ctx context.Context) error {
		v, err := o.client.TopKeys(ctx, topN)
		if err != nil {
			return err
		}
		snap.setTopKeys(v)
		return nil
	})

	fetchWidget(WidgetTopModels, func(ctx context.Context) error {
		v, err := o.client.TopModels(ctx, topN)
		if err != nil {
			return err
		}
		snap.setTopModels(v)
		return nil
	})

	if contains(snap.Tracker().Names(), WidgetTeams) {
		fetchWidget(WidgetTeams, func(ctx context.Context) error {
			v, err := o.client.TeamsSummary(ctx, days, teamsLimit)
			if err != nil {
				return err
			}
			snap.setTeams(&v)
			return nil
		})

		fetchWidget(WidgetTags, func(ctx context.Context) error {
			v, err := o.client.TagsSummary(ctx, days)
			if err != nil {
				return err
			}
			snap.setTags(v)
			return nil
		})

		fetchWidget(WidgetCustomers, func(ctx context.Context) error {
			v, err := o.client.TopCustomers(ctx, topN)
			if err != nil {
				return err
			}
			snap.setCustomers(v)
			return nil
		})
	}

	g.Wait()

	done, total := snap.Tracker().Progress()
	o.log.Debug("dashboard load settled",
		zap.Int("days", days),
		zap.Int("loaded", done),
		zap.Int("total", total))
}

// startStream connects the live spend stream for this snapshot. The stream
// belongs to the orchestrator so a later Load can close it, but updates go
// to the snapshot that was current when it connected.
func (o *Orchestrator) startStream(snap *Snapshot) {
	stream := o.client.SpendStream(func(totalSpend float64) {
		snap.SetLiveSpend(totalSpend)
	})

	o.mu.Lock()
	if o.snap != snap {
		// Superseded while we were fetching settings; don't connect.
		o.mu.Unlock()
		return
	}
	o.stream = stream
	o.mu.Unlock()

	stream.Connect()
	snap.setLiveState(stream.State())
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
