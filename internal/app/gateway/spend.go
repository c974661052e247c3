package gateway

import (
	"context"
	"net/url"
	"strconv"
)

// Spend and activity endpoints. All of these are GETs against
// pre-aggregated views; the backend caches them server-side, and the client
// collapses concurrent duplicates so a burst of widget requests costs one
// upstream call per endpoint.

// DashboardSummary returns headline totals for the last `days` days.
func (c *Client) DashboardSummary(ctx context.Context, days int) (DashboardSummary, error) {
	return fetch[DashboardSummary](ctx, c, "/global/spend/dashboard-summary", daysQuery(days))
}

// ActivitySummary returns the sparse daily request/token series for the
// last `days` days.
func (c *Client) ActivitySummary(ctx context.Context, days int) (ActivitySummary, error) {
	return fetch[ActivitySummary](ctx, c, "/global/spend/activity-summary", daysQuery(days))
}

// TopKeys returns the highest-spending API keys.
func (c *Client) TopKeys(ctx context.Context, limit int) ([]KeySpend, error) {
	return fetch[[]KeySpend](ctx, c, "/global/spend/keys", limitQuery(limit))
}

// TopModels returns spend grouped by model.
func (c *Client) TopModels(ctx context.Context, limit int) ([]ModelSpend, error) {
	return fetch[[]ModelSpend](ctx, c, "/global/spend/models", limitQuery(limit))
}

// TeamsSummary returns the per-team spend breakdown. Admin only on the
// backend; callers gate it by role before asking.
func (c *Client) TeamsSummary(ctx context.Context, days, limit int) (TeamsSummary, error) {
	q := daysQuery(days)
	q.Set("limit", strconv.Itoa(limit))
	return fetch[TeamsSummary](ctx, c, "/global/spend/teams-summary", q)
}

// TagsSummary returns spend grouped by request tag. Admin only.
func (c *Client) TagsSummary(ctx context.Context, days int) ([]TagSpend, error) {
	return fetch[[]TagSpend](ctx, c, "/global/spend/tags", daysQuery(days))
}

// TopCustomers returns spend grouped by end user. Admin only.
func (c *Client) TopCustomers(ctx context.Context, limit int) ([]CustomerSpend, error) {
	return fetch[[]CustomerSpend](ctx, c, "/global/spend/end_users", limitQuery(limit))
}

func daysQuery(days int) url.Values {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	return q
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	return q
}
