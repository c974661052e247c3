package gateway

import (
	"github.com/gatelens/gatelens/internal/app/system/chartdata"
)

// DashboardSummary is the proxy's pre-aggregated headline numbers for the
// usage dashboard.
type DashboardSummary struct {
	TotalSpend       float64 `json:"total_spend"`
	TotalRequests    int64   `json:"total_requests"`
	TotalTokens      int64   `json:"total_tokens"`
	AvgDailySpend    float64 `json:"avg_daily_spend"`
	AvgDailyRequests float64 `json:"avg_daily_requests"`
	TotalUniqueKeys  int64   `json:"total_unique_keys"`
	TotalUniqueUsers int64   `json:"total_unique_users"`
	PeakDailySpend   float64 `json:"peak_daily_spend"`
	MonthlySpend     float64 `json:"monthly_spend"`
	MonthlyRequests  int64   `json:"monthly_requests"`
	PeriodDays       int     `json:"period_days"`
}

// ActivitySummary is the daily request/token series plus its totals.
// DailyData is sparse as delivered; the dashboard densifies it with
// chartdata.FillDaily before charting.
type ActivitySummary struct {
	SumAPIRequests int64           `json:"sum_api_requests"`
	SumTotalTokens int64           `json:"sum_total_tokens"`
	SumSpend       float64         `json:"sum_spend"`
	DailyData      []chartdata.Row `json:"daily_data"`
	PeriodDays     int             `json:"period_days"`
}

// KeySpend is one row of the top-API-keys breakdown.
type KeySpend struct {
	APIKey   string  `json:"api_key"`
	KeyAlias string  `json:"key_alias"`
	KeyName  string  `json:"key_name"`
	Spend    float64 `json:"total_spend"`
}

// ModelSpend is one row of the top-models breakdown.
type ModelSpend struct {
	Model string  `json:"model"`
	Spend float64 `json:"total_spend"`
}

// TeamSpend is one team's aggregate in the teams summary.
type TeamSpend struct {
	Name           string  `json:"name"`
	TeamID         string  `json:"team_id"`
	Spend          float64 `json:"value"`
	TotalRequests  int64   `json:"total_requests"`
	ActiveDays     int     `json:"active_days"`
	AvgDailySpend  float64 `json:"avg_daily_spend"`
	PeakDailySpend float64 `json:"peak_daily_spend"`
}

// TeamsSummary is the admin-only per-team breakdown.
type TeamsSummary struct {
	TotalSpendPerTeam []TeamSpend `json:"total_spend_per_team"`
	Teams             []string    `json:"teams"`
	PeriodDays        int         `json:"period_days"`
}

// TagSpend is one request-tag's aggregate.
type TagSpend struct {
	Name     string  `json:"individual_request_tag"`
	Spend    float64 `json:"total_spend"`
	LogCount int64   `json:"log_count"`
}

// CustomerSpend is one end-user's aggregate.
type CustomerSpend struct {
	EndUser string  `json:"end_user"`
	Spend   float64 `json:"total_spend"`
}

// UISettings are proxy-wide settings the console reads before loading any
// dashboard data. DisableExpensiveQueries is the guard flag: when the spend
// tables grow past the backend's threshold it flips on and the console must
// skip all per-widget queries.
type UISettings struct {
	DisableExpensiveQueries bool   `json:"DISABLE_EXPENSIVE_DB_QUERIES"`
	SpendLogsRowCount       int64  `json:"NUM_SPEND_LOGS_ROWS"`
	PremiumUser             bool   `json:"PREMIUM_USER"`
	SSOEnabled              bool   `json:"SSO_ENABLED"`
	ProxyBaseURL            string `json:"PROXY_BASE_URL"`
	AlertBannerHTML         string `json:"ALERT_BANNER_HTML"`
}

// SSOConfig is the proxy's SSO provider configuration, managed from the
// admin panel. Secrets come back masked from the read endpoint.
type SSOConfig struct {
	GoogleClientID      string `json:"google_client_id"`
	GoogleClientSecret  string `json:"google_client_secret"`
	MicrosoftClientID   string `json:"microsoft_client_id"`
	MicrosoftClientSecret string `json:"microsoft_client_secret"`
	MicrosoftTenant     string `json:"microsoft_tenant"`
	GenericClientID     string `json:"generic_client_id"`
	GenericClientSecret string `json:"generic_client_secret"`
	GenericAuthorizationEndpoint string `json:"generic_authorization_endpoint"`
	GenericTokenEndpoint         string `json:"generic_token_endpoint"`
	GenericUserinfoEndpoint      string `json:"generic_userinfo_endpoint"`
	ProxyBaseURL        string `json:"proxy_base_url"`
	UserEmail           string `json:"user_email"`
}

// Configured reports whether any provider has been filled in.
func (c SSOConfig) Configured() bool {
	return c.GoogleClientID != "" || c.MicrosoftClientID != "" || c.GenericClientID != ""
}

// AdminUser is one row of the proxy's user table as shown in the admin
// panel.
type AdminUser struct {
	UserID    string  `json:"user_id"`
	UserEmail string  `json:"user_email"`
	UserRole  string  `json:"user_role"`
	Spend     float64 `json:"spend"`
	MaxBudget *float64 `json:"max_budget"`
	CreatedAt string  `json:"created_at"`
}

// UserPage is a paginated user listing.
type UserPage struct {
	Users      []AdminUser `json:"users"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Invitation is the result of inviting a new admin user: a one-time link
// the inviter passes along out of band.
type Invitation struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	InvitationLink string `json:"invitation_link"`
}
