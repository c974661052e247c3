// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for GateLens.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: gateway_base_url, session_name, etc.
//   - Environment variables: GATELENS_GATEWAY_BASE_URL, GATELENS_SESSION_NAME, etc.
//   - Command-line flags: --gateway_base_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "gateway_base_url", Default: "http://localhost:4000", Desc: "Proxy backend base URL"},
	{Name: "gateway_master_key", Default: "", Desc: "Proxy master key (bearer token for all backend calls)"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "gatelens", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "gatelens-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-0123456789ABCDEF", Desc: "CSRF signing key, 32 bytes (must be strong in production)"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Externally visible console origin (OAuth callback)"},

	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "admin_emails", Default: "", Desc: "Comma-separated emails that sign in as proxy_admin"},
	{Name: "default_sso_role", Default: authz.RoleInternalUser, Desc: "Role for SSO users not listed in admin_emails"},

	{Name: "fallback_admin_email", Default: "", Desc: "Local fallback admin email (empty disables password sign-in)"},
	{Name: "fallback_admin_password_hash", Default: "", Desc: "bcrypt hash of the fallback admin password"},
}

// LoadConfig loads WAFFLE core config and GateLens config.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GATELENS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		GatewayBaseURL:   appValues.String("gateway_base_url"),
		GatewayMasterKey: appValues.String("gateway_master_key"),

		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		CSRFKey: appValues.String("csrf_key"),

		BaseURL: strings.TrimRight(appValues.String("base_url"), "/"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		AdminEmails:        splitEmails(appValues.String("admin_emails")),
		DefaultSSORole:     appValues.String("default_sso_role"),

		FallbackAdminEmail:        appValues.String("fallback_admin_email"),
		FallbackAdminPasswordHash: appValues.String("fallback_admin_password_hash"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.GatewayBaseURL == "" {
		return fmt.Errorf("gateway_base_url is required")
	}
	if appCfg.GatewayMasterKey == "" {
		logger.Warn("gateway_master_key is empty; proxy calls will be unauthenticated")
	}

	if !authz.ValidRole(appCfg.DefaultSSORole) {
		return fmt.Errorf("default_sso_role %q is not a known role", appCfg.DefaultSSORole)
	}

	if appCfg.FallbackAdminEmail != "" && appCfg.FallbackAdminPasswordHash == "" {
		return fmt.Errorf("fallback_admin_email is set but fallback_admin_password_hash is empty")
	}

	return nil
}

func splitEmails(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
