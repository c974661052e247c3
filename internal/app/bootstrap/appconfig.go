// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for GateLens.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, timeouts); AppConfig is everything specific to this console:
// the proxy backend it fronts, its own MongoDB, sessions, CSRF, and the
// sign-in methods it offers.
type AppConfig struct {
	// Proxy backend the console reads all metrics and admin objects from.
	GatewayBaseURL   string // e.g. http://localhost:4000
	GatewayMasterKey string // bearer token for every proxy call

	// MongoDB for the console's own state (SSO-config cache, audit log,
	// OAuth state tokens).
	MongoURI      string
	MongoDatabase string

	// Session management.
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)

	// CSRF protection for the admin forms.
	CSRFKey string // 32-byte secret for gorilla/csrf

	// Externally visible origin, used for the OAuth callback URL.
	BaseURL string // e.g. https://console.example.com

	// Google SSO.
	GoogleClientID     string
	GoogleClientSecret string
	AdminEmails        []string // addresses that sign in as proxy_admin
	DefaultSSORole     string   // role for everyone else

	// Local fallback admin, so the console stays reachable when SSO or
	// the proxy is down. Empty email disables the password form.
	FallbackAdminEmail        string
	FallbackAdminPasswordHash string // bcrypt
}
