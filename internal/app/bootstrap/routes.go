// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminusersfeature "github.com/gatelens/gatelens/internal/app/features/adminusers"
	allowedipsfeature "github.com/gatelens/gatelens/internal/app/features/allowedips"
	authgooglefeature "github.com/gatelens/gatelens/internal/app/features/authgoogle"
	dashboardfeature "github.com/gatelens/gatelens/internal/app/features/dashboard"
	errorsfeature "github.com/gatelens/gatelens/internal/app/features/errors"
	healthfeature "github.com/gatelens/gatelens/internal/app/features/health"
	homefeature "github.com/gatelens/gatelens/internal/app/features/home"
	loginfeature "github.com/gatelens/gatelens/internal/app/features/login"
	logoutfeature "github.com/gatelens/gatelens/internal/app/features/logout"
	ssoconfigfeature "github.com/gatelens/gatelens/internal/app/features/ssoconfig"
	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/app/store/oauthstate"
	"github.com/gatelens/gatelens/internal/app/store/ssocache"
	"github.com/gatelens/gatelens/internal/app/system/auth"
	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	// Template sets register themselves in init.
	_ "github.com/gatelens/gatelens/internal/app/features/adminusers/views"
	_ "github.com/gatelens/gatelens/internal/app/features/allowedips/views"
	_ "github.com/gatelens/gatelens/internal/app/features/dashboard/views"
	_ "github.com/gatelens/gatelens/internal/app/features/home/views"
	_ "github.com/gatelens/gatelens/internal/app/features/login/views"
	_ "github.com/gatelens/gatelens/internal/app/features/ssoconfig/views"
)

// BuildHandler constructs the root HTTP handler for the console.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Boot the template engine once at startup. Dev mode reloads
	// templates on each render.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	auditStore := audit.New(deps.MongoDatabase)
	ssoCache := ssocache.New(deps.MongoDatabase)
	stateStore := oauthstate.New(deps.MongoDatabase)

	googleHandler := authgooglefeature.NewHandler(
		sessionMgr, errLog, auditStore, stateStore,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL,
		appCfg.AdminEmails, appCfg.DefaultSSORole, logger)

	r := chi.NewRouter()

	// Global middleware: session user into context, CSRF on all forms.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Gateway, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli).
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages.
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication.
	loginHandler := loginfeature.NewHandler(
		sessionMgr, auditStore, errLog,
		googleHandler.IsConfigured(),
		appCfg.FallbackAdminEmail, appCfg.FallbackAdminPasswordHash, logger)
	r.Route("/login", loginHandler.MountRoutes)

	r.Route("/auth/google", googleHandler.MountRoutes)

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditStore, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages.
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Usage dashboard: any signed-in role.
	dashboardHandler := dashboardfeature.NewHandler(deps.Registry, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Admin panel: full admins and read-only viewers. Mutating handlers
	// gate on proxy_admin themselves.
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(sessionMgr.RequireSignedIn)
		ar.Use(sessionMgr.RequireRole(authz.RoleProxyAdmin, authz.RoleProxyAdminViewer))

		ssoHandler := ssoconfigfeature.NewHandler(deps.Gateway, ssoCache, auditStore, errLog, logger)
		ar.Route("/sso", ssoHandler.MountRoutes)

		ipsHandler := allowedipsfeature.NewHandler(deps.Gateway, auditStore, errLog, logger)
		ar.Route("/allowed-ips", ipsHandler.MountRoutes)

		usersHandler := adminusersfeature.NewHandler(deps.Gateway, auditStore, errLog, logger)
		ar.Route("/users", usersHandler.MountRoutes)
	})

	return r, nil
}
