// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/gatelens/gatelens/internal/app/features/errors"
	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/app/system/auth"
	"github.com/gatelens/gatelens/internal/app/system/authutil"
	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/gatelens/gatelens/internal/app/system/ratelimit"
	"github.com/gatelens/gatelens/internal/app/system/timeouts"
	"github.com/gatelens/gatelens/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// fallbackAdminID is the session user ID for the local fallback admin.
// It is not a proxy user; the console mints it so the panel stays
// reachable when SSO or the proxy itself is down.
const fallbackAdminID = "local-fallback-admin"

// Handler serves the sign-in page and the local fallback admin flow.
// SSO sign-in lives in features/authgoogle.
type Handler struct {
	SessionMgr *auth.SessionManager
	Audit      *audit.Store
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Limiter    *ratelimit.LoginLimiter

	GoogleEnabled bool

	// Fallback admin credentials from configuration. Empty email
	// disables the password form entirely.
	AdminEmail        string
	AdminPasswordHash string
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	auditStore *audit.Store,
	errLog *uierrors.ErrorLogger,
	googleEnabled bool,
	adminEmail, adminPasswordHash string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		SessionMgr:        sessionMgr,
		Audit:             auditStore,
		Log:               logger,
		ErrLog:            errLog,
		Limiter:           ratelimit.NewLoginLimiter(),
		GoogleEnabled:     googleEnabled,
		AdminEmail:        adminEmail,
		AdminPasswordHash: adminPasswordHash,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error           string
	Email           string
	ReturnURL       string
	GoogleEnabled   bool
	PasswordEnabled bool
}

// ssoErrors maps callback error codes to user-facing messages.
var ssoErrors = map[string]string{
	"google_not_configured": "Google sign-in is not configured.",
	"google_denied":         "Google sign-in was cancelled.",
	"invalid_state":         "The sign-in attempt expired. Please try again.",
	"invalid_code":          "The sign-in attempt was incomplete. Please try again.",
	"token_exchange":        "Google sign-in failed. Please try again.",
	"user_info":             "Could not read your Google profile. Please try again.",
	"email_unverified":      "Your Google email address is not verified.",
	"internal":              "A server error occurred during sign-in. Please try again.",
}

// ServeLogin renders the sign-in page.
// GET /login
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if code := query.Get(r, "error"); code != "" {
		if m, ok := ssoErrors[code]; ok {
			msg = m
		} else {
			msg = "Sign-in failed. Please try again."
		}
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:          viewdata.NewBaseVM(r, "Sign In", "/"),
		Error:           msg,
		ReturnURL:       query.Get(r, "return"),
		GoogleEnabled:   h.GoogleEnabled,
		PasswordEnabled: h.passwordEnabled(),
	})
}

// HandleLoginPost validates the fallback admin credentials and signs in.
// POST /login
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	if !h.passwordEnabled() {
		h.renderFormWithError(w, r, "Password sign-in is not configured.", email, ret)
		return
	}
	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Enter your email and password.", email, ret)
		return
	}

	if allowed, msg := h.Limiter.Check(r, email); !allowed {
		h.Log.Warn("login rate limited",
			zap.String("email", email),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.auditSecurity(r, audit.EventLoginRateLimited, email, "rate limit exceeded")
		h.renderFormWithError(w, r, msg, email, ret)
		return
	}

	if !strings.EqualFold(email, h.AdminEmail) || !authutil.CheckPassword(password, h.AdminPasswordHash) {
		h.Log.Warn("fallback admin login failed", zap.String("email", email), zap.String("ip", r.RemoteAddr))
		h.auditAuth(r, audit.EventLoginFailedWrongPassword, email, false, "wrong email or password")
		h.renderFormWithError(w, r, "Incorrect email or password.", email, ret)
		return
	}

	user := &auth.SessionUser{
		ID:    fallbackAdminID,
		Name:  "Fallback Admin",
		Email: h.AdminEmail,
		Role:  authz.RoleProxyAdmin,
	}
	if err := h.SessionMgr.SignIn(w, r, user); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in failed", err, "Unable to create a session. Please try again.", "/login")
		return
	}

	h.Limiter.ResetEmail(email)
	h.Log.Info("fallback admin signed in", zap.String("email", h.AdminEmail))
	h.auditAuth(r, audit.EventLoginSuccess, h.AdminEmail, true, "")

	dest := urlutil.SafeReturn(ret, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) passwordEnabled() bool {
	return h.AdminEmail != "" && h.AdminPasswordHash != ""
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, ret string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:          viewdata.NewBaseVM(r, "Sign In", "/"),
		Error:           msg,
		Email:           email,
		ReturnURL:       ret,
		GoogleEnabled:   h.GoogleEnabled,
		PasswordEnabled: h.passwordEnabled(),
	})
}

func (h *Handler) auditSecurity(r *http.Request, eventType, subject, reason string) {
	if h.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	err := h.Audit.Log(ctx, audit.Event{
		Category:      audit.CategorySecurity,
		EventType:     eventType,
		Subject:       subject,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
	if err != nil {
		h.Log.Warn("audit write failed", zap.String("event", eventType), zap.Error(err))
	}
}

func (h *Handler) auditAuth(r *http.Request, eventType, subject string, success bool, reason string) {
	if h.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	err := h.Audit.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		Subject:       subject,
		IP:            r.RemoteAddr,
		UserAgent:     r.UserAgent(),
		Success:       success,
		FailureReason: reason,
	})
	if err != nil {
		h.Log.Warn("audit write failed", zap.String("event", eventType), zap.Error(err))
	}
}
