// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/gatelens/gatelens/internal/app/features/errors"
	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/app/store/oauthstate"
	"github.com/gatelens/gatelens/internal/app/system/auth"
	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/gatelens/gatelens/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateTTL bounds how long an OAuth round trip may take.
const stateTTL = 10 * time.Minute

// Handler handles Google OAuth sign-in for the console.
//
// Roles come from configuration, not from Google: addresses listed in
// AdminEmails sign in as proxy_admin, everyone else gets DefaultRole.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Audit      *audit.Store
	StateStore *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string

	AdminEmails []string
	DefaultRole string
}

// NewHandler creates a Google OAuth handler. baseURL is the console's
// externally visible origin; the callback is registered under it.
func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	auditStore *audit.Store,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	adminEmails []string,
	defaultRole string,
	logger *zap.Logger,
) *Handler {
	if !authz.ValidRole(defaultRole) {
		defaultRole = authz.RoleInternalUser
	}
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		Audit:        auditStore,
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		AdminEmails:  adminEmails,
		DefaultRole:  defaultRole,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// RoleFor maps a signed-in email address to a console role.
func (h *Handler) RoleFor(email string) string {
	for _, admin := range h.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return authz.RoleProxyAdmin
		}
	}
	return h.DefaultRole
}

// ServeLogin starts the OAuth flow by redirecting to Google's consent
// screen.
// GET /auth/google
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("generate oauth state failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	returnURL := query.Get(r, "return")
	expiresAt := time.Now().UTC().Add(stateTTL)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("save oauth state failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback finishes the OAuth flow: validates state, exchanges the
// code, reads the Google profile, and signs the user in with a
// configuration-derived role.
// GET /auth/google/callback
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing oauth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("validate oauth state failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired oauth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing oauth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("oauth code exchange failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("fetch google user info failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	if !googleUser.EmailVerified {
		h.Log.Warn("google account email unverified", zap.String("email", googleUser.Email))
		h.auditSSO(r, audit.EventLoginSSORejected, googleUser.Email, false, "email unverified")
		http.Redirect(w, r, "/login?error=email_unverified", http.StatusSeeOther)
		return
	}

	role := h.RoleFor(googleUser.Email)
	user := &auth.SessionUser{
		ID:    "google:" + googleUser.ID,
		Name:  googleUser.Name,
		Email: googleUser.Email,
		Role:  role,
	}
	if err := h.SessionMgr.SignIn(w, r, user); err != nil {
		h.Log.Error("sign in after oauth failed", zap.Error(err), zap.String("email", googleUser.Email))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	h.Log.Info("user signed in via google",
		zap.String("email", googleUser.Email),
		zap.String("role", role))
	h.auditSSO(r, audit.EventLoginSSOSuccess, googleUser.Email, true, "")

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// googleUserInfo is the subset of Google's userinfo response we use.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

func (h *Handler) auditSSO(r *http.Request, eventType, subject string, success bool, reason string) {
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

func generateState() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("random source unavailable")
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
