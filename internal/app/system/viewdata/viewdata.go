// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"

	"github.com/gatelens/gatelens/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	nav "github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in the header until an operator overrides it.
const DefaultSiteName = "GateLens"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string

	// Admin capability flags so templates don't compare role strings.
	// IsReadOnly marks an admin viewer: the panels render, the forms don't.
	IsAdmin     bool
	CanUseAdmin bool
	IsReadOnly  bool

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Optional alert banner pushed by the gateway, already sanitized.
	BannerHTML template.HTML
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	return BaseVM{
		SiteName:    DefaultSiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		IsAdmin:     authz.IsProxyAdmin(r),
		CanUseAdmin: authz.CanViewAdminPanels(r),
		IsReadOnly:  authz.IsAdminViewer(r),
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: nav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
}

// WithBanner returns a copy of the view model with the banner set.
func (vm BaseVM) WithBanner(banner template.HTML) BaseVM {
	vm.BannerHTML = banner
	return vm
}
