// internal/app/features/ssoconfig/views/views.go
package ssoconfigviews

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "ssoconfig",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
