// internal/app/features/allowedips/views/views.go
package allowedipsviews

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "allowedips",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
