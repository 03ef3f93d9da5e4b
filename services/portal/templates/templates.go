// Package templates holds the portal's server-rendered pages.
package templates

import (
	"embed"
	"html/template"
	"io/fs"
	"strconv"

	"carenest/services/portal/views"
)

//go:embed html/*.html
var files embed.FS

//go:embed static
var static embed.FS

var funcs = template.FuncMap{
	"formatDuration":  views.FormatDuration,
	"initial":         views.Initial,
	"title":           views.Title,
	"caregiverAvatar": views.CaregiverAvatar,
	"requestAvatar":   views.VerificationAvatar,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"derefInt": func(n *int) string {
		if n == nil {
			return ""
		}
		return strconv.Itoa(*n)
	},
}

// Load parses every page and fragment. Pages are addressed by file name.
func Load() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "html/*.html")
}

// Static is the stylesheet and image tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
