package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// TemplatesFS exposes the built-in templates so callers can extend or
// override them.
func TemplatesFS() fs.FS {
	return templatesFS
}
