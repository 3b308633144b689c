package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded page template bundle for consumers that
// want the built-in rendering out of the box.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
