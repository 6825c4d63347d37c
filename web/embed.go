// Package web embeds the page templates and the stylesheet.
package web

import (
	"embed"
	"io/fs"
)

var (
	//go:embed templates/*.html
	templateFiles embed.FS

	//go:embed static
	staticFiles embed.FS
)

// Templates returns the page templates rooted at the templates directory.
func Templates() (fs.FS, error) {
	return fs.Sub(templateFiles, "templates")
}

// Static returns the assets served under /static/.
func Static() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}
