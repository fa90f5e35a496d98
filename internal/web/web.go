// Package web embeds the polling dashboard served at the console root.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// Handler serves the embedded dashboard assets.
func Handler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The subtree is embedded at build time; this cannot fail at runtime.
		panic(err)
	}

	return http.FileServer(http.FS(sub))
}
