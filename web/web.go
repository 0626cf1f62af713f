// Package web хранит шаблоны и статику, встроенные в бинарник.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templates embed.FS

//go:embed assets
var assets embed.FS

// Templates — корень с layouts/ и pages/.
func Templates() fs.FS {
	sub, _ := fs.Sub(templates, "templates")
	return sub
}

// Assets — корень статики, отдаётся по /assets/.
func Assets() fs.FS {
	sub, _ := fs.Sub(assets, "assets")
	return sub
}
