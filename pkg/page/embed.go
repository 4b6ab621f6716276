package page

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var templateFiles embed.FS

//go:embed assets/*
var assetFiles embed.FS

// Templates exposes the embedded page templates rooted at the templates dir.
func Templates() fs.FS {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Assets exposes the embedded static assets rooted at the assets dir.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFiles, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
