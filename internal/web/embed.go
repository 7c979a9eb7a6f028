package web

import (
	"embed"
	"io/fs"
	"net/http"
)

var (
	//go:embed static/*
	embeddedStaticFiles embed.FS

	//go:embed templates/*
	embeddedTemplates embed.FS
)

// embeddedDir serves dir of an embedded tree as the root of an http.FileSystem.
func embeddedDir(fsys fs.FS, dir string) http.FileSystem {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		// only reachable with a malformed literal dir
		panic(err)
	}

	return http.FS(sub)
}
