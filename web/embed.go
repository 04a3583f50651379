// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var Templates embed.FS

//go:embed all:static/dist
var Static embed.FS

// TemplateFiles returns the templates directory as the root of a file system.
func TemplateFiles() fs.FS {
	return mustSub(Templates, "templates")
}

// StaticFiles returns static/dist as the root of a file system.
func StaticFiles() fs.FS {
	return mustSub(Static, "static/dist")
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
