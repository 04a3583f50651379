// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the page templates and renders them inside the
// shared layout.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/staffboard/internal/format"
	"github.com/olegiv/staffboard/internal/model"
)

// AppName is the product name shown in the navbar and page titles.
const AppName = "EmployeeHub"

// blankLinesRegex matches two or more consecutive newlines (with optional whitespace between).
var blankLinesRegex = regexp.MustCompile(`(\r?\n\s*){2,}`)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates map[string]*template.Template
	isDev     bool
	version   string
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS fs.FS
	IsDev       bool
	Version     string
}

// pageGroup is a template directory and the layouts its pages are parsed with.
type pageGroup struct {
	dir     string
	layouts []string
}

const baseLayout = "layouts/base.html"

var pageGroups = []pageGroup{
	{dir: "auth", layouts: []string{baseLayout}},
	{dir: "app", layouts: []string{baseLayout, "layouts/app.html"}},
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		isDev:     cfg.IsDev,
		version:   cfg.Version,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page with its layouts and all partials.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := r.getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for _, group := range pageGroups {
		pages, err := r.getTemplateFiles(templatesFS, group.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", group.dir, err)
		}

		for _, tmplPath := range pages {
			name := group.dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := append([]string{}, group.layouts...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}

			r.templates[name] = tmpl
		}
	}

	return nil
}

// getTemplateFiles returns all .html files in a directory.
func (r *Renderer) getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// Directory might not exist, that's ok
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// Has reports whether a page template was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateFuncs returns the functions available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatSalary": format.Salary,
		"salaryK":      format.SalaryThousands,
		"titleCase":    format.TitleCase,
		"dash":         format.OrDash,
		"pathEscape":   url.PathEscape,
		"num": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64)
		},
		"dataURL": func(p model.Photo) template.URL {
			// Only image data produced by the capture path reaches here.
			return template.URL(p.DataURL())
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04:05 PM")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"addf": func(a, b float64) float64 {
			return a + b
		},
		"subf": func(a, b float64) float64 {
			return a - b
		},
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title         string
	AppName       string
	Active        string // navbar section
	Authenticated bool
	Data          any
	CurrentYear   int
	Version       string
	IsDev         bool
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code. The page is
// executed into a buffer first so a template error never produces a
// half-written response.
func (r *Renderer) RenderStatus(w http.ResponseWriter, _ *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.AppName = AppName
	data.CurrentYear = time.Now().Year()
	data.Version = r.version
	data.IsDev = r.isDev

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	compacted := blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(compacted)
	return err
}
