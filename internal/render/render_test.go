// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/staffboard/internal/model"
	"github.com/olegiv/staffboard/web"
)

func TestBlankLinesRegex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no blank lines", "line1\nline2\nline3", "line1\nline2\nline3"},
		{"one blank line", "line1\n\nline2", "line1\nline2"},
		{"multiple blank lines", "line1\n\n\n\n\nline2", "line1\nline2"},
		{"blank lines with spaces", "line1\n  \n\t\nline2", "line1\nline2"},
		{"windows line endings", "line1\r\n\r\n\r\nline2", "line1\nline2"},
		{"blank lines at end", "line1\nline2\n\n\n", "line1\nline2\n"},
		{"empty input", "", ""},
		{"html with blank lines", "<div>\n\n\n<p>text</p>\n\n\n</div>", "<div>\n<p>text</p>\n</div>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(blankLinesRegex.ReplaceAll([]byte(tt.input), []byte("\n")))
			if got != tt.expected {
				t.Errorf("blankLinesRegex.ReplaceAll(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html":    {Data: []byte(`{{define "base"}}<title>{{.Title}} · {{.AppName}}</title>{{template "body" .}}{{end}}`)},
		"layouts/app.html":     {Data: []byte(`{{define "body"}}{{template "navbar" .}}<main>{{template "content" .}}</main>{{end}}`)},
		"partials/navbar.html": {Data: []byte(`{{define "navbar"}}<nav>{{.Active}}</nav>{{end}}`)},
		"auth/login.html":      {Data: []byte(`{{define "body"}}<form>{{.Data}}</form>{{end}}`)},
		"app/dashboard.html":   {Data: []byte("{{define \"content\"}}\n\n\n<p>{{formatSalary .Data}}</p>{{end}}")},
	}
}

func TestNew_ParsesGroups(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	require.NoError(t, err)

	assert.True(t, r.Has("auth/login"))
	assert.True(t, r.Has("app/dashboard"))
	assert.False(t, r.Has("app/missing"))
}

func TestNew_ParseError(t *testing.T) {
	fsys := testFS()
	fsys["app/broken.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Data`)}

	_, err := New(Config{TemplatesFS: fsys})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app/broken")
}

func TestRender_LayoutAndDefaults(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS(), Version: "staffboard dev"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	err = r.Render(rec, req, "app/dashboard", TemplateData{Title: "Dashboard", Active: "dashboard", Data: 1234.0})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>Dashboard · EmployeeHub</title>")
	assert.Contains(t, body, "<nav>dashboard</nav>")
	assert.Contains(t, body, "₹1,234")
	assert.NotContains(t, body, "\n\n")
}

func TestRenderStatus(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, r.RenderStatus(rec, req, http.StatusUnauthorized, "auth/login", TemplateData{Data: "<b>x</b>"}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;x&lt;/b&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "app/nope", TemplateData{})
	require.Error(t, err)
	assert.Equal(t, 0, rec.Body.Len(), "nothing written on error")
}

func TestEmbeddedTemplatesParse(t *testing.T) {
	r, err := New(Config{TemplatesFS: web.TemplateFiles()})
	require.NoError(t, err)

	for _, name := range []string{
		"auth/login",
		"app/dashboard",
		"app/employee",
		"app/photo_result",
		"app/salary_chart",
		"app/city_map",
		"app/health",
	} {
		assert.True(t, r.Has(name), "missing %s", name)
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := TemplateFuncs()

	for _, name := range []string{"formatSalary", "salaryK", "titleCase", "dash", "pathEscape", "num", "dataURL", "formatDateTime", "add", "addf", "subf"} {
		assert.Contains(t, funcs, name)
	}

	num := funcs["num"].(func(float64) string)
	assert.Equal(t, "12.50", num(12.5))

	dataURL := funcs["dataURL"].(func(model.Photo) template.URL)
	assert.Equal(t, template.URL(""), dataURL(model.Photo{}))
	got := string(dataURL(model.Photo{Data: []byte{1, 2, 3}, MimeType: model.MimeTypePNG}))
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"), got)

	formatDateTime := funcs["formatDateTime"].(func(time.Time) string)
	assert.Equal(t, "Mar 15, 2025 2:04:05 PM", formatDateTime(time.Date(2025, time.March, 15, 14, 4, 5, 0, time.UTC)))
}
