// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/staffboard/internal/auth"
	"github.com/olegiv/staffboard/internal/camera"
	"github.com/olegiv/staffboard/internal/middleware"
	"github.com/olegiv/staffboard/internal/model"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/session"
	"github.com/olegiv/staffboard/internal/testutil"
	"github.com/olegiv/staffboard/internal/view"
	"github.com/olegiv/staffboard/web"
)

// fakeSource is an EmployeeSource with a settable result.
type fakeSource struct {
	mu    sync.Mutex
	emps  []model.Employee
	err   error
	calls int
}

func (s *fakeSource) FetchEmployees(context.Context) ([]model.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.emps, s.err
}

func (s *fakeSource) set(emps []model.Employee, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emps, s.err = emps, err
}

// blockingSource never returns until release is closed.
type blockingSource struct {
	release chan struct{}
}

func (s blockingSource) FetchEmployees(context.Context) ([]model.Employee, error) {
	<-s.release
	return nil, nil
}

// testRenderer parses the embedded templates.
func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()

	r, err := render.New(render.Config{TemplatesFS: web.TemplateFiles(), IsDev: true, Version: "test"})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

// testApp is the dashboard router wired with in-memory sessions and a
// browser-like cookie store.
type testApp struct {
	t        *testing.T
	router   http.Handler
	sm       *scs.SessionManager
	cameras  *camera.Registry
	source   *fakeSource
	health   *HealthHandler
	cookies  map[string]*http.Cookie
	renderer *render.Renderer
	authLogs *strings.Builder
}

func newTestApp(t *testing.T, devices camera.MediaDevices) *testApp {
	t.Helper()

	logger := testutil.TestLoggerSilent()
	sm := session.New(session.NewMemoryStore(), true)
	cameras := camera.NewRegistry(devices, logger)
	tracker := view.NewTracker()
	renderer := testRenderer(t)
	source := &fakeSource{emps: testutil.Employees()}

	authLogs := &strings.Builder{}
	authHandler := NewAuthHandler(renderer, sm, cameras, nil, slog.New(slog.NewTextHandler(authLogs, nil)))
	dashboardHandler := NewDashboardHandler(renderer, source, tracker, logger)
	employeeHandler := NewEmployeeHandler(renderer, sm, cameras, logger, 64, 48)
	photoHandler := NewPhotoHandler(renderer, sm)
	chartHandler := NewChartHandler(renderer, source, tracker, logger)
	mapHandler := NewMapHandler(renderer, source, tracker, logger)
	healthHandler := NewHealthHandler(renderer, HealthConfig{Version: "test", Cameras: cameras})

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadAuth(sm))
	r.Use(middleware.LoadOwner(sm))

	r.Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)
	r.Get(RouteHealth, healthHandler.Health)
	r.Get(RouteHealthLive, healthHandler.Liveness)
	r.Get(RouteHealthReady, healthHandler.Readiness)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.CameraTeardown(sm, cameras, logger))

		r.Post(RouteLogout, authHandler.Logout)
		r.Get(RouteDashboard, dashboardHandler.Show)
		r.Post(RouteEmployeeSelect, employeeHandler.Select)
		r.Get(RouteEmployee, employeeHandler.Details)
		r.Post(RouteCamera+"/{action}", employeeHandler.Camera)
		r.Get(RouteCameraPreview, employeeHandler.Preview)
		r.Post(RouteCameraRelease, employeeHandler.Release)
		r.Get(RoutePhotoResult, photoHandler.Result)
		r.Get(RoutePhotoDownload, photoHandler.Download)
		r.Get(RouteSalaryChart, chartHandler.Show)
		r.Get(RouteCityMap, mapHandler.Show)
		r.Get(RouteStatus, healthHandler.Status)
	})

	return &testApp{
		t:        t,
		router:   r,
		sm:       sm,
		cameras:  cameras,
		source:   source,
		health:   healthHandler,
		cookies:  make(map[string]*http.Cookie),
		renderer: renderer,
		authLogs: authLogs,
	}
}

// do sends a request carrying the stored cookies and keeps the cookies set
// by the response.
func (a *testApp) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	a.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(a.cookies, c.Name)
			continue
		}
		a.cookies[c.Name] = c
	}
	return rec
}

func (a *testApp) get(target string) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, nil)
}

func (a *testApp) post(target string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return a.do(http.MethodPost, target, form)
}

// login signs in with the demo credentials.
func (a *testApp) login() {
	a.t.Helper()

	rec := a.post(RouteLogin, url.Values{
		"username": {auth.ValidUsername},
		"password": {auth.ValidPassword},
	})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteDashboard {
		a.t.Fatalf("login: status %d, location %q", rec.Code, rec.Header().Get("Location"))
	}
}

// selectEmployee opens the details page payload for e under key.
func (a *testApp) selectEmployee(key string, e model.Employee) {
	a.t.Helper()

	rec := a.post(RouteEmployeeSelect, url.Values{
		"key":        {key},
		"id":         {e.ID},
		"name":       {e.Name},
		"position":   {e.Position},
		"city":       {e.City},
		"start_date": {e.StartDate},
		"salary":     {strconv.FormatFloat(e.Salary, 'f', -1, 64)},
	})
	if rec.Code != http.StatusSeeOther {
		a.t.Fatalf("select: status %d", rec.Code)
	}
}

// assertRedirect fails unless rec is a 303 to location.
func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}
