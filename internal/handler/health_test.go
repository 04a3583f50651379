// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/staffboard/internal/auth"
	"github.com/olegiv/staffboard/internal/camera"
	"github.com/olegiv/staffboard/internal/logging"
	"github.com/olegiv/staffboard/internal/scheduler"
	"github.com/olegiv/staffboard/internal/store"
	"github.com/olegiv/staffboard/internal/testutil"
)

func okProbe(name string) Probe {
	return Probe{Name: name, Check: func(context.Context) error { return nil }}
}

func failingProbe(name string) Probe {
	return Probe{Name: name, Check: func(context.Context) error { return errors.New("connection refused") }}
}

func newTestHealthHandler(t *testing.T, probes ...Probe) *HealthHandler {
	t.Helper()
	return NewHealthHandler(testRenderer(t), HealthConfig{
		Version: "v1.2.3",
		Probes:  probes,
		Cameras: camera.NewRegistry(camera.NoDevice{}, testutil.TestLoggerSilent()),
	})
}

// withAuth returns r carrying an authenticated auth store.
func withAuth(t *testing.T, r *http.Request) *http.Request {
	t.Helper()

	store := auth.NewStore(auth.NewMemoryStorage())
	if res := store.Login(auth.ValidUsername, auth.ValidPassword); !res.Success {
		t.Fatal("login failed")
	}
	return r.WithContext(auth.WithStore(r.Context(), store))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	if ct := rec.Header().Get(HeaderContentType); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

func TestHealthHandler_Health_Public(t *testing.T) {
	h := newTestHealthHandler(t, okProbe("sessions"))

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	resp := decodeJSON(t, rec)
	if resp["status"] != statusHealthy {
		t.Errorf("status = %v; want healthy", resp["status"])
	}
	for _, field := range []string{"checks", "uptime", "version", "cameras"} {
		if _, ok := resp[field]; ok {
			t.Errorf("public response contains %q", field)
		}
	}
}

func TestHealthHandler_Health_Degraded(t *testing.T) {
	h := newTestHealthHandler(t, okProbe("camera"), failingProbe("sessions"))

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if resp := decodeJSON(t, rec); resp["status"] != statusDegraded {
		t.Errorf("status = %v; want degraded", resp["status"])
	}
}

func TestHealthHandler_Health_Authenticated(t *testing.T) {
	recent := logging.NewRecentHandler(slog.NewTextHandler(io.Discard, nil))
	slog.New(recent).Warn("upstream slow", "category", logging.CategoryEmployees)

	h := NewHealthHandler(testRenderer(t), HealthConfig{
		Version: "v1.2.3",
		Probes:  []Probe{okProbe("sessions")},
		Cameras: camera.NewRegistry(camera.NoDevice{}, testutil.TestLoggerSilent()),
		Events:  recent,
	})

	req := withAuth(t, httptest.NewRequest(http.MethodGet, RouteHealth+"?verbose=true", nil))
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	resp := decodeJSON(t, rec)
	if resp["version"] != "v1.2.3" {
		t.Errorf("version = %v; want v1.2.3", resp["version"])
	}
	checks, ok := resp["checks"].(map[string]any)
	if !ok || checks["sessions"] == nil {
		t.Errorf("checks = %v; want sessions entry", resp["checks"])
	}
	if resp["cameras"] == nil {
		t.Error("cameras missing")
	}
	if resp["system"] == nil {
		t.Error("system info missing with verbose=true")
	}
	events, ok := resp["recent_events"].([]any)
	if !ok || len(events) != 1 {
		t.Errorf("recent_events = %v; want one event", resp["recent_events"])
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := newTestHealthHandler(t, failingProbe("sessions"))

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, RouteHealthLive, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if resp := decodeJSON(t, rec); resp["status"] != "alive" {
		t.Errorf("status = %v; want alive", resp["status"])
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name        string
		probe       Probe
		authed      bool
		wantCode    int
		wantStatus  string
		wantMessage bool
	}{
		{"ready", okProbe("sessions"), false, http.StatusOK, "ready", false},
		{"not ready public", failingProbe("sessions"), false, http.StatusServiceUnavailable, "not_ready", false},
		{"not ready authenticated", failingProbe("sessions"), true, http.StatusServiceUnavailable, "not_ready", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHealthHandler(t, tt.probe)

			req := httptest.NewRequest(http.MethodGet, RouteHealthReady, nil)
			if tt.authed {
				req = withAuth(t, req)
			}
			rec := httptest.NewRecorder()
			h.Readiness(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantCode)
			}
			resp := decodeJSON(t, rec)
			if resp["status"] != tt.wantStatus {
				t.Errorf("status = %v; want %s", resp["status"], tt.wantStatus)
			}
			if _, ok := resp["sessions"]; ok != tt.wantMessage {
				t.Errorf("failure detail present = %v; want %v", ok, tt.wantMessage)
			}
		})
	}
}

func TestHealthHandler_Status(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	sched := scheduler.New(testutil.TestLoggerSilent())
	if err := sched.Add(scheduler.SessionCleanup(store.New(db), testutil.TestLoggerSilent())); err != nil {
		t.Fatalf("Add: %v", err)
	}

	h := NewHealthHandler(testRenderer(t), HealthConfig{
		Probes:   []Probe{okProbe("sessions"), failingProbe("camera")},
		Cameras:  camera.NewRegistry(camera.NoDevice{}, testutil.TestLoggerSilent()),
		Jobs:     sched,
		Sessions: store.New(db),
	})

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, RouteStatus, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{"System Status", statusDegraded, "connection refused", "active_sessions", "session-cleanup", `action="/status/jobs/session-cleanup/run"`, "Nothing logged."} {
		if !strings.Contains(body, want) {
			t.Errorf("status page missing %q", want)
		}
	}
}

func TestHealthHandler_TriggerJob(t *testing.T) {
	sched := scheduler.New(testutil.TestLoggerSilent())
	runs := 0
	_ = sched.Add(scheduler.Job{Name: "count", Schedule: "@every 1h", Run: func(context.Context) error { runs++; return nil }})
	_ = sched.Add(scheduler.Job{Name: "broken", Schedule: "@every 1h", Run: func(context.Context) error { return errors.New("boom") }})

	var logs strings.Builder
	h := NewHealthHandler(testRenderer(t), HealthConfig{
		Jobs:   sched,
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	r := chi.NewRouter()
	r.Post(RouteStatusJobRun, h.TriggerJob)

	tests := []struct {
		name     string
		job      string
		wantCode int
		wantRuns int
		wantLog  string
	}{
		{"runs the job", "count", http.StatusSeeOther, 1, "scheduler job triggered"},
		{"job error is logged", "broken", http.StatusSeeOther, 1, "boom"},
		{"unknown job", "missing", http.StatusNotFound, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status/jobs/"+tt.job+"/run", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusSeeOther {
				if loc := rec.Header().Get("Location"); loc != RouteStatus {
					t.Errorf("Location = %q; want %q", loc, RouteStatus)
				}
			}
			if runs != tt.wantRuns {
				t.Errorf("runs = %d; want %d", runs, tt.wantRuns)
			}
			if tt.wantLog != "" && !strings.Contains(logs.String(), tt.wantLog) {
				t.Errorf("log missing %q: %s", tt.wantLog, logs.String())
			}
		})
	}
}

func TestHealthHandler_TriggerJob_NoScheduler(t *testing.T) {
	h := NewHealthHandler(testRenderer(t), HealthConfig{})
	rec := httptest.NewRecorder()
	h.TriggerJob(rec, httptest.NewRequest(http.MethodPost, "/status/jobs/count/run", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHealthRoutes_ThroughRouter(t *testing.T) {
	app := newTestApp(t, camera.NoDevice{})

	if rec := app.get(RouteHealth); rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d; want %d", rec.Code, http.StatusOK)
	}
	assertRedirect(t, app.get(RouteStatus), RouteLogin)

	app.login()
	rec := app.get(RouteHealth)
	if resp := decodeJSON(t, rec); resp["version"] != "test" {
		t.Errorf("authenticated /health version = %v; want test", resp["version"])
	}
	if rec := app.get(RouteStatus); rec.Code != http.StatusOK {
		t.Errorf("GET /status status = %d; want %d", rec.Code, http.StatusOK)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input uint64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatBytes(tt.input); got != tt.want {
				t.Errorf("formatBytes(%d) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}
