// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/staffboard/internal/auth"
	"github.com/olegiv/staffboard/internal/logging"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/scheduler"
)

// Check statuses.
const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// Probe is a named dependency check run by the health endpoints.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// CameraCounter reports camera controller usage.
type CameraCounter interface {
	Len() int
	Streaming() int
}

// JobLister lists scheduled jobs and runs them on demand.
type JobLister interface {
	List() []scheduler.JobInfo
	TriggerNow(ctx context.Context, name string) error
}

// EventSource returns recently logged warnings and errors.
type EventSource interface {
	Recent() []logging.Event
}

// SessionCounter counts stored sessions.
type SessionCounter interface {
	CountActiveSessions(ctx context.Context) (int64, error)
}

// HealthConfig wires the health handler. Nil fields are skipped.
type HealthConfig struct {
	Version  string
	Probes   []Probe
	Cameras  CameraCounter
	Jobs     JobLister
	Events   EventSource
	Sessions SessionCounter
	Logger   *slog.Logger
}

// HealthHandler handles health check requests and the status page.
type HealthHandler struct {
	renderer  *render.Renderer
	cfg       HealthConfig
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(renderer *render.Renderer, cfg HealthConfig) *HealthHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &HealthHandler{
		renderer:  renderer,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for unauthenticated callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed health response for authenticated callers.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Cameras   *CameraInfo      `json:"cameras,omitempty"`
	Sessions  *int64           `json:"sessions,omitempty"`
	Events    []logging.Event  `json:"recent_events,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Name    string `json:"-"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// CameraInfo reports held and streaming camera controllers.
type CameraInfo struct {
	Held      int `json:"held"`
	Streaming int `json:"streaming"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health.
// Returns minimal status for unauthenticated callers, full details for authenticated ones.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := h.runProbes(r.Context())
	overall := overallStatus(checks)

	code := http.StatusOK
	if overall != statusHealthy {
		code = http.StatusServiceUnavailable
	}

	if !isAuthenticated(r) {
		writeJSON(w, code, HealthStatusPublic{Status: overall})
		return
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    h.uptime(),
		Version:   h.cfg.Version,
		Checks:    make(map[string]Check, len(checks)),
		Cameras:   h.cameraInfo(),
		Sessions:  h.sessionCount(r.Context()),
	}
	for _, c := range checks {
		status.Checks[c.Name] = c
	}
	if h.cfg.Events != nil {
		status.Events = h.cfg.Events.Recent()
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = systemInfo()
	}

	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready - checks if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	checks := h.runProbes(r.Context())
	if overallStatus(checks) == statusHealthy {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	resp := map[string]string{"status": "not_ready"}
	// Only include error details for authenticated callers
	if isAuthenticated(r) {
		for _, c := range checks {
			if c.Status != statusHealthy {
				resp[c.Name] = c.Message
			}
		}
	}
	writeJSON(w, http.StatusServiceUnavailable, resp)
}

// StatusData is the status page state.
type StatusData struct {
	Status           string
	Uptime           string
	CamerasStreaming int
	CamerasHeld      int
	Checks           []Check
	Jobs             []scheduler.JobInfo
	Events           []logging.Event
}

// Status handles GET /status, the authenticated HTML view of the health data.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	checks := h.runProbes(r.Context())
	data := StatusData{
		Status: overallStatus(checks),
		Uptime: h.uptime(),
		Checks: checks,
	}
	if n := h.sessionCount(r.Context()); n != nil {
		data.Checks = append(data.Checks, Check{
			Name:    "active_sessions",
			Status:  statusHealthy,
			Message: strconv.FormatInt(*n, 10),
		})
	}
	if info := h.cameraInfo(); info != nil {
		data.CamerasHeld = info.Held
		data.CamerasStreaming = info.Streaming
	}
	if h.cfg.Jobs != nil {
		data.Jobs = h.cfg.Jobs.List()
	}
	if h.cfg.Events != nil {
		data.Events = h.cfg.Events.Recent()
	}

	renderPage(w, r, h.renderer, http.StatusOK, pageStatus, "System Status", "health", data)
}

// TriggerJob handles POST /status/jobs/{name}/run and returns to the status page.
func (h *HealthHandler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Jobs == nil {
		http.NotFound(w, r)
		return
	}

	name := chi.URLParam(r, "name")
	err := h.cfg.Jobs.TriggerNow(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		h.cfg.Logger.Error("scheduled job failed", "name", name, "error", err)
	default:
		h.cfg.Logger.Info("scheduler job triggered", "name", name)
	}

	http.Redirect(w, r, RouteStatus, http.StatusSeeOther)
}

// runProbes runs every probe in order.
func (h *HealthHandler) runProbes(ctx context.Context) []Check {
	checks := make([]Check, 0, len(h.cfg.Probes))
	for _, p := range h.cfg.Probes {
		start := time.Now()
		err := p.Check(ctx)
		c := Check{
			Name:    p.Name,
			Status:  statusHealthy,
			Message: "OK",
			Latency: time.Since(start).String(),
		}
		if err != nil {
			c.Status = statusUnhealthy
			c.Message = err.Error()
		}
		checks = append(checks, c)
	}
	return checks
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}

func (h *HealthHandler) cameraInfo() *CameraInfo {
	if h.cfg.Cameras == nil {
		return nil
	}
	return &CameraInfo{Held: h.cfg.Cameras.Len(), Streaming: h.cfg.Cameras.Streaming()}
}

func (h *HealthHandler) sessionCount(ctx context.Context) *int64 {
	if h.cfg.Sessions == nil {
		return nil
	}
	n, err := h.cfg.Sessions.CountActiveSessions(ctx)
	if err != nil {
		return nil
	}
	return &n
}

// overallStatus is healthy when every check is, degraded otherwise.
func overallStatus(checks []Check) string {
	for _, c := range checks {
		if c.Status != statusHealthy {
			return statusDegraded
		}
	}
	return statusHealthy
}

// isAuthenticated reports whether the request carries an authenticated session.
func isAuthenticated(r *http.Request) bool {
	a := auth.FromContext(r.Context())
	return a != nil && a.IsAuthenticated()
}

// systemInfo returns system-level metrics.
func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
