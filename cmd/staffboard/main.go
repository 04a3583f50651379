// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/staffboard/internal/camera"
	"github.com/olegiv/staffboard/internal/config"
	"github.com/olegiv/staffboard/internal/employees"
	"github.com/olegiv/staffboard/internal/geoip"
	"github.com/olegiv/staffboard/internal/handler"
	"github.com/olegiv/staffboard/internal/logging"
	"github.com/olegiv/staffboard/internal/middleware"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/scheduler"
	"github.com/olegiv/staffboard/internal/session"
	"github.com/olegiv/staffboard/internal/store"
	"github.com/olegiv/staffboard/internal/version"
	"github.com/olegiv/staffboard/internal/view"
	"github.com/olegiv/staffboard/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = ""
	appBuildTime = ""
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "staffboard - employee dashboard\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_API_BASE_URL     Employee API base URL\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_SESSION_STORE    Session backend: memory|sqlite|redis (default: memory)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_DB_PATH          SQLite database path (default: ./data/staffboard.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_REDIS_URL        Redis URL for the redis session backend\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_CAMERA_DEVICE    Camera source: testpattern|frames|none (default: testpattern)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_GEOIP_DB_PATH    MaxMind country database for login logs (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STAFFBOARD_CAMERA_FRAMES_DIR  Image directory for the frames camera\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// sessionBackend is the configured session store plus its health probe.
type sessionBackend struct {
	store   scs.Store
	probe   handler.Probe
	counter handler.SessionCounter
	db      *sql.DB
	close   func()
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	recentEvents := logging.NewRecentHandler(textHandler)
	logger := slog.New(recentEvents)
	slog.SetDefault(logger)

	// Session store
	backend, err := openSessionBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	sessionManager := session.New(backend.store, cfg.IsDevelopment())
	slog.Info("session manager initialized", "store", cfg.SessionStore)

	// Camera
	devices, err := camera.NewDevices(cfg.CameraDevice, cfg.CameraFramesDir, cfg.CameraWidth, cfg.CameraHeight)
	if err != nil {
		return fmt.Errorf("initializing camera: %w", err)
	}
	cameras := camera.NewRegistry(devices, logger.With("category", logging.CategoryCamera))
	defer func() {
		if n := cameras.CloseAll(); n > 0 {
			slog.Info("released cameras on shutdown", "count", n)
		}
	}()
	slog.Info("camera initialized", "device", cfg.CameraDevice)

	// Employee API
	employeeClient := employees.NewClient(employees.Config{
		BaseURL:  cfg.APIBaseURL,
		Path:     cfg.APIPath,
		Username: cfg.APIUsername,
		Password: cfg.APIPassword,
		Timeout:  cfg.APITimeout,
	}, logger.With("category", logging.CategoryEmployees))
	slog.Info("employee API configured", "endpoint", employeeClient.Endpoint())

	// GeoIP
	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("GeoIP disabled", "error", err)
		geo = nil
	}
	defer func() { _ = geo.Close() }()
	if geo.Enabled() {
		slog.Info("GeoIP database loaded", "path", cfg.GeoIPDBPath)
	}

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		IsDev:       cfg.IsDevelopment(),
		Version:     versionInfo.Version,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Scheduled jobs
	sched := scheduler.New(logger)
	if err := sched.Add(scheduler.CameraReaper(cameras, cfg.CameraIdleTimeout, logger)); err != nil {
		return fmt.Errorf("scheduling camera reaper: %w", err)
	}
	if backend.db != nil {
		if err := sched.Add(scheduler.SessionCleanup(store.New(backend.db), logger)); err != nil {
			return fmt.Errorf("scheduling session cleanup: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// Login rate limiting
	loginLimiter := middleware.NewLoginRateLimiter(0, 0)
	stopLimiter := make(chan struct{})
	defer close(stopLimiter)
	go loginLimiter.Run(time.Minute, stopLimiter)

	// Handlers
	tracker := view.NewTracker()
	authHandler := handler.NewAuthHandler(renderer, sessionManager, cameras, geo, logger)
	dashboardHandler := handler.NewDashboardHandler(renderer, employeeClient, tracker, logger)
	employeeHandler := handler.NewEmployeeHandler(renderer, sessionManager, cameras, logger, cfg.CameraWidth, cfg.CameraHeight)
	photoHandler := handler.NewPhotoHandler(renderer, sessionManager)
	chartHandler := handler.NewChartHandler(renderer, employeeClient, tracker, logger)
	mapHandler := handler.NewMapHandler(renderer, employeeClient, tracker, logger)
	healthHandler := handler.NewHealthHandler(renderer, handler.HealthConfig{
		Version:  versionInfo.Version,
		Probes:   []handler.Probe{backend.probe},
		Cameras:  cameras,
		Jobs:     sched,
		Events:   recentEvents,
		Sessions: backend.counter,
		Logger:   logger.With("category", logging.CategorySystem),
	})

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized", "hsts", !cfg.IsDevelopment())

	// Static files (1 year cache)
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticHandler := middleware.StaticCache(31536000)(http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/dist/*", staticHandler)

	// Liveness does not touch the session store.
	r.Get(handler.RouteHealthLive, healthHandler.Liveness)

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort)))
		r.Use(middleware.LoadAuth(sessionManager))
		r.Use(middleware.LoadOwner(sessionManager))

		r.Get(handler.RouteHealth, healthHandler.Health)
		r.Get(handler.RouteHealthReady, healthHandler.Readiness)

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginLimiter.Middleware()).Post(handler.RouteLogin, authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.NoStore)
			r.Use(middleware.CameraTeardown(sessionManager, cameras, logger))
			r.Use(middleware.Timeout(cfg.APITimeout + 5*time.Second))

			r.Post(handler.RouteLogout, authHandler.Logout)
			r.Get(handler.RouteDashboard, dashboardHandler.Show)
			r.Get(handler.RouteSalaryChart, chartHandler.Show)
			r.Get(handler.RouteCityMap, mapHandler.Show)
			r.Get(handler.RouteStatus, healthHandler.Status)
			r.Post(handler.RouteStatusJobRun, healthHandler.TriggerJob)

			r.Post(handler.RouteEmployeeSelect, employeeHandler.Select)
			r.Get(handler.RouteEmployee, employeeHandler.Details)
			r.Post(handler.RouteCamera+"/{action}", employeeHandler.Camera)
			r.Get(handler.RouteCameraPreview, employeeHandler.Preview)
			r.Post(handler.RouteCameraRelease, employeeHandler.Release)

			r.Get(handler.RoutePhotoResult, photoHandler.Result)
			r.Get(handler.RoutePhotoDownload, photoHandler.Download)
		})
	})

	// Everything else goes to the login page, which forwards signed-in
	// visitors to the dashboard.
	toLogin := func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, handler.RouteLogin, http.StatusSeeOther)
	}
	r.NotFound(toLogin)
	r.MethodNotAllowed(toLogin)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.APITimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openSessionBackend opens the configured session store.
func openSessionBackend(cfg *config.Config) (*sessionBackend, error) {
	switch {
	case cfg.UseSQLiteSessions():
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}

		slog.Info("initializing database", "path", cfg.DBPath)
		db, err := store.NewDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		if err := store.Migrate(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}

		return &sessionBackend{
			store:   session.NewSQLiteStore(db),
			probe:   handler.Probe{Name: "sessions", Check: db.PingContext},
			counter: store.New(db),
			db:      db,
			close: func() {
				if err := db.Close(); err != nil {
					slog.Error("error closing database connection", "error", err)
				}
			},
		}, nil

	case cfg.UseRedisSessions():
		opts := session.DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		opts.Prefix = cfg.RedisPrefix
		rs, err := session.NewRedisStore(opts)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}

		return &sessionBackend{
			store: rs,
			probe: handler.Probe{Name: "sessions", Check: rs.Ping},
			close: func() {
				if err := rs.Close(); err != nil {
					slog.Error("error closing redis connection", "error", err)
				}
			},
		}, nil

	default:
		return &sessionBackend{
			store: session.NewMemoryStore(),
			probe: handler.Probe{Name: "sessions", Check: func(context.Context) error { return nil }},
			close: func() {},
		}, nil
	}
}
