// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
)

var sessionStores = []string{SessionStoreMemory, SessionStoreSQLite, SessionStoreRedis}

// Camera device kinds.
var cameraDevices = []string{"testpattern", "frames", "none"}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SessionSecret string `env:"STAFFBOARD_SESSION_SECRET,required"`
	ServerHost    string `env:"STAFFBOARD_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"STAFFBOARD_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"STAFFBOARD_ENV" envDefault:"development"`
	LogLevel      string `env:"STAFFBOARD_LOG_LEVEL" envDefault:"info"`

	// Employee API
	APIBaseURL  string        `env:"STAFFBOARD_API_BASE_URL" envDefault:"https://backend.jotish.in/backend_dev"`
	APIPath     string        `env:"STAFFBOARD_API_PATH" envDefault:"/gettabledata.php"`
	APIUsername string        `env:"STAFFBOARD_API_USERNAME" envDefault:"test"`
	APIPassword string        `env:"STAFFBOARD_API_PASSWORD" envDefault:"123456"`
	APITimeout  time.Duration `env:"STAFFBOARD_API_TIMEOUT" envDefault:"15s"`

	// Sessions
	SessionStore string `env:"STAFFBOARD_SESSION_STORE" envDefault:"memory"` // memory, sqlite or redis
	DBPath       string `env:"STAFFBOARD_DB_PATH" envDefault:"./data/staffboard.db"`
	RedisURL     string `env:"STAFFBOARD_REDIS_URL"`
	RedisPrefix  string `env:"STAFFBOARD_REDIS_PREFIX" envDefault:"staffboard:session:"`

	// Camera
	CameraDevice      string        `env:"STAFFBOARD_CAMERA_DEVICE" envDefault:"testpattern"` // testpattern, frames or none
	CameraFramesDir   string        `env:"STAFFBOARD_CAMERA_FRAMES_DIR" envDefault:"./data/frames"`
	CameraWidth       int           `env:"STAFFBOARD_CAMERA_WIDTH" envDefault:"640"`
	CameraHeight      int           `env:"STAFFBOARD_CAMERA_HEIGHT" envDefault:"480"`
	CameraIdleTimeout time.Duration `env:"STAFFBOARD_CAMERA_IDLE_TIMEOUT" envDefault:"2m"`

	// Optional MaxMind country database for auth logs
	GeoIPDBPath string `env:"STAFFBOARD_GEOIP_DB_PATH"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisSessions returns true if sessions are kept in Redis.
func (c Config) UseRedisSessions() bool {
	return c.SessionStore == SessionStoreRedis
}

// UseSQLiteSessions returns true if sessions are kept in the SQLite database.
func (c Config) UseSQLiteSessions() bool {
	return c.SessionStore == SessionStoreSQLite
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("STAFFBOARD_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("STAFFBOARD_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("STAFFBOARD_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	cfg.SessionStore = strings.ToLower(cfg.SessionStore)
	if !slices.Contains(sessionStores, cfg.SessionStore) {
		return nil, fmt.Errorf("STAFFBOARD_SESSION_STORE must be one of %s, got %q",
			strings.Join(sessionStores, ", "), cfg.SessionStore)
	}
	if cfg.UseRedisSessions() && cfg.RedisURL == "" {
		return nil, fmt.Errorf("STAFFBOARD_REDIS_URL is required when STAFFBOARD_SESSION_STORE=redis")
	}

	cfg.CameraDevice = strings.ToLower(cfg.CameraDevice)
	if !slices.Contains(cameraDevices, cfg.CameraDevice) {
		return nil, fmt.Errorf("STAFFBOARD_CAMERA_DEVICE must be one of %s, got %q",
			strings.Join(cameraDevices, ", "), cfg.CameraDevice)
	}

	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("STAFFBOARD_API_TIMEOUT must be positive, got %s", cfg.APITimeout)
	}
	if cfg.CameraIdleTimeout <= 0 {
		return nil, fmt.Errorf("STAFFBOARD_CAMERA_IDLE_TIMEOUT must be positive, got %s", cfg.CameraIdleTimeout)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
