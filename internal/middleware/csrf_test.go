// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig_Development(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, true, 8080)

	if len(cfg.AuthKey) != 32 {
		t.Errorf("expected 32-byte AuthKey, got %d bytes", len(cfg.AuthKey))
	}

	expected := map[string]bool{
		"localhost:8080": true,
		"127.0.0.1:8080": true,
	}
	if len(cfg.TrustedOrigins) != len(expected) {
		t.Fatalf("TrustedOrigins = %v, want %d entries", cfg.TrustedOrigins, len(expected))
	}
	for _, origin := range cfg.TrustedOrigins {
		if !expected[origin] {
			t.Errorf("unexpected TrustedOrigin %q", origin)
		}
		if strings.HasPrefix(origin, "http") {
			t.Errorf("TrustedOrigin should be host:port, not a URL: %s", origin)
		}
	}
}

func TestDefaultCSRFConfig_UsesPort(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, true, 3000)
	if cfg.TrustedOrigins[0] != "localhost:3000" {
		t.Errorf("TrustedOrigins[0] = %q, want localhost:3000", cfg.TrustedOrigins[0])
	}
}

func TestDefaultCSRFConfig_Production(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, false, 8080)
	if len(cfg.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %v", cfg.TrustedOrigins)
	}
}

func TestCSRF_AllowsSafeMethods(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testCSRFKey, false, 8080))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCSRF_AllowsSameOriginPost(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testCSRFKey, false, 8080))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("same-origin POST status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCSRF_RejectsCrossSitePost(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testCSRFKey, false, 8080))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-site POST status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestCSRF_CustomErrorHandler(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, false, 8080)
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CSRF(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
