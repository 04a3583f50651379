// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/mileusna/useragent"

	"github.com/olegiv/staffboard/internal/auth"
	"github.com/olegiv/staffboard/internal/camera"
	"github.com/olegiv/staffboard/internal/geoip"
	"github.com/olegiv/staffboard/internal/logging"
	"github.com/olegiv/staffboard/internal/middleware"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/session"
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	cameras        *camera.Registry
	geo            *geoip.Lookup
	logger         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. geo may be nil.
func NewAuthHandler(renderer *render.Renderer, sm *scs.SessionManager, cameras *camera.Registry, geo *geoip.Lookup, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		renderer:       renderer,
		sessionManager: sm,
		cameras:        cameras,
		geo:            geo,
		logger:         logger.With("category", logging.CategoryAuth),
	}
}

// LoginData is the login form state.
type LoginData struct {
	Username string
	Error    string
}

// LoginForm renders the login page. Authenticated visitors go to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if a := auth.FromContext(r.Context()); a != nil && a.IsAuthenticated() {
		http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, LoginData{})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, LoginData{Error: auth.MsgMissingFields})
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if username == "" || strings.TrimSpace(password) == "" {
		h.renderLogin(w, r, http.StatusBadRequest, LoginData{Username: username, Error: auth.MsgMissingFields})
		return
	}

	a := auth.FromContext(r.Context())
	if a == nil {
		logAndInternalError(w, "auth store missing from request context")
		return
	}

	result := a.Login(username, password)
	if !result.Success {
		h.logger.Info("failed login attempt",
			"username", username,
			"ip", clientIP(r),
		)
		h.renderLogin(w, r, http.StatusUnauthorized, LoginData{Username: username, Error: result.Message})
		return
	}

	// Session data survives the renewal; only the token changes.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "failed to renew session token", "error", err)
		return
	}

	ip := clientIP(r)
	ua := useragent.Parse(r.UserAgent())
	h.logger.Info("user logged in",
		"username", username,
		"ip", ip,
		"country", h.geo.Country(ip),
		"browser", ua.Name,
		"os", ua.OS,
		"device", deviceType(ua),
	)

	http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
}

// Logout clears the authenticated flag, releases any camera and ends the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if owner := middleware.GetOwner(r); owner != "" && h.cameras.Release(owner) {
		h.logger.Debug("camera released on logout", "owner", owner)
	}

	if a := auth.FromContext(r.Context()); a != nil {
		a.Logout()
	}
	session.ClearPayloads(r.Context(), h.sessionManager)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		h.logger.Error("failed to destroy session", "error", err)
	}

	h.logger.Info("user logged out", "ip", clientIP(r))
	http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginData) {
	err := h.renderer.RenderStatus(w, r, status, pageLogin, render.TemplateData{
		Title: "Sign In",
		Data:  data,
	})
	if err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

// deviceType classifies the client for auth logs.
func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}

// clientIP strips the port from RemoteAddr when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
