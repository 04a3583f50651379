// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/staffboard/internal/camera"
	"github.com/olegiv/staffboard/internal/session"
)

// CameraTeardown releases the session's camera when a request leaves the
// employee page the camera was opened on. Navigating anywhere else in the
// protected area counts as leaving the page.
func CameraTeardown(sm *scs.SessionManager, reg *camera.Registry, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := sm.GetString(r.Context(), session.KeyOwner)
			if owner != "" {
				if subject, ok := reg.Subject(owner); ok && !onSubjectPage(r.URL.Path, subject) {
					if reg.Release(owner) {
						logger.Debug("camera released on navigation",
							"owner", owner,
							"subject", subject,
							"path", r.URL.Path,
						)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// onSubjectPage reports whether path is the employee page for subject or
// one of its camera endpoints.
func onSubjectPage(path, subject string) bool {
	page := "/employee/" + subject
	return path == page || strings.HasPrefix(path, page+"/")
}
