// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// camera teardown, and request context handling.
package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/staffboard/internal/auth"
	"github.com/olegiv/staffboard/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyOwner holds the session owner id.
const ContextKeyOwner ContextKey = "owner"

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// LoadAuth builds an auth store over the request's session and injects it
// into the request context. It must run inside the session manager's
// LoadAndSave middleware.
func LoadAuth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := auth.NewStore(session.NewStorage(r.Context(), sm))
			ctx := auth.WithStore(r.Context(), store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth redirects to the login page unless the injected auth store
// reports an authenticated session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := auth.FromContext(r.Context())
		if a == nil || !a.IsAuthenticated() {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoadOwner stores the session's owner id in the request context, creating
// one on first use.
func LoadOwner(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := session.OwnerID(r.Context(), sm)
			ctx := context.WithValue(r.Context(), ContextKeyOwner, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOwner returns the owner id stored by LoadOwner, or "" if absent.
func GetOwner(r *http.Request) string {
	owner, _ := r.Context().Value(ContextKeyOwner).(string)
	return owner
}
