// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/staffboard/internal/auth"
	"github.com/olegiv/staffboard/internal/session"
)

func newTestSessions() *scs.SessionManager {
	return session.New(session.NewMemoryStore(), true)
}

// seed runs fn against the loaded session before calling next.
func seed(sm *scs.SessionManager, fn func(r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fn(r)
			next.ServeHTTP(w, r)
		})
	}
}

func TestRequireAuth_NoStore(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	RequireAuth(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != LoginPath {
		t.Errorf("Location = %q, want %q", loc, LoginPath)
	}
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		wantCode int
	}{
		{name: "anonymous redirected", flag: "", wantCode: http.StatusSeeOther},
		{name: "wrong value redirected", flag: "yes", wantCode: http.StatusSeeOther},
		{name: "authenticated passes", flag: "true", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newTestSessions()
			chain := sm.LoadAndSave(
				seed(sm, func(r *http.Request) {
					if tt.flag != "" {
						sm.Put(r.Context(), auth.SessionKey, tt.flag)
					}
				})(LoadAuth(sm)(RequireAuth(okHandler()))),
			)

			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestLoadAuth_InjectsStoreOverSession(t *testing.T) {
	sm := newTestSessions()
	var got auth.Authenticator
	chain := sm.LoadAndSave(LoadAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.FromContext(r.Context())
		got.Login(auth.ValidUsername, auth.ValidPassword)
		if v := sm.GetString(r.Context(), auth.SessionKey); v != "true" {
			t.Errorf("session flag = %q, want true", v)
		}
	})))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	chain.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("auth store not injected")
	}
	if !got.IsAuthenticated() {
		t.Error("store not authenticated after Login")
	}
}

func TestLoadOwner_StableAcrossRequests(t *testing.T) {
	sm := newTestSessions()
	var owners []string
	chain := sm.LoadAndSave(LoadOwner(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owners = append(owners, GetOwner(r))
	})))

	first := httptest.NewRecorder()
	chain.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	req := httptest.NewRequest(http.MethodGet, "/city-map", nil)
	for _, c := range first.Result().Cookies() {
		req.AddCookie(c)
	}
	chain.ServeHTTP(httptest.NewRecorder(), req)

	if len(owners) != 2 || owners[0] == "" {
		t.Fatalf("owners = %v", owners)
	}
	if owners[0] != owners[1] {
		t.Errorf("owner changed between requests: %q then %q", owners[0], owners[1])
	}
}

func TestGetOwner_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetOwner(req); got != "" {
		t.Errorf("GetOwner() = %q, want empty", got)
	}
}
