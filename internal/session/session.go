// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the scs session manager and the values the
// dashboard keeps in a session.
package session

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/staffboard/internal/model"
)

// Lifetime bounds a session even while the browser stays open.
const Lifetime = 12 * time.Hour

func init() {
	// Transient payloads are stored as session values.
	gob.Register(model.Selection{})
	gob.Register(model.PhotoResult{})
	gob.Register(model.Employee{})
}

// New creates a session manager backed by store. The cookie is a browser
// session cookie, so the authenticated flag ends with the browsing session.
func New(store scs.Store, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = Lifetime
	sm.Cookie.Persist = false
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if isDev {
		sm.Cookie.Name = "staffboard_session"
	} else {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// NewMemoryStore returns an in-process store.
func NewMemoryStore() scs.Store {
	return memstore.New()
}

// NewSQLiteStore returns a store using the sessions table in db.
func NewSQLiteStore(db *sql.DB) scs.Store {
	return sqlite3store.New(db)
}
