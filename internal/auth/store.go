// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides the dashboard's authentication store: a single
// authenticated flag kept in session-scoped storage.
package auth

import (
	"context"
	"crypto/subtle"
	"sync"
)

// SessionKey is the storage key holding the authenticated flag.
const SessionKey = "dashboard_authenticated"

// sessionValue is the only value ever written under SessionKey.
const sessionValue = "true"

// The single accepted credential pair.
const (
	ValidUsername = "testuser"
	ValidPassword = "Test123"
)

// Messages returned to the login form.
const (
	MsgInvalidCredentials = "Invalid username or password. Please try again."
	MsgMissingFields      = "Please fill in both fields."
)

// SessionStorage is a session-scoped string key/value store.
type SessionStorage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string)
	RemoveItem(key string)
}

// LoginResult reports the outcome of a login attempt.
type LoginResult struct {
	Success bool
	Message string
}

// Authenticator is the capability handed to page views.
type Authenticator interface {
	IsAuthenticated() bool
	Login(username, password string) LoginResult
	Logout()
}

// Store owns the authenticated flag and keeps it in sync with storage.
// Storage is read once, in NewStore.
type Store struct {
	mu            sync.RWMutex
	storage       SessionStorage
	authenticated bool
}

var _ Authenticator = (*Store)(nil)

// NewStore creates a store initialized from the persisted flag.
func NewStore(storage SessionStorage) *Store {
	v, ok := storage.GetItem(SessionKey)
	return &Store{
		storage:       storage,
		authenticated: ok && v == sessionValue,
	}
}

// IsAuthenticated reports the in-memory flag.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Login accepts only the fixed credential pair. On success the flag is
// persisted before the in-memory state flips; on failure nothing changes.
func (s *Store) Login(username, password string) LoginResult {
	if !credentialsMatch(username, password) {
		return LoginResult{Success: false, Message: MsgInvalidCredentials}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.SetItem(SessionKey, sessionValue)
	s.authenticated = true
	return LoginResult{Success: true}
}

// Logout clears the persisted and in-memory flag, whatever the prior state.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.RemoveItem(SessionKey)
	s.authenticated = false
}

// validPasswordHash is the argon2id hash the submitted password is checked
// against, computed on first use.
var validPasswordHash = sync.OnceValues(func() (string, error) {
	return HashArgon2(ValidPassword)
})

func credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(ValidUsername)) == 1

	hash, err := validPasswordHash()
	if err != nil {
		return false
	}
	passOK, err := VerifyArgon2(password, hash)
	return userOK && err == nil && passOK
}

// MemoryStorage is an in-process SessionStorage.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

// GetItem implements SessionStorage.
func (m *MemoryStorage) GetItem(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

// SetItem implements SessionStorage.
func (m *MemoryStorage) SetItem(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

// RemoveItem implements SessionStorage.
func (m *MemoryStorage) RemoveItem(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

type contextKey struct{}

// WithStore returns a context carrying the authenticator.
func WithStore(ctx context.Context, a Authenticator) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the authenticator stored by WithStore, or nil.
func FromContext(ctx context.Context) Authenticator {
	a, _ := ctx.Value(contextKey{}).(Authenticator)
	return a
}
