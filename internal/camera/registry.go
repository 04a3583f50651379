// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package camera

import (
	"log/slog"
	"sync"
	"time"
)

// Registry keeps one controller per session owner, bound to the subject
// (employee) whose page opened it.
type Registry struct {
	devices MediaDevices
	opts    []Option
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*binding
}

type binding struct {
	subject string
	ctrl    *Controller
}

// NewRegistry creates an empty registry whose controllers use devices.
func NewRegistry(devices MediaDevices, logger *slog.Logger, opts ...Option) *Registry {
	return &Registry{
		devices: devices,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*binding),
	}
}

// Acquire returns the owner's controller for subject, creating it if needed.
// A controller bound to a different subject is closed first.
func (r *Registry) Acquire(owner, subject string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.entries[owner]; ok {
		if b.subject == subject {
			return b.ctrl
		}
		b.ctrl.Close()
		r.logger.Debug("camera released on subject change", "owner", owner, "subject", b.subject)
	}

	ctrl := NewController(r.devices, r.opts...)
	r.entries[owner] = &binding{subject: subject, ctrl: ctrl}
	return ctrl
}

// Lookup returns the owner's controller if it is bound to subject.
func (r *Registry) Lookup(owner, subject string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.entries[owner]
	if !ok || b.subject != subject {
		return nil, false
	}
	return b.ctrl, true
}

// Subject returns the subject the owner's controller is bound to.
func (r *Registry) Subject(owner string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.entries[owner]
	if !ok {
		return "", false
	}
	return b.subject, true
}

// Release closes and forgets the owner's controller. It reports whether one
// existed. Safe to call when nothing is held.
func (r *Registry) Release(owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.entries[owner]
	if !ok {
		return false
	}
	b.ctrl.Close()
	delete(r.entries, owner)
	return true
}

// ReapIdle closes controllers inactive for longer than maxIdle and returns
// how many were closed.
func (r *Registry) ReapIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	reaped := 0
	for owner, b := range r.entries {
		if b.ctrl.LastActive().After(cutoff) {
			continue
		}
		b.ctrl.Close()
		delete(r.entries, owner)
		reaped++
	}
	return reaped
}

// CloseAll closes every controller. Used on shutdown.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	for owner, b := range r.entries {
		b.ctrl.Close()
		delete(r.entries, owner)
	}
	return n
}

// Len returns the number of bound controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Streaming returns the number of controllers currently holding a stream.
func (r *Registry) Streaming() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, b := range r.entries {
		if b.ctrl.Active() {
			n++
		}
	}
	return n
}
