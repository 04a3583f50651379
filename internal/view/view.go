// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package view tracks which page views are still displayed so that data
// loads finishing after their view was left are dropped instead of applied.
package view

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned when a view was left or superseded before its data
// load finished.
var ErrStale = errors.New("view: result arrived after the view was left")

// Tracker hands out tickets, one live ticket per key.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	current map[string]*Ticket
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{current: make(map[string]*Ticket)}
}

// Begin starts a view for key, superseding any earlier live ticket for the
// same key.
func (t *Tracker) Begin(key string) *Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.current[key]; ok {
		prev.endLocked()
	}

	t.seq++
	k := &Ticket{
		tracker: t,
		key:     key,
		id:      t.seq,
		done:    make(chan struct{}),
	}
	t.current[key] = k
	return k
}

// Active returns the number of live tickets.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.current)
}

// Ticket is the liveness token of one page view.
type Ticket struct {
	tracker *Tracker
	key     string
	id      uint64
	ended   bool
	done    chan struct{}
}

// Live reports whether the view is still displayed.
func (k *Ticket) Live() bool {
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	return !k.ended
}

// Done is closed when the ticket ends.
func (k *Ticket) Done() <-chan struct{} {
	return k.done
}

// Close ends the ticket. Safe to call more than once.
func (k *Ticket) Close() {
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	k.endLocked()
}

func (k *Ticket) endLocked() {
	if k.ended {
		return
	}
	k.ended = true
	close(k.done)
	if cur, ok := k.tracker.current[k.key]; ok && cur == k {
		delete(k.tracker.current, k.key)
	}
}

// Apply runs fn only while the ticket is live and reports whether it ran.
// fn runs under the tracker lock and must not call back into the tracker.
func (k *Ticket) Apply(fn func()) bool {
	k.tracker.mu.Lock()
	defer k.tracker.mu.Unlock()
	if k.ended {
		return false
	}
	fn()
	return true
}

type result[T any] struct {
	value T
	err   error
}

// Load runs fetch for the view held by ticket and waits for its result.
// Cancellation of ctx is not passed to fetch: a load whose request went away
// keeps running to completion and its result is discarded. Load returns
// ctx.Err() when ctx ends first, or ErrStale when the ticket ends first.
func Load[T any](ctx context.Context, ticket *Ticket, fetch func(context.Context) (T, error)) (T, error) {
	out := make(chan result[T], 1)
	fetchCtx := context.WithoutCancel(ctx)

	go func() {
		v, err := fetch(fetchCtx)
		ticket.Apply(func() {
			out <- result[T]{value: v, err: err}
		})
	}()

	var zero T
	select {
	case r := <-out:
		return r.value, r.err
	case <-ticket.Done():
		// Apply may have delivered just before the ticket ended.
		select {
		case r := <-out:
			return r.value, r.err
		default:
			return zero, ErrStale
		}
	case <-ctx.Done():
		ticket.Close()
		return zero, ctx.Err()
	}
}
