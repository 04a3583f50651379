// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package camera

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(devs MediaDevices, clock *testClock) *Registry {
	r := NewRegistry(devs, slog.New(slog.NewTextHandler(io.Discard, nil)), WithClock(clock.Now))
	r.now = clock.Now
	return r
}

func TestRegistry_AcquireSameSubject(t *testing.T) {
	r := newTestRegistry(NewTestPattern(0, 0), &testClock{now: time.Now()})

	c1 := r.Acquire("owner", "7")
	c2 := r.Acquire("owner", "7")
	assert.Same(t, c1, c2)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Lookup("owner", "7")
	assert.True(t, ok)
	assert.Same(t, c1, got)

	_, ok = r.Lookup("owner", "8")
	assert.False(t, ok)

	subject, ok := r.Subject("owner")
	assert.True(t, ok)
	assert.Equal(t, "7", subject)
}

func TestRegistry_AcquireOtherSubjectReleases(t *testing.T) {
	p := NewTestPattern(0, 0)
	r := newTestRegistry(p, &testClock{now: time.Now()})

	c1 := r.Acquire("owner", "7")
	require.NoError(t, c1.Start(context.Background()))
	assert.Equal(t, 1, r.Streaming())

	c2 := r.Acquire("owner", "8")
	assert.NotSame(t, c1, c2)
	assert.Equal(t, 0, p.Open())
	assert.Equal(t, Idle, c1.Snapshot().State)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Release(t *testing.T) {
	p := NewTestPattern(0, 0)
	r := newTestRegistry(p, &testClock{now: time.Now()})

	assert.False(t, r.Release("nobody"))

	c := r.Acquire("owner", "7")
	require.NoError(t, c.Start(context.Background()))

	assert.True(t, r.Release("owner"))
	assert.False(t, r.Release("owner"))
	assert.Equal(t, 0, p.Open())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ReapIdle(t *testing.T) {
	p := NewTestPattern(0, 0)
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	r := newTestRegistry(p, clock)

	stale := r.Acquire("stale", "1")
	require.NoError(t, stale.Start(context.Background()))

	clock.Advance(10 * time.Minute)
	fresh := r.Acquire("fresh", "2")
	require.NoError(t, fresh.Start(context.Background()))
	assert.Equal(t, 2, p.Open())

	reaped := r.ReapIdle(5 * time.Minute)
	assert.Equal(t, 1, reaped)
	assert.Equal(t, 1, p.Open())

	_, ok := r.Lookup("stale", "1")
	assert.False(t, ok)
	_, ok = r.Lookup("fresh", "2")
	assert.True(t, ok)
}

func TestRegistry_CloseAll(t *testing.T) {
	p := NewTestPattern(0, 0)
	r := newTestRegistry(p, &testClock{now: time.Now()})

	for _, owner := range []string{"a", "b", "c"} {
		require.NoError(t, r.Acquire(owner, "1").Start(context.Background()))
	}
	assert.Equal(t, 3, p.Open())

	assert.Equal(t, 3, r.CloseAll())
	assert.Equal(t, 0, p.Open())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.CloseAll())
}
