// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/staffboard/internal/camera"
	"github.com/olegiv/staffboard/internal/store"
)

// Job names.
const (
	JobCameraReaper   = "camera-reaper"
	JobSessionCleanup = "session-cleanup"
)

// CameraReaper closes camera controllers left idle by tabs that went away
// without a teardown request.
func CameraReaper(reg *camera.Registry, maxIdle time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:        JobCameraReaper,
		Description: "Release cameras idle for longer than " + maxIdle.String(),
		Schedule:    "@every 30s",
		Run: func(context.Context) error {
			if n := reg.ReapIdle(maxIdle); n > 0 {
				logger.Info("released idle cameras", "count", n)
			}
			return nil
		},
	}
}

// SessionCleanup purges expired rows from the sessions table.
func SessionCleanup(q *store.Queries, logger *slog.Logger) Job {
	return Job{
		Name:        JobSessionCleanup,
		Description: "Delete expired sessions",
		Schedule:    "@every 15m",
		Run: func(ctx context.Context) error {
			n, err := q.DeleteExpiredSessions(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("deleted expired sessions", "count", n)
			}
			return nil
		},
	}
}
