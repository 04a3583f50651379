// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/staffboard/internal/employees"
	"github.com/olegiv/staffboard/internal/middleware"
	"github.com/olegiv/staffboard/internal/model"
	"github.com/olegiv/staffboard/internal/view"
)

// EmployeeSource provides the employee records shown by the list, chart and
// map pages.
type EmployeeSource interface {
	FetchEmployees(ctx context.Context) ([]model.Employee, error)
}

// employeeLoader fetches page data on behalf of one page view. Loads are
// keyed by session owner and path, so reopening a page supersedes the
// earlier view of it.
type employeeLoader struct {
	source  EmployeeSource
	tracker *view.Tracker
	logger  *slog.Logger
}

// load fetches the employee records for the current request. It returns the
// records, the message to show on a fetch failure and ok=false when the view
// went away and nothing should be rendered.
func (l employeeLoader) load(w http.ResponseWriter, r *http.Request) ([]model.Employee, string, bool) {
	ticket := l.tracker.Begin(middleware.GetOwner(r) + ":" + r.URL.Path)
	defer ticket.Close()

	emps, err := view.Load(r.Context(), ticket, l.source.FetchEmployees)
	switch {
	case err == nil:
		return emps, "", true
	case errors.Is(err, view.ErrStale), r.Context().Err() != nil:
		l.logger.Debug("page view left before data arrived", "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusNoContent)
		return nil, "", false
	default:
		l.logger.Warn("failed to load employees", "path", r.URL.Path, "error", err)
		return nil, fetchMessage(err), true
	}
}

// fetchMessage returns the text shown for a failed load.
func fetchMessage(err error) string {
	var fe *employees.FetchError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return employees.FallbackMessage
}
