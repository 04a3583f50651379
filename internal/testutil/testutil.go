// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the staffboard project.
package testutil

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/staffboard/internal/model"
	"github.com/olegiv/staffboard/internal/store"
)

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "staffboard-test.db")

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// Employees returns a small fixed data set used across handler and view tests.
func Employees() []model.Employee {
	return []model.Employee{
		{ID: "1", Name: "Tiger Nixon", Position: "System Architect", City: "Edinburgh", StartDate: "2011/04/25", Salary: 320800},
		{ID: "2", Name: "Garrett Winters", Position: "Accountant", City: "Tokyo", StartDate: "2011/07/25", Salary: 170750},
		{ID: "3", Name: "Ashton Cox", Position: "Junior Technical Author", City: "San Francisco", StartDate: "2009/01/12", Salary: 86000},
		{ID: "4", Name: "Cedric Kelly", Position: "Senior Javascript Developer", City: "edinburgh", StartDate: "2012/03/29", Salary: 433060},
		{ID: "5", Name: "Airi Satou", Position: "Accountant", City: "Tokyo", StartDate: "2008/11/28", Salary: 162700},
	}
}
