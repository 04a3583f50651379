// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models shared across the dashboard:
// employee records, session payloads and captured photos.
package model

import "strconv"

// Employee is a normalized employee record.
// All fields are always set; missing upstream values become zero values.
type Employee struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Position  string  `json:"position"`
	City      string  `json:"city"`
	StartDate string  `json:"start_date"`
	Salary    float64 `json:"salary"`
}

// RouteKey returns the path segment used to address the employee.
// Records without an ID fall back to their row index.
func (e Employee) RouteKey(index int) string {
	if e.ID != "" {
		return e.ID
	}
	return strconv.Itoa(index)
}

// Selection is the employee handed from the dashboard to the details page.
type Selection struct {
	Key      string
	Employee Employee
}
