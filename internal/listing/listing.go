// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package listing implements the dashboard's list transforms: name search,
// city filter, the three-state salary sort and summary statistics.
package listing

import (
	"math"
	"slices"
	"strings"

	"github.com/olegiv/staffboard/internal/model"
)

// Sort is the salary sort direction.
type Sort string

// Sort directions, in toggle order.
const (
	SortNone Sort = ""
	SortAsc  Sort = "asc"
	SortDesc Sort = "desc"
)

// ParseSort maps a query parameter value to a Sort. Unknown values mean SortNone.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortAsc:
		return SortAsc
	case SortDesc:
		return SortDesc
	default:
		return SortNone
	}
}

// Next advances the toggle: none -> asc -> desc -> none.
func (s Sort) Next() Sort {
	switch s {
	case SortNone:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortNone
	}
}

// Arrow returns the header indicator for the direction.
func (s Sort) Arrow() string {
	switch s {
	case SortAsc:
		return " ↑"
	case SortDesc:
		return " ↓"
	default:
		return ""
	}
}

// Query holds the visible-list controls.
type Query struct {
	Search string
	City   string
	Sort   Sort
}

// Apply returns the visible list for q. The source slice is never modified.
// Filters run first (search, then city) and the salary sort last.
func Apply(emps []model.Employee, q Query) []model.Employee {
	result := make([]model.Employee, 0, len(emps))

	term := strings.ToLower(q.Search)
	city := strings.ToLower(q.City)
	for _, e := range emps {
		if term != "" && !strings.Contains(strings.ToLower(e.Name), term) {
			continue
		}
		if city != "" && strings.ToLower(e.City) != city {
			continue
		}
		result = append(result, e)
	}

	switch q.Sort {
	case SortAsc:
		slices.SortStableFunc(result, func(a, b model.Employee) int {
			return compareSalary(a.Salary, b.Salary)
		})
	case SortDesc:
		slices.SortStableFunc(result, func(a, b model.Employee) int {
			return compareSalary(b.Salary, a.Salary)
		})
	}

	return result
}

func compareSalary(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Summary holds the dashboard's stat cards.
type Summary struct {
	Total   int
	Average float64
	Max     float64
}

// Summarize computes statistics over the full data set. An empty set yields
// the zero Summary.
func Summarize(emps []model.Employee) Summary {
	if len(emps) == 0 {
		return Summary{}
	}

	var sum float64
	maxSalary := math.Inf(-1)
	for _, e := range emps {
		sum += e.Salary
		if e.Salary > maxSalary {
			maxSalary = e.Salary
		}
	}

	return Summary{
		Total:   len(emps),
		Average: math.Round(sum / float64(len(emps))),
		Max:     maxSalary,
	}
}

// Cities returns the distinct lower-cased cities, sorted, blanks excluded.
func Cities(emps []model.Employee) []string {
	seen := make(map[string]struct{}, len(emps))
	cities := make([]string, 0)
	for _, e := range emps {
		c := strings.ToLower(e.City)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cities = append(cities, c)
	}
	slices.Sort(cities)
	return cities
}
