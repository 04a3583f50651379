// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/olegiv/staffboard/internal/format"
	"github.com/olegiv/staffboard/internal/listing"
	"github.com/olegiv/staffboard/internal/model"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/view"
)

// DashboardHandler renders the employee list.
type DashboardHandler struct {
	renderer *render.Renderer
	loader   employeeLoader
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(renderer *render.Renderer, source EmployeeSource, tracker *view.Tracker, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		renderer: renderer,
		loader:   employeeLoader{source: source, tracker: tracker, logger: logger},
	}
}

// DashboardRow is one employee in the table.
type DashboardRow struct {
	Key      string
	Employee model.Employee
	Salary   string // raw value carried to the details page
}

// CityOption is an entry of the city filter.
type CityOption struct {
	Value    string
	Label    string
	Selected bool
}

// DashboardData is the dashboard page state.
type DashboardData struct {
	Error     string
	Summary   listing.Summary
	Cities    []CityOption
	Query     listing.Query
	Rows      []DashboardRow
	SortURL   string
	SortArrow string
}

// Show handles GET /dashboard.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	query := parseListQuery(r.URL.Query())
	data := DashboardData{
		Query:     query,
		SortURL:   sortURL(query),
		SortArrow: query.Sort.Arrow(),
	}

	emps, errMsg, ok := h.loader.load(w, r)
	if !ok {
		return
	}
	data.Error = errMsg

	if data.Error == "" {
		data.Summary = listing.Summarize(emps)
		for _, city := range listing.Cities(emps) {
			data.Cities = append(data.Cities, CityOption{
				Value:    city,
				Label:    format.TitleCase(city),
				Selected: city == strings.ToLower(query.City),
			})
		}
		for i, e := range listing.Apply(emps, query) {
			data.Rows = append(data.Rows, DashboardRow{
				Key:      e.RouteKey(i),
				Employee: e,
				Salary:   strconv.FormatFloat(e.Salary, 'f', -1, 64),
			})
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, pageDashboard, "Dashboard", "dashboard", data)
}

// parseListQuery reads the list filters from the query string.
func parseListQuery(v url.Values) listing.Query {
	return listing.Query{
		Search: strings.TrimSpace(v.Get("q")),
		City:   strings.TrimSpace(v.Get("city")),
		Sort:   listing.ParseSort(v.Get("sort")),
	}
}

// sortURL links the salary header to the next sort direction, keeping the
// current filters.
func sortURL(q listing.Query) string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.City != "" {
		v.Set("city", q.City)
	}
	if next := q.Sort.Next(); next != listing.SortNone {
		v.Set("sort", string(next))
	}
	if len(v) == 0 {
		return RouteDashboard
	}
	return RouteDashboard + "?" + v.Encode()
}
