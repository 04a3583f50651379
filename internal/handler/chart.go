// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/staffboard/internal/chart"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/view"
)

// Chart geometry in SVG user units.
const (
	barWidth  = 800
	barHeight = 400
	pieCenter = 170
	pieOuter  = 130
	pieInner  = 60
)

// ChartHandler renders the salary chart.
type ChartHandler struct {
	renderer *render.Renderer
	loader   employeeLoader
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(renderer *render.Renderer, source EmployeeSource, tracker *view.Tracker, logger *slog.Logger) *ChartHandler {
	return &ChartHandler{
		renderer: renderer,
		loader:   employeeLoader{source: source, tracker: tracker, logger: logger},
	}
}

// ChartData is the salary chart page state.
type ChartData struct {
	Error  string
	Mode   chart.Mode
	Points []chart.Point
	Bar    chart.BarChart
	Pie    chart.PieChart
}

// Show handles GET /salary-chart. The type query parameter selects bar or
// pie rendering of the same series.
func (h *ChartHandler) Show(w http.ResponseWriter, r *http.Request) {
	data := ChartData{Mode: chart.ParseMode(r.URL.Query().Get("type"))}

	emps, errMsg, ok := h.loader.load(w, r)
	if !ok {
		return
	}
	data.Error = errMsg

	if data.Error == "" {
		data.Points = chart.SeriesOf(emps)
		switch data.Mode {
		case chart.ModePie:
			data.Pie = chart.Pie(data.Points, pieCenter, pieCenter, pieOuter, pieInner)
		default:
			data.Bar = chart.Bar(data.Points, barWidth, barHeight)
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, pageSalaryChart, "Salary Chart", "chart", data)
}
