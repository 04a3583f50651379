// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/staffboard/internal/format"
	"github.com/olegiv/staffboard/internal/geo"
	"github.com/olegiv/staffboard/internal/model"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/view"
)

// MapHandler renders the city map.
type MapHandler struct {
	renderer *render.Renderer
	loader   employeeLoader
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(renderer *render.Renderer, source EmployeeSource, tracker *view.Tracker, logger *slog.Logger) *MapHandler {
	return &MapHandler{
		renderer: renderer,
		loader:   employeeLoader{source: source, tracker: tracker, logger: logger},
	}
}

// MapData is the city map page state.
type MapData struct {
	Error   string
	Markers []geo.Marker
	Center  geo.Coordinates
	Zoom    int
	Count   int
}

// Show handles GET /city-map.
func (h *MapHandler) Show(w http.ResponseWriter, r *http.Request) {
	data := MapData{Center: geo.MapCenter, Zoom: geo.DefaultZoom}

	emps, errMsg, ok := h.loader.load(w, r)
	if !ok {
		return
	}
	data.Error = errMsg

	if data.Error == "" {
		data.Markers = geo.Markers(emps, markerLabel)
		data.Count = len(data.Markers)
	}

	renderPage(w, r, h.renderer, http.StatusOK, pageCityMap, "City Map", "map", data)
}

// markerLabel formats the popup fields of a map marker.
func markerLabel(e model.Employee) (string, string) {
	return format.TitleCase(e.City), format.Salary(e.Salary)
}
