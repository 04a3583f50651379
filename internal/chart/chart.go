// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package chart derives the salary series shown on the chart page and
// computes SVG geometry for its bar and pie renderings.
package chart

import (
	"strings"

	"github.com/olegiv/staffboard/internal/model"
)

// SeriesLimit is the number of leading records charted.
const SeriesLimit = 10

// Palette holds the segment colours, applied by index modulo its length.
var Palette = []string{
	"#6366f1", "#8b5cf6", "#a855f7", "#d946ef",
	"#ec4899", "#f43f5e", "#f97316", "#eab308",
	"#22c55e", "#06b6d4",
}

// Mode selects the rendering.
type Mode string

// Rendering modes.
const (
	ModeBar Mode = "bar"
	ModePie Mode = "pie"
)

// ParseMode maps the ?type= parameter to a Mode, defaulting to ModeBar.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModePie {
		return ModePie
	}
	return ModeBar
}

// Point is one charted value.
type Point struct {
	Label  string
	Value  float64
	Color  string
	Source model.Employee
}

// SeriesOf takes the first SeriesLimit records. Labels are the first
// whitespace-delimited token of the name, or "N/A".
func SeriesOf(emps []model.Employee) []Point {
	n := min(len(emps), SeriesLimit)
	points := make([]Point, 0, n)
	for i, e := range emps[:n] {
		points = append(points, Point{
			Label:  labelOf(e.Name),
			Value:  e.Salary,
			Color:  Palette[i%len(Palette)],
			Source: e,
		})
	}
	return points
}

func labelOf(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "N/A"
	}
	return fields[0]
}

func total(points []Point) float64 {
	var sum float64
	for _, p := range points {
		if p.Value > 0 {
			sum += p.Value
		}
	}
	return sum
}
