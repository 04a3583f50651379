// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package chart

import (
	"math"

	"github.com/olegiv/staffboard/internal/format"
)

// Plot margins for the bar rendering, in SVG units.
const (
	marginTop    = 10.0
	marginRight  = 20.0
	marginBottom = 30.0
	marginLeft   = 60.0

	tickCount = 4
	barFill   = 0.7
)

// BarRect is one bar with its axis label position.
type BarRect struct {
	Point
	X, Y, Width, Height float64
	LabelX              float64
}

// Tick is a horizontal grid line with its axis label.
type Tick struct {
	Y     float64
	Value float64
	Label string
}

// BarChart is the computed bar rendering.
type BarChart struct {
	Width, Height float64
	PlotLeft      float64
	PlotRight     float64
	PlotTop       float64
	PlotBottom    float64
	LabelY        float64
	Bars          []BarRect
	Ticks         []Tick
}

// Bar lays out points as vertical bars in a w×h viewport. The y axis runs
// from zero to a rounded maximum split into evenly spaced ticks.
func Bar(points []Point, w, h float64) BarChart {
	c := BarChart{
		Width:      w,
		Height:     h,
		PlotLeft:   marginLeft,
		PlotRight:  w - marginRight,
		PlotTop:    marginTop,
		PlotBottom: h - marginBottom,
		LabelY:     h - marginBottom/3,
	}

	plotW := c.PlotRight - c.PlotLeft
	plotH := c.PlotBottom - c.PlotTop
	if plotW <= 0 || plotH <= 0 {
		return c
	}

	var peak float64
	for _, p := range points {
		peak = math.Max(peak, p.Value)
	}
	top := niceCeil(peak)
	step := top / tickCount

	c.Ticks = make([]Tick, 0, tickCount+1)
	for i := 0; i <= tickCount; i++ {
		v := step * float64(i)
		c.Ticks = append(c.Ticks, Tick{
			Y:     c.PlotBottom - v/top*plotH,
			Value: v,
			Label: format.SalaryThousands(v),
		})
	}

	if len(points) == 0 {
		return c
	}

	slot := plotW / float64(len(points))
	barW := slot * barFill
	c.Bars = make([]BarRect, 0, len(points))
	for i, p := range points {
		v := math.Max(p.Value, 0)
		barH := v / top * plotH
		x := c.PlotLeft + slot*float64(i) + (slot-barW)/2
		c.Bars = append(c.Bars, BarRect{
			Point:  p,
			X:      x,
			Y:      c.PlotBottom - barH,
			Width:  barW,
			Height: barH,
			LabelX: x + barW/2,
		})
	}
	return c
}

// niceCeil rounds v up to 1, 2, 2.5 or 5 times a power of ten so the ticks
// land on readable values. Non-positive input yields 1000.
func niceCeil(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1000
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}
