// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package chart

import (
	"fmt"
	"math"
	"strings"
)

// Slice is one donut segment.
type Slice struct {
	Point
	Share  float64
	Path   string
	LabelX float64
	LabelY float64
}

// PieChart is the computed donut rendering.
type PieChart struct {
	CX, CY       float64
	Outer, Inner float64
	Total        float64
	Slices       []Slice
}

// Pie lays out points as donut segments around (cx, cy). Segments start at
// 12 o'clock and run clockwise. Non-positive values get no segment.
func Pie(points []Point, cx, cy, outer, inner float64) PieChart {
	c := PieChart{CX: cx, CY: cy, Outer: outer, Inner: inner, Total: total(points)}
	if c.Total <= 0 {
		return c
	}

	labelR := outer + 18
	angle := -math.Pi / 2
	for _, p := range points {
		if p.Value <= 0 {
			continue
		}
		share := p.Value / c.Total
		sweep := share * 2 * math.Pi
		mid := angle + sweep/2
		c.Slices = append(c.Slices, Slice{
			Point:  p,
			Share:  share,
			Path:   donutPath(cx, cy, outer, inner, angle, angle+sweep),
			LabelX: cx + labelR*math.Cos(mid),
			LabelY: cy + labelR*math.Sin(mid),
		})
		angle += sweep
	}
	return c
}

// Percent formats a share as a whole percentage.
func (s Slice) Percent() string {
	return fmt.Sprintf("%.0f%%", s.Share*100)
}

// donutPath returns an SVG path for the ring segment between a0 and a1.
// A full circle is drawn as two half arcs, since a single arc with equal
// endpoints renders nothing.
func donutPath(cx, cy, outer, inner, a0, a1 float64) string {
	if a1-a0 >= 2*math.Pi-1e-9 {
		mid := a0 + math.Pi
		return donutPath(cx, cy, outer, inner, a0, mid) + " " + donutPath(cx, cy, outer, inner, mid, a0+2*math.Pi)
	}

	large := 0
	if a1-a0 > math.Pi {
		large = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s ", num(cx+outer*math.Cos(a0)), num(cy+outer*math.Sin(a0)))
	fmt.Fprintf(&b, "A %s %s 0 %d 1 %s %s ", num(outer), num(outer), large,
		num(cx+outer*math.Cos(a1)), num(cy+outer*math.Sin(a1)))
	if inner > 0 {
		fmt.Fprintf(&b, "L %s %s ", num(cx+inner*math.Cos(a1)), num(cy+inner*math.Sin(a1)))
		fmt.Fprintf(&b, "A %s %s 0 %d 0 %s %s ", num(inner), num(inner), large,
			num(cx+inner*math.Cos(a0)), num(cy+inner*math.Sin(a0)))
	} else {
		fmt.Fprintf(&b, "L %s %s ", num(cx), num(cy))
	}
	b.WriteString("Z")
	return b.String()
}

func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
