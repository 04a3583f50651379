// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geo resolves employee cities to map coordinates.
// The employee API carries no coordinates, so a static table is used.
package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/olegiv/staffboard/internal/model"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultCoordinates is used for cities missing from the table.
var DefaultCoordinates = Coordinates{Lat: 30.0, Lng: 10.0}

// MapCenter and DefaultZoom describe the initial world-level map view.
var (
	MapCenter   = Coordinates{Lat: 30, Lng: 20}
	DefaultZoom = 2
)

var cityCoordinates = map[string]Coordinates{
	// Cities returned by the employee API
	"edinburgh":     {55.9533, -3.1883},
	"tokyo":         {35.6762, 139.6503},
	"san francisco": {37.7749, -122.4194},
	"london":        {51.5074, -0.1278},
	"new york":      {40.7128, -74.0060},
	"singapore":     {1.3521, 103.8198},
	"sydney":        {-33.8688, 151.2093},

	// Indian cities
	"mumbai":     {19.0760, 72.8777},
	"delhi":      {28.7041, 77.1025},
	"new delhi":  {28.6139, 77.2090},
	"bangalore":  {12.9716, 77.5946},
	"bengaluru":  {12.9716, 77.5946},
	"hyderabad":  {17.3850, 78.4867},
	"ahmedabad":  {23.0225, 72.5714},
	"chennai":    {13.0827, 80.2707},
	"kolkata":    {22.5726, 88.3639},
	"pune":       {18.5204, 73.8567},
	"jaipur":     {26.9124, 75.7873},
	"surat":      {21.1702, 72.8311},
	"lucknow":    {26.8467, 80.9462},
	"kanpur":     {26.4499, 80.3319},
	"nagpur":     {21.1458, 79.0882},
	"indore":     {22.7196, 75.8577},
	"bhopal":     {23.2599, 77.4126},
	"noida":      {28.5355, 77.3910},
	"gurgaon":    {28.4595, 77.0266},
	"gurugram":   {28.4595, 77.0266},
	"chandigarh": {30.7333, 76.7794},
	"kochi":      {9.9312, 76.2673},
}

// Lookup returns the coordinates of a city. Matching ignores case, surrounding
// whitespace and diacritics. Unknown or empty names resolve to DefaultCoordinates.
func Lookup(city string) Coordinates {
	key := cityKey(city)
	if key == "" {
		return DefaultCoordinates
	}
	if c, ok := cityCoordinates[key]; ok {
		return c
	}
	return DefaultCoordinates
}

// Known reports whether the city has an entry in the table.
func Known(city string) bool {
	_, ok := cityCoordinates[cityKey(city)]
	return ok
}

func cityKey(city string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, city)
	if err != nil {
		folded = city
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Marker is a map pin for one employee.
type Marker struct {
	Coordinates
	Employee model.Employee `json:"-"`
	Name     string         `json:"name"`
	City     string         `json:"city"`
	Salary   string         `json:"salary"`
}

// Markers places every employee with a non-empty city on the map.
// Unresolved cities are pinned at DefaultCoordinates rather than dropped.
// label formats the popup fields; it may be nil.
func Markers(employees []model.Employee, label func(model.Employee) (city, salary string)) []Marker {
	markers := make([]Marker, 0, len(employees))
	for _, e := range employees {
		if e.City == "" {
			continue
		}
		m := Marker{
			Coordinates: Lookup(e.City),
			Employee:    e,
			Name:        e.Name,
			City:        e.City,
		}
		if label != nil {
			m.City, m.Salary = label(e)
		}
		markers = append(markers, m)
	}
	return markers
}
