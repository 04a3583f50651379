// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/staffboard/internal/model"
)

func salaries(emps []model.Employee) []float64 {
	out := make([]float64, len(emps))
	for i, e := range emps {
		out[i] = e.Salary
	}
	return out
}

func TestSortToggleSequence(t *testing.T) {
	emps := []model.Employee{
		{Name: "A", Salary: 50},
		{Name: "B", Salary: 10},
		{Name: "C", Salary: 30},
	}

	s := SortNone
	assert.Equal(t, []float64{50, 10, 30}, salaries(Apply(emps, Query{Sort: s})))

	s = s.Next()
	assert.Equal(t, SortAsc, s)
	assert.Equal(t, []float64{10, 30, 50}, salaries(Apply(emps, Query{Sort: s})))

	s = s.Next()
	assert.Equal(t, SortDesc, s)
	assert.Equal(t, []float64{50, 30, 10}, salaries(Apply(emps, Query{Sort: s})))

	s = s.Next()
	assert.Equal(t, SortNone, s)
	assert.Equal(t, []float64{50, 10, 30}, salaries(Apply(emps, Query{Sort: s})))

	assert.Equal(t, []float64{50, 10, 30}, salaries(emps), "source must not be mutated")
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want Sort
	}{
		{"", SortNone},
		{"asc", SortAsc},
		{"DESC", SortDesc},
		{" asc ", SortAsc},
		{"sideways", SortNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSort(tt.in), "ParseSort(%q)", tt.in)
	}
}

func TestSortArrow(t *testing.T) {
	assert.Equal(t, "", SortNone.Arrow())
	assert.Equal(t, " ↑", SortAsc.Arrow())
	assert.Equal(t, " ↓", SortDesc.Arrow())
}

func TestApply_Filters(t *testing.T) {
	emps := []model.Employee{
		{Name: "Tiger Nixon", City: "Edinburgh", Salary: 320800},
		{Name: "Garrett Winters", City: "Tokyo", Salary: 170750},
		{Name: "Ashton Cox", City: "San Francisco", Salary: 86000},
		{Name: "Cedric Kelly", City: "edinburgh", Salary: 433060},
		{Name: "", City: "", Salary: 0},
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"no filters", Query{}, []string{"Tiger Nixon", "Garrett Winters", "Ashton Cox", "Cedric Kelly", ""}},
		{"search case-insensitive", Query{Search: "NIX"}, []string{"Tiger Nixon"}},
		{"search substring", Query{Search: "e"}, []string{"Tiger Nixon", "Garrett Winters", "Cedric Kelly"}},
		{"city exact case-insensitive", Query{City: "EDINBURGH"}, []string{"Tiger Nixon", "Cedric Kelly"}},
		{"city is not substring", Query{City: "edin"}, []string{}},
		{"search then city", Query{Search: "kelly", City: "edinburgh"}, []string{"Cedric Kelly"}},
		{"filter then sort", Query{City: "edinburgh", Sort: SortDesc}, []string{"Cedric Kelly", "Tiger Nixon"}},
		{"no match", Query{Search: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(emps, tt.query)
			names := make([]string, 0, len(got))
			for _, e := range got {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestApply_StableSort(t *testing.T) {
	emps := []model.Employee{
		{Name: "first", Salary: 10},
		{Name: "second", Salary: 10},
		{Name: "third", Salary: 5},
	}
	got := Apply(emps, Query{Sort: SortAsc})
	assert.Equal(t, "third", got[0].Name)
	assert.Equal(t, "first", got[1].Name)
	assert.Equal(t, "second", got[2].Name)
}

func TestSummarize(t *testing.T) {
	emps := []model.Employee{
		{Name: "Alice", Salary: 100},
		{Name: "Bob", Salary: 200},
		{Name: "Carol", Salary: 300},
	}

	assert.Equal(t, Summary{Total: 3, Average: 200, Max: 300}, Summarize(emps))
}

func TestSummarize_Edges(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	got := Summarize([]model.Employee{{Salary: 1}, {Salary: 2}})
	assert.Equal(t, float64(2), got.Average, "1.5 rounds half away from zero")

	got = Summarize([]model.Employee{{Salary: 0}, {Salary: 0}})
	assert.Equal(t, Summary{Total: 2}, got)
}

func TestCities(t *testing.T) {
	emps := []model.Employee{
		{City: "Tokyo"},
		{City: "edinburgh"},
		{City: ""},
		{City: "TOKYO"},
		{City: "Edinburgh"},
		{City: "London"},
	}
	assert.Equal(t, []string{"edinburgh", "london", "tokyo"}, Cities(emps))
	assert.Empty(t, Cities(nil))
}
