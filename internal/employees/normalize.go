// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package employees

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/olegiv/staffboard/internal/model"
)

// RowsPath is the location of the row array in the API response.
const RowsPath = "TABLE_DATA.data"

// Column positions within a response row.
const (
	colName = iota
	colPosition
	colCity
	colID
	colStartDate
	colSalary
)

var salaryReplacer = strings.NewReplacer("$", "", "₹", "", ",", "")

// NormalizeRows converts a raw API response body into employee records.
// The second return value is false when the body has no row array at
// RowsPath; the records are then empty, never nil.
func NormalizeRows(body []byte) ([]model.Employee, bool) {
	if !gjson.ValidBytes(body) {
		return []model.Employee{}, false
	}

	rows := gjson.GetBytes(body, RowsPath)
	if !rows.IsArray() {
		return []model.Employee{}, false
	}

	var employees []model.Employee
	rows.ForEach(func(_, row gjson.Result) bool {
		employees = append(employees, normalizeRow(row))
		return true
	})
	if employees == nil {
		employees = []model.Employee{}
	}
	return employees, true
}

// normalizeRow maps one positional row onto a record. It never fails:
// anything missing or malformed becomes a zero value.
func normalizeRow(row gjson.Result) model.Employee {
	var cols []gjson.Result
	if row.IsArray() {
		cols = row.Array()
	}
	col := func(i int) gjson.Result {
		if i < len(cols) {
			return cols[i]
		}
		return gjson.Result{}
	}

	return model.Employee{
		ID:        scalarText(col(colID)),
		Name:      scalarText(col(colName)),
		Position:  scalarText(col(colPosition)),
		City:      scalarText(col(colCity)),
		StartDate: scalarText(col(colStartDate)),
		Salary:    salaryOf(col(colSalary)),
	}
}

// scalarText renders strings and numbers as text. Null, false, objects and
// arrays become "".
func scalarText(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	case gjson.True:
		return "true"
	default:
		return ""
	}
}

func salaryOf(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return ParseSalary(r.Num)
	case gjson.String:
		return ParseSalary(r.Str)
	default:
		return 0
	}
}

// ParseSalary converts a salary value such as "$320,800" to 320800.
// Numbers pass through; currency symbols and grouping commas are stripped
// from strings. Anything unparseable, negative or non-finite yields 0.
func ParseSalary(raw any) float64 {
	var v float64
	switch s := raw.(type) {
	case nil:
		return 0
	case float64:
		v = s
	case float32:
		v = float64(s)
	case int:
		v = float64(s)
	case int64:
		v = float64(s)
	case string:
		cleaned := strings.TrimSpace(salaryReplacer.Replace(s))
		if cleaned == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		v = parsed
	default:
		return 0
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
