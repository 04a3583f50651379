// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package format provides display helpers for salaries and names.
package format

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol is prefixed to every formatted salary.
const CurrencySymbol = "₹"

var (
	// Indian grouping, e.g. 1,20,000
	salaryPrinter = message.NewPrinter(language.MustParse("en-IN"))
	titleCaser    = cases.Title(language.English)
)

// Salary formats a value as rupees without fraction digits.
// NaN and infinities format as zero.
func Salary(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	rounded := math.Round(value)
	sign := ""
	if rounded < 0 {
		sign = "-"
	}
	return sign + CurrencySymbol + salaryPrinter.Sprintf("%v", number.Decimal(math.Abs(rounded), number.MaxFractionDigits(0)))
}

// SalaryThousands formats a chart axis tick, e.g. ₹320k.
func SalaryThousands(value float64) string {
	return CurrencySymbol + salaryPrinter.Sprintf("%v", number.Decimal(math.Round(value/1000), number.MaxFractionDigits(0))) + "k"
}

// TitleCase capitalises the first letter of each word and lowercases the rest.
func TitleCase(s string) string {
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(s))
}

// OrDash returns s, or an em dash placeholder when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
