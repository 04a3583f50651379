// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestEmployeeRouteKey(t *testing.T) {
	tests := []struct {
		name  string
		e     Employee
		index int
		want  string
	}{
		{"with id", Employee{ID: "42"}, 3, "42"},
		{"without id", Employee{Name: "Ann"}, 3, "3"},
		{"first row", Employee{}, 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.RouteKey(tt.index); got != tt.want {
				t.Errorf("RouteKey(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func TestPhotoDataURL(t *testing.T) {
	p := Photo{Data: []byte{0xff, 0xd8, 0xff}, MimeType: MimeTypeJPEG}

	got := p.DataURL()
	if !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Errorf("DataURL() = %q, want image/jpeg data URL", got)
	}
	if !strings.HasSuffix(got, "/9j/") {
		t.Errorf("DataURL() = %q, want base64 payload /9j/", got)
	}
	if p.IsEmpty() {
		t.Error("IsEmpty() = true for photo with data")
	}
}

func TestPhotoEmpty(t *testing.T) {
	var p Photo
	if !p.IsEmpty() {
		t.Error("IsEmpty() = false for zero photo")
	}
	if got := p.DataURL(); got != "" {
		t.Errorf("DataURL() = %q, want empty", got)
	}
}
