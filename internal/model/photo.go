// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/base64"
	"time"
)

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// Photo is a still image captured from a camera stream.
type Photo struct {
	Data       []byte // encoded image bytes
	MimeType   string
	Width      int
	Height     int
	CapturedAt time.Time
}

// DataURL returns the photo as a self-contained data URL.
func (p Photo) DataURL() string {
	if len(p.Data) == 0 {
		return ""
	}
	return "data:" + p.MimeType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// IsEmpty reports whether the photo holds no image data.
func (p Photo) IsEmpty() bool {
	return len(p.Data) == 0
}

// PhotoResult is the payload shown on the photo result page.
type PhotoResult struct {
	Employee Employee
	Photo    Photo
}
