// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package camera implements the photo capture flow: a controller that owns
// at most one device stream, the devices that supply streams and a registry
// that binds controllers to browser sessions.
package camera

import (
	"context"
	"errors"
	"image"
)

// Device failures surfaced to the user.
var (
	ErrPermissionDenied = errors.New("camera: permission denied")
	ErrDeviceNotFound   = errors.New("camera: no device found")
)

// Controller precondition failures.
var (
	ErrInvalidState    = errors.New("camera: operation not valid in current state")
	ErrSurfaceNotReady = errors.New("camera: preview surface has no frame dimensions")
	ErrSuperseded      = errors.New("camera: request superseded")
)

// User-facing messages for failed camera requests.
const (
	MsgPermissionDenied = "Camera permission was denied. Please allow camera access in your browser settings and try again."
	MsgDeviceNotFound   = "No camera found on this device."
	msgOtherPrefix      = "Camera error: "
)

// Message maps a device error to the banner text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return MsgPermissionDenied
	case errors.Is(err, ErrDeviceNotFound):
		return MsgDeviceNotFound
	default:
		return msgOtherPrefix + err.Error()
	}
}

// FacingUser selects the front camera.
const FacingUser = "user"

// Constraints describes the requested stream.
type Constraints struct {
	FacingMode  string
	IdealWidth  int
	IdealHeight int
	Audio       bool
}

// DefaultConstraints requests a front-facing, video-only 640×480 stream.
func DefaultConstraints() Constraints {
	return Constraints{
		FacingMode:  FacingUser,
		IdealWidth:  640,
		IdealHeight: 480,
		Audio:       false,
	}
}

// MediaDevices grants streams.
type MediaDevices interface {
	GetUserMedia(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is an active media stream. The device may deliver less than the
// ideal resolution.
type Stream interface {
	ID() string
	Tracks() []Track
	// Size reports the delivered frame dimensions.
	Size() (width, height int)
	// ReadFrame returns the current frame.
	ReadFrame() (image.Image, error)
}

// Track is one media track of a stream.
type Track interface {
	Kind() string
	Stop()
	Live() bool
}

// Surface is the live preview a stream is rendered to.
type Surface interface {
	Attach(s Stream)
	Detach()
	// Dimensions returns the intrinsic frame size, or zeros before a
	// stream with a known size is attached.
	Dimensions() (width, height int)
	Frame() (image.Image, error)
}

// StopStream stops every track of s.
func StopStream(s Stream) {
	if s == nil {
		return
	}
	for _, t := range s.Tracks() {
		t.Stop()
	}
}
