// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package camera

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/olegiv/staffboard/internal/imaging"
	"github.com/olegiv/staffboard/internal/model"
)

// Encodings of captured stills and preview frames.
const (
	CaptureFormat = "png"
	PreviewFormat = "jpeg"
)

// State is the controller state.
type State int

// Controller states.
const (
	Idle State = iota
	Requesting
	Streaming
	Captured
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Streaming:
		return "streaming"
	case Captured:
		return "captured"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a copy of the controller's visible state.
type Snapshot struct {
	State    State
	Error    string
	Photo    model.Photo
	StreamID string
}

// Controller owns at most one device stream and the photo captured from it.
//
// The device request in Start runs without the lock held. Each request is
// tagged with a token; a grant whose token is no longer current (because
// Stop or Close ran meanwhile) is stopped and dropped.
type Controller struct {
	devices MediaDevices
	surface Surface
	now     func() time.Time

	mu         sync.Mutex
	state      State
	stream     Stream
	photo      model.Photo
	errMsg     string
	request    uint64
	lastActive time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithSurface replaces the default Preview surface.
func WithSurface(s Surface) Option {
	return func(c *Controller) { c.surface = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates an idle controller over devices.
func NewController(devices MediaDevices, opts ...Option) *Controller {
	c := &Controller{
		devices: devices,
		surface: NewPreview(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastActive = c.now()
	return c
}

// Start requests a stream. Valid from Idle or Captured; any previous capture
// and error are cleared first. On failure the controller returns to Idle
// with the error message set and the device error is returned.
func (c *Controller) Start(ctx context.Context) error {
	token, err := c.begin(Idle, Captured)
	if err != nil {
		return err
	}
	return c.await(ctx, token)
}

// Retake discards the captured photo and requests a new stream.
// Valid only from Captured.
func (c *Controller) Retake(ctx context.Context) error {
	token, err := c.begin(Captured)
	if err != nil {
		return err
	}
	return c.await(ctx, token)
}

func (c *Controller) begin(allowed ...State) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := false
	for _, s := range allowed {
		if c.state == s {
			ok = true
			break
		}
	}
	if !ok {
		return 0, ErrInvalidState
	}

	c.releaseLocked()
	c.errMsg = ""
	c.photo = model.Photo{}
	c.state = Requesting
	c.request++
	c.lastActive = c.now()
	return c.request, nil
}

func (c *Controller) await(ctx context.Context, token uint64) error {
	stream, err := c.devices.GetUserMedia(ctx, DefaultConstraints())

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.request || c.state != Requesting {
		StopStream(stream)
		return ErrSuperseded
	}

	if err != nil {
		StopStream(stream)
		c.state = Idle
		c.errMsg = Message(err)
		return err
	}

	c.stream = stream
	c.surface.Attach(stream)
	c.state = Streaming
	c.lastActive = c.now()
	return nil
}

// Capture draws the current frame into a raster of the source size, encodes
// it as PNG and releases the stream. Valid only while Streaming.
func (c *Controller) Capture() (model.Photo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Streaming {
		return model.Photo{}, ErrInvalidState
	}

	w, h := c.surface.Dimensions()
	if w <= 0 || h <= 0 {
		return model.Photo{}, ErrSurfaceNotReady
	}

	frame, err := c.surface.Frame()
	if err != nil {
		return model.Photo{}, fmt.Errorf("camera: read frame: %w", err)
	}

	raster := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(raster, raster.Bounds(), frame, frame.Bounds().Min, draw.Src)

	data, err := imaging.Encode(raster, CaptureFormat, imaging.DefaultJPEGQuality)
	if err != nil {
		return model.Photo{}, fmt.Errorf("camera: encode capture: %w", err)
	}

	c.photo = model.Photo{
		Data:       data,
		MimeType:   imaging.FormatToMimeType(CaptureFormat),
		Width:      w,
		Height:     h,
		CapturedAt: c.now(),
	}
	c.releaseLocked()
	c.state = Captured
	c.lastActive = c.now()
	return c.photo, nil
}

// Stop releases the stream and returns to Idle, keeping any capture. A
// pending request is invalidated. Safe to call in any state.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Requesting:
		c.request++
		c.state = Idle
	case Streaming:
		c.releaseLocked()
		c.state = Idle
	}
	c.lastActive = c.now()
}

// Close tears the controller down: the stream is released whatever the
// state, the capture and error are dropped and pending requests are
// invalidated. Safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.request++
	c.releaseLocked()
	c.photo = model.Photo{}
	c.errMsg = ""
	c.state = Idle
}

// releaseLocked stops all tracks and detaches the stream from the surface.
func (c *Controller) releaseLocked() {
	if c.stream == nil {
		return
	}
	StopStream(c.stream)
	c.surface.Detach()
	c.stream = nil
}

// Snapshot returns the current state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{State: c.state, Error: c.errMsg, Photo: c.photo}
	if c.stream != nil {
		s.StreamID = c.stream.ID()
	}
	return s
}

// Active reports whether a stream is held.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// LastActive returns the time of the last state change or preview read.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// PreviewJPEG encodes the current preview frame. Valid only while Streaming.
func (c *Controller) PreviewJPEG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Streaming {
		return nil, ErrInvalidState
	}
	frame, err := c.surface.Frame()
	if err != nil {
		return nil, fmt.Errorf("camera: read frame: %w", err)
	}
	c.lastActive = c.now()
	return imaging.Encode(frame, PreviewFormat, imaging.DefaultJPEGQuality)
}
