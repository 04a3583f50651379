// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/olegiv/staffboard/internal/imaging"
)

// Device kinds accepted by NewDevices.
const (
	DeviceTestPattern = "testpattern"
	DeviceFrames      = "frames"
	DeviceNone        = "none"
)

// NewDevices builds the MediaDevices named by kind.
func NewDevices(kind, framesDir string, width, height int) (MediaDevices, error) {
	switch kind {
	case DeviceTestPattern, "":
		return NewTestPattern(width, height), nil
	case DeviceFrames:
		return NewStillFrames(framesDir), nil
	case DeviceNone:
		return NoDevice{}, nil
	default:
		return nil, fmt.Errorf("unknown camera device %q", kind)
	}
}

// deliveredSize clamps the ideal size to what the device supports.
func deliveredSize(c Constraints, nativeW, nativeH int) (int, int) {
	w, h := nativeW, nativeH
	if c.IdealWidth > 0 && c.IdealWidth < w {
		w = c.IdealWidth
	}
	if c.IdealHeight > 0 && c.IdealHeight < h {
		h = c.IdealHeight
	}
	return w, h
}

// videoTrack is a single video track whose frames come from a source func.
type videoTrack struct {
	live    atomic.Bool
	onStop  func()
	stopped sync.Once
}

func newVideoTrack(onStop func()) *videoTrack {
	t := &videoTrack{onStop: onStop}
	t.live.Store(true)
	return t
}

func (t *videoTrack) Kind() string { return "video" }
func (t *videoTrack) Live() bool   { return t.live.Load() }

func (t *videoTrack) Stop() {
	t.stopped.Do(func() {
		t.live.Store(false)
		if t.onStop != nil {
			t.onStop()
		}
	})
}

var errTrackEnded = errors.New("camera: track ended")

// frameStream is a one-track stream reading frames from render.
type frameStream struct {
	id     string
	width  int
	height int
	track  *videoTrack
	render func() (image.Image, error)
}

func (s *frameStream) ID() string       { return s.id }
func (s *frameStream) Tracks() []Track  { return []Track{s.track} }
func (s *frameStream) Size() (int, int) { return s.width, s.height }

func (s *frameStream) ReadFrame() (image.Image, error) {
	if !s.track.Live() {
		return nil, errTrackEnded
	}
	return s.render()
}

// TestPattern is a synthetic camera drawing colour bars, a moving sweep and
// a clock.
type TestPattern struct {
	width, height int
	now           func() time.Time
	open          atomic.Int64
}

// NewTestPattern creates a synthetic camera with the given native size.
func NewTestPattern(width, height int) *TestPattern {
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}
	return &TestPattern{width: width, height: height, now: time.Now}
}

// Open returns the number of streams whose tracks are still live.
func (p *TestPattern) Open() int {
	return int(p.open.Load())
}

// GetUserMedia implements MediaDevices.
func (p *TestPattern) GetUserMedia(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := deliveredSize(c, p.width, p.height)
	p.open.Add(1)
	s := &frameStream{
		id:     uuid.NewString(),
		width:  w,
		height: h,
		track:  newVideoTrack(func() { p.open.Add(-1) }),
	}
	s.render = func() (image.Image, error) {
		return p.draw(w, h), nil
	}
	return s, nil
}

var patternBars = []color.RGBA{
	{0xc0, 0xc0, 0xc0, 0xff},
	{0xc0, 0xc0, 0x00, 0xff},
	{0x00, 0xc0, 0xc0, 0xff},
	{0x00, 0xc0, 0x00, 0xff},
	{0xc0, 0x00, 0xc0, 0xff},
	{0xc0, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xc0, 0xff},
}

func (p *TestPattern) draw(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	barW := max(w/len(patternBars), 1)
	for i, c := range patternBars {
		r := image.Rect(i*barW, 0, (i+1)*barW, h)
		if i == len(patternBars)-1 {
			r.Max.X = w
		}
		draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	now := p.now()
	sweep := int(now.UnixMilli()/10) % max(w, 1)
	draw.Draw(img, image.Rect(sweep, 0, sweep+4, h), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	band := image.Rect(0, h-24, w, h)
	draw.Draw(img, band, &image.Uniform{C: color.RGBA{0x10, 0x10, 0x10, 0xff}}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, h-8),
	}
	d.DrawString(now.Format("15:04:05.000"))
	return img
}

// StillFrames is a camera that cycles through the images in a directory.
type StillFrames struct {
	dir      string
	interval time.Duration
	now      func() time.Time
}

// NewStillFrames creates a camera reading frames from dir.
func NewStillFrames(dir string) *StillFrames {
	return &StillFrames{dir: dir, interval: time.Second, now: time.Now}
}

// GetUserMedia implements MediaDevices. A missing or empty directory means
// no device; an unreadable one means permission denied.
func (f *StillFrames) GetUserMedia(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrDeviceNotFound
	case errors.Is(err, fs.ErrPermission):
		return nil, ErrPermissionDenied
	case err != nil:
		return nil, fmt.Errorf("read frames directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || imaging.FormatFromFilename(e.Name()) == "" {
			continue
		}
		paths = append(paths, filepath.Join(f.dir, e.Name()))
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		return nil, ErrDeviceNotFound
	}

	frames := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := imaging.LoadFrame(p, c.IdealWidth, c.IdealHeight)
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
	}

	// the stream size is that of the first frame; others are drawn into it
	b := frames[0].Bounds()
	started := f.now()
	s := &frameStream{
		id:     uuid.NewString(),
		width:  b.Dx(),
		height: b.Dy(),
		track:  newVideoTrack(nil),
	}
	s.render = func() (image.Image, error) {
		i := 0
		if f.interval > 0 {
			i = int(f.now().Sub(started)/f.interval) % len(frames)
		}
		return frames[i], nil
	}
	return s, nil
}

// NoDevice is a MediaDevices without any camera.
type NoDevice struct{}

// GetUserMedia implements MediaDevices.
func (NoDevice) GetUserMedia(context.Context, Constraints) (Stream, error) {
	return nil, ErrDeviceNotFound
}
