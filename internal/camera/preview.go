// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package camera

import (
	"errors"
	"image"
	"sync"
)

var errNoStream = errors.New("camera: no stream attached")

// Preview is the default Surface: it renders whatever stream is attached.
type Preview struct {
	mu     sync.Mutex
	stream Stream
}

// NewPreview returns an empty preview surface.
func NewPreview() *Preview {
	return &Preview{}
}

// Attach implements Surface.
func (p *Preview) Attach(s Stream) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stream = s
}

// Detach implements Surface.
func (p *Preview) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stream = nil
}

// Dimensions implements Surface.
func (p *Preview) Dimensions() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return 0, 0
	}
	return p.stream.Size()
}

// Frame implements Surface.
func (p *Preview) Frame() (image.Image, error) {
	p.mu.Lock()
	s := p.stream
	p.mu.Unlock()
	if s == nil {
		return nil, errNoStream
	}
	return s.ReadFrame()
}
