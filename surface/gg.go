// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"slices"

	"github.com/gogpu/gg"
)

// accelCapabilities maps capability names to the gg accelerator operations
// that back them.
var accelCapabilities = map[string]gg.AcceleratedOp{
	"accel:fill":       gg.AccelFill,
	"accel:stroke":     gg.AccelStroke,
	"accel:scene":      gg.AccelScene,
	"accel:text":       gg.AccelText,
	"accel:image":      gg.AccelImage,
	"accel:gradient":   gg.AccelGradient,
	"accel:circle-sdf": gg.AccelCircleSDF,
	"accel:rrect-sdf":  gg.AccelRRectSDF,
}

// GGSurface is a surface backed by a gg drawing context.
//
// Drawing errors that should not stop a run can be recorded with Check;
// they surface as a context error when the run finishes, the same way a
// GPU flush failure does.
type GGSurface struct {
	dc       *gg.Context
	preserve bool
	flag     errorFlag
}

var (
	_ Surface   = (*GGSurface)(nil)
	_ Presenter = (*GGSurface)(nil)
)

// NewGGSurface creates a gg-backed surface.
func NewGGSurface(opts Options) (*GGSurface, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	dc := gg.NewContext(opts.Width, opts.Height)
	if opts.Option(AnalyticAA) {
		dc.SetRasterizerMode(gg.RasterizerAnalytic)
	}
	return &GGSurface{
		dc:       dc,
		preserve: opts.Option(PreserveDrawingBuffer),
	}, nil
}

// Context returns the underlying drawing context.
func (s *GGSurface) Context() *gg.Context {
	return s.dc
}

// Width implements Surface.
func (s *GGSurface) Width() int { return s.dc.Width() }

// Height implements Surface.
func (s *GGSurface) Height() int { return s.dc.Height() }

// HasCapability implements Surface. "software" and "text" are always
// present; "accel:*" capabilities are answered by the registered gg
// accelerator.
func (s *GGSurface) HasCapability(name string) bool {
	switch name {
	case CapSoftware, CapText:
		return true
	}
	op, ok := accelCapabilities[name]
	if !ok {
		return false
	}
	a := gg.Accelerator()
	return a != nil && a.CanAccelerate(op)
}

// Capabilities lists the capabilities currently present, sorted by name.
func (s *GGSurface) Capabilities() []string {
	caps := []string{CapSoftware, CapText}
	for name := range accelCapabilities {
		if s.HasCapability(name) {
			caps = append(caps, name)
		}
	}
	slices.Sort(caps)
	return caps
}

// Check records err in the error flag and returns it unchanged.
func (s *GGSurface) Check(err error) error {
	s.flag.record(err)
	return err
}

// Finish implements Surface by flushing pending GPU accelerator work into
// the pixel buffer. Without an accelerator it returns immediately.
func (s *GGSurface) Finish() error {
	return s.Check(s.dc.FlushGPU())
}

// TakeError implements Surface.
func (s *GGSurface) TakeError() error {
	return s.flag.take()
}

// Present implements Presenter.
func (s *GGSurface) Present() {
	if !s.preserve {
		s.dc.Clear()
	}
}

// Close implements Surface.
func (s *GGSurface) Close() error {
	return s.dc.Close()
}
