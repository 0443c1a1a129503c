// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "errors"

// Context options recognized by the built-in backends. Unknown options are
// ignored.
const (
	// PreserveDrawingBuffer keeps the drawing buffer between frames. When
	// unset the buffer is discarded at every Present.
	PreserveDrawingBuffer = "preserveDrawingBuffer"

	// AnalyticAA forces the analytic scanline rasterizer on gg surfaces.
	AnalyticAA = "analyticAA"
)

// Capability names shared by the built-in backends.
const (
	CapSoftware = "software"
	CapText     = "text"
	CapVector   = "vector"
)

// ErrInvalidSize is returned when a surface is requested with a width or
// height below 1.
var ErrInvalidSize = errors.New("surface: width and height must be at least 1")

// Surface is the rendering context a benchmark run draws into.
//
// Surfaces are NOT thread-safe. A surface is acquired once per run and used
// only by that run's workload.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// HasCapability reports whether the named optional capability is
	// present.
	HasCapability(name string) bool

	// Finish blocks until all rendering work submitted so far is complete.
	// Failures are also recorded in the error flag.
	Finish() error

	// TakeError returns the first error recorded since the last call and
	// clears the flag. It returns nil when no error is pending.
	TakeError() error

	// Close releases the surface. Close is idempotent.
	Close() error
}

// Presenter is an optional interface for surfaces with a compositing point.
// Present is called once at the end of every frame; surfaces created
// without PreserveDrawingBuffer discard their contents there.
type Presenter interface {
	Present()
}

// Options describes a surface request.
type Options struct {
	Width  int
	Height int

	// ContextOptions holds boolean backend options such as
	// PreserveDrawingBuffer.
	ContextOptions map[string]bool
}

// Option reports whether the named context option is set.
func (o Options) Option(name string) bool {
	return o.ContextOptions[name]
}

func (o Options) validate() error {
	if o.Width < 1 || o.Height < 1 {
		return ErrInvalidSize
	}
	return nil
}

// errorFlag is the sticky error state behind Surface.TakeError.
type errorFlag struct {
	err error
}

// record keeps the first non-nil error until it is taken.
func (f *errorFlag) record(err error) {
	if err != nil && f.err == nil {
		f.err = err
	}
}

func (f *errorFlag) take() error {
	err := f.err
	f.err = nil
	return err
}
