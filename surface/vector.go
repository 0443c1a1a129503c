// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/vector"
)

// VectorSurface is a CPU surface rasterizing with golang.org/x/image/vector
// into an *image.RGBA. Rendering is immediate, so Finish never blocks.
type VectorSurface struct {
	img      *image.RGBA
	z        *vector.Rasterizer
	preserve bool
	flag     errorFlag
	closed   bool
}

var (
	_ Surface   = (*VectorSurface)(nil)
	_ Presenter = (*VectorSurface)(nil)
)

// NewVectorSurface creates a vector-rasterizer surface.
func NewVectorSurface(opts Options) (*VectorSurface, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &VectorSurface{
		img:      image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		z:        vector.NewRasterizer(opts.Width, opts.Height),
		preserve: opts.Option(PreserveDrawingBuffer),
	}, nil
}

// Image returns the target image.
func (s *VectorSurface) Image() *image.RGBA { return s.img }

// Rasterizer returns the path rasterizer. Paths accumulate until Fill.
func (s *VectorSurface) Rasterizer() *vector.Rasterizer { return s.z }

// Fill composites the accumulated path over the image with a solid color
// and resets the rasterizer.
func (s *VectorSurface) Fill(c color.Color) {
	b := s.img.Bounds()
	s.z.DrawOp = draw.Over
	s.z.Draw(s.img, b, image.NewUniform(c), image.Point{})
	s.z.Reset(b.Dx(), b.Dy())
}

// Width implements Surface.
func (s *VectorSurface) Width() int { return s.img.Bounds().Dx() }

// Height implements Surface.
func (s *VectorSurface) Height() int { return s.img.Bounds().Dy() }

// HasCapability implements Surface.
func (s *VectorSurface) HasCapability(name string) bool {
	return name == CapSoftware || name == CapVector
}

// Check records err in the error flag and returns it unchanged.
func (s *VectorSurface) Check(err error) error {
	s.flag.record(err)
	return err
}

// Finish implements Surface.
func (s *VectorSurface) Finish() error { return nil }

// TakeError implements Surface.
func (s *VectorSurface) TakeError() error { return s.flag.take() }

// Present implements Presenter.
func (s *VectorSurface) Present() {
	if !s.preserve {
		draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	}
}

// Close implements Surface.
func (s *VectorSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.img = image.NewRGBA(image.Rectangle{})
	return nil
}
