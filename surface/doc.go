// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the rendering contexts that benchmark workloads
// draw into.
//
// A Surface is acquired once per run and exposes the few operations the
// frame timing engine needs from a rendering backend: a capability query,
// a blocking Finish that drains submitted work, and a sticky error flag
// that is checked when the run ends.
//
// # Backends
//
//   - "gg" (priority 50): GGSurface, a gg drawing context. Capabilities
//     "software" and "text" are always present; "accel:*" capabilities
//     reflect the registered gg GPU accelerator.
//   - "vector" (priority 10): VectorSurface, golang.org/x/image/vector
//     rasterizing into an *image.RGBA.
//
// # Registry
//
// Runs name a backend in the suite file or with --backend and acquire it
// through FactoryByName; an empty name picks the preferred usable one.
// Additional backends register under their own name:
//
//	surface.Register("mybackend", 100, factory, available)
//
//	r, err := ggbench.New(m, ggbench.WithSurfaceFactory(surface.FactoryByName("mybackend")))
//
// # Context Options
//
// Options.ContextOptions carries boolean backend switches. Both built-in
// backends honor PreserveDrawingBuffer; gg surfaces also honor AnalyticAA.
package surface
