// Package workload provides the built-in frame workloads run by ggbench.
//
// A workload is a ggbench.Workload built from a name and Params:
//
//	w, err := workload.Lookup("circles", workload.Params{Count: 500})
//	if err != nil {
//	    return err
//	}
//	r, err := ggbench.New(ggbench.Manifest{FrameCallback: w})
//
// Workloads that draw through a specific surface backend fail with
// ErrSurfaceMismatch when the run was given another backend. Info.Requires
// lists the capabilities a workload needs; callers add them to the
// manifest so a missing capability is reported as a skip instead.
//
// Available workloads:
//
//   - noop: does nothing, measures the frame pump itself
//   - clear: clears the whole surface to a hue that rotates per frame
//   - circles: fills Count circles on a gg surface
//   - paths: strokes Count cubic Bézier curves on a gg surface
//   - text: draws Count lines of Go Regular text on a gg surface, either
//     with DrawString or, with shaper gotext, as filled HarfBuzz outlines
//   - shaping: shapes Count runs with the HarfBuzz shaper, no drawing
//   - vector: fills Count triangles on a vector surface
//   - fail: returns an error on frame FailAt
package workload
