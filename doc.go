// Package ggbench measures steady-state per-frame execution time of gg
// rendering workloads.
//
// # Overview
//
// A benchmark run drives a caller-supplied [Workload] once per scheduled
// frame, keeps only the frame durations that represent real work, stops once
// enough data has been collected, and reports the median, mean, standard
// deviation and the sorted sample list. It is meant for comparing rendering
// paths across configurations: buffer preservation, repeat counts, frame
// pump strategies and surface backends.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/ggbench"
//	    "github.com/gogpu/ggbench/surface"
//	)
//
//	title := "circles"
//	r, err := ggbench.New(ggbench.Manifest{
//	    Title: &title,
//	    FrameCallback: func(r *ggbench.Runner) error {
//	        dc := r.Surface().(*surface.GGSurface).Context()
//	        dc.DrawCircle(256, 256, 100)
//	        return dc.Fill()
//	    },
//	}, ggbench.WithSurfaceFactory(surface.FactoryByName("gg")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outcome, err := r.Run(ctx)
//
// # Frame Methods
//
// Two timestamp sources are available:
//   - [CallbackClock] ("requestAnimationFrame"): the scheduler invokes the
//     run once per display refresh and passes the refresh timestamp. Deltas
//     shorter than 16 ms are treated as scheduler double-fires and dropped.
//   - [ManualClock] ("setTimeoutZero"): the run is invoked on the next loop
//     turn; the surface is drained with Finish before and (optionally) after
//     the workload, and each sample is the wall-clock duration of a single
//     invocation.
//
// # Termination
//
// A run stops on the first frame where more than 10 samples have been
// accepted and more than 300 ms have elapsed since the run started. A
// workload error stops it immediately.
//
// # Results
//
// Every run ends in exactly one [Outcome], which is delivered once through
// the configured [Notifier] and rendered as a status string.
package ggbench
