package ggbench

import "time"

// Termination thresholds. Both must be exceeded before a run stops.
const (
	MinSampleCount = 10
	MinElapsed     = 300 * time.Millisecond
)

// ShouldStop reports whether a run has collected enough data: more than
// MinSampleCount samples and more than MinElapsed since the run started.
func ShouldStop(sampleCount int, elapsed time.Duration) bool {
	return sampleCount > MinSampleCount && elapsed > MinElapsed
}
