package ggbench

import "time"

// AcceptSample decides whether the delta between two consecutive refresh
// timestamps is a real frame duration. It returns the delta and whether it
// is at least minimum; rejected deltas are scheduler artifacts and must not
// be recorded.
func AcceptSample(previous, current, minimum time.Duration) (time.Duration, bool) {
	delta := current - previous
	return delta, delta >= minimum
}
