package ggbench

import "time"

// Minimum legal frame durations per frame method.
const (
	// CallbackMinimumFrameDuration is one 60 Hz refresh. Shorter deltas come
	// from a scheduler firing twice for the same refresh.
	CallbackMinimumFrameDuration = 16 * time.Millisecond

	// ManualMinimumFrameDuration accepts every measurement: each sample
	// brackets a single invocation instead of spanning two callbacks.
	ManualMinimumFrameDuration = time.Duration(0)
)

// MinimumFrameDuration returns the shortest duration accepted as a sample
// under the given frame method.
func MinimumFrameDuration(m FrameMethod) time.Duration {
	if m == CallbackClock {
		return CallbackMinimumFrameDuration
	}
	return ManualMinimumFrameDuration
}
