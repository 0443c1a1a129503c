package frame

import "time"

// WallClock is the independent clock read by manually timed runs.
type WallClock interface {
	Now() time.Time
}

// WallClockFunc adapts a function to the WallClock interface.
type WallClockFunc func() time.Time

// Now implements WallClock.
func (f WallClockFunc) Now() time.Time { return f() }

// SystemClock reads the system wall clock.
//
// Resolution truncates every reading, which emulates coarse platform clocks
// such as millisecond timers. Zero keeps the full resolution.
type SystemClock struct {
	Resolution time.Duration
}

// Now implements WallClock.
func (c SystemClock) Now() time.Time {
	t := time.Now()
	if c.Resolution > 0 {
		t = t.Truncate(c.Resolution)
	}
	return t
}
