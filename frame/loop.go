package frame

import (
	"context"
	"sync"
	"time"
)

// DefaultRefreshInterval is the refresh period of a 60 Hz display.
const DefaultRefreshInterval = time.Second / 60

// Scheduler invokes registered callbacks from a single logical thread.
//
// Callbacks are register-once: a callback that wants to run again must
// register itself again. Run returns when nothing is left to invoke.
type Scheduler interface {
	// RequestFrame registers fn to be invoked on the next display refresh
	// with the refresh timestamp, measured from the scheduler's origin.
	RequestFrame(fn func(ts time.Duration))

	// Defer registers fn to be invoked on the next loop turn, without delay.
	Defer(fn func())

	// Run invokes callbacks until none are pending or ctx is done.
	Run(ctx context.Context) error
}

// LoopOption configures a Loop during creation.
type LoopOption func(*loopOptions)

type loopOptions struct {
	interval time.Duration
	now      func() time.Time
}

func defaultLoopOptions() loopOptions {
	return loopOptions{
		interval: DefaultRefreshInterval,
		now:      time.Now,
	}
}

// WithRefreshInterval sets the display refresh period. Non-positive values
// are ignored. Callback-paced runs drop every frame shorter than 16ms, so
// ggbench.New rejects a Loop whose interval is below that.
func WithRefreshInterval(d time.Duration) LoopOption {
	return func(o *loopOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithTimeSource replaces the monotonic time source used to align refreshes.
func WithTimeSource(now func() time.Time) LoopOption {
	return func(o *loopOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// Loop is a cooperative event loop that implements Scheduler.
//
// Deferred callbacks run first-in first-out and always before the next
// refresh. Frame callbacks registered before a refresh all run on that
// refresh with the same timestamp, in registration order. Timestamps are
// refresh-aligned offsets from the loop origin and strictly increase from
// one refresh to the next.
//
// Registration is safe from any goroutine; callbacks only run on the
// goroutine that called Run.
type Loop struct {
	interval time.Duration
	now      func() time.Time
	origin   time.Time

	mu          sync.Mutex
	tasks       []func()
	frames      []func(time.Duration)
	lastRefresh time.Duration
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a Loop whose origin is the current time.
func NewLoop(opts ...LoopOption) *Loop {
	options := defaultLoopOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Loop{
		interval: options.interval,
		now:      options.now,
		origin:   options.now(),
	}
}

// Interval returns the refresh period.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// RequestFrame implements Scheduler.
func (l *Loop) RequestFrame(fn func(ts time.Duration)) {
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
}

// Defer implements Scheduler.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
}

// Pending reports how many callbacks are registered and not yet invoked.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) + len(l.frames)
}

// Run implements Scheduler. It returns nil once no callbacks are pending,
// or ctx.Err() if ctx is done first. Run may be called again after it
// returns; the origin is kept, so timestamps keep increasing.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		if len(l.tasks) > 0 {
			task := l.tasks[0]
			l.tasks[0] = nil
			l.tasks = l.tasks[1:]
			l.mu.Unlock()
			task()
			continue
		}
		idle := len(l.frames) == 0
		l.mu.Unlock()
		if idle {
			return nil
		}

		ts, err := l.waitRefresh(ctx)
		if err != nil {
			return err
		}

		l.mu.Lock()
		batch := l.frames
		l.frames = nil
		l.mu.Unlock()
		for _, fn := range batch {
			fn(ts)
		}
	}
}

// waitRefresh sleeps until the next refresh boundary and returns its
// timestamp.
func (l *Loop) waitRefresh(ctx context.Context) (time.Duration, error) {
	elapsed := l.now().Sub(l.origin)
	next := (elapsed/l.interval + 1) * l.interval
	if next <= l.lastRefresh {
		next = l.lastRefresh + l.interval
	}

	timer := time.NewTimer(next - elapsed)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
	}

	l.lastRefresh = next
	return next, nil
}
