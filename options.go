package ggbench

import (
	"log/slog"

	"github.com/gogpu/ggbench/frame"
	"github.com/gogpu/ggbench/surface"
)

// Option configures a Runner during creation.
//
// Example:
//
//	loop := frame.NewLoop()
//	r, err := ggbench.New(manifest,
//	    ggbench.WithScheduler(loop),
//	    ggbench.WithSurfaceFactory(surface.FactoryByName("gg")),
//	    ggbench.WithNotifier(ggbench.NewJSONNotifier(os.Stdout)),
//	)
type Option func(*runnerOptions)

// runnerOptions holds the collaborators of a Runner.
type runnerOptions struct {
	factory   surface.SurfaceFactory
	scheduler frame.Scheduler
	wall      frame.WallClock
	notifier  Notifier
	status    func(string)
	logger    *slog.Logger
}

func defaultOptions() runnerOptions {
	return runnerOptions{
		factory:  nil, // best available backend of the global registry
		wall:     frame.SystemClock{},
		notifier: Discard,
		status:   func(string) {},
	}
}

// WithSurfaceFactory sets how the run acquires its rendering context.
// By default the best available backend of the global surface registry is
// used.
func WithSurfaceFactory(f surface.SurfaceFactory) Option {
	return func(o *runnerOptions) {
		o.factory = f
	}
}

// WithScheduler injects the frame scheduler. Runs that share a process
// should share one scheduler; by default each Runner gets its own
// frame.Loop.
func WithScheduler(s frame.Scheduler) Option {
	return func(o *runnerOptions) {
		o.scheduler = s
	}
}

// WithWallClock sets the clock read around each invocation under
// ManualClock.
func WithWallClock(c frame.WallClock) Option {
	return func(o *runnerOptions) {
		if c != nil {
			o.wall = c
		}
	}
}

// WithNotifier sets where the terminal result is delivered.
func WithNotifier(n Notifier) Option {
	return func(o *runnerOptions) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithStatusFunc registers a function that receives every status line:
// "running...", the terminal outcome status, or the cannot-run message.
func WithStatusFunc(fn func(status string)) Option {
	return func(o *runnerOptions) {
		if fn != nil {
			o.status = fn
		}
	}
}

// WithLogger sets the logger for this run. By default the package logger
// (see SetLogger) is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *runnerOptions) {
		o.logger = l
	}
}
