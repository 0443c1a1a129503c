package ggbench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/ggbench/frame"
	"github.com/gogpu/ggbench/surface"
)

var (
	// ErrNoContext is returned by Start and Run when no rendering context
	// could be acquired. The run never starts and no result is notified.
	ErrNoContext = errors.New("ggbench: could not get a rendering context")

	// ErrAlreadyStarted is returned by Start on a Runner that has already
	// been started.
	ErrAlreadyStarted = errors.New("ggbench: run already started")

	// ErrIncomplete is returned by Run when the scheduler went idle before
	// the run reached a terminal outcome.
	ErrIncomplete = errors.New("ggbench: run ended without an outcome")
)

// Workload is the caller-supplied frame body. It is invoked Repeat times per
// frame with the Runner that drives it. A non-nil error stops the run with
// a WorkloadError outcome.
type Workload func(r *Runner) error

// State is the lifecycle state of a Runner.
type State int

const (
	// StateInitializing: created, not started.
	StateInitializing State = iota

	// StateRunning: frames are being scheduled.
	StateRunning

	// StateStopped: a terminal outcome was reached. Terminal.
	StateStopped

	// StateCannotRun: no rendering context could be acquired. Terminal,
	// without an outcome.
	StateCannotRun

	// StateCanceled: the run was abandoned before reaching an outcome
	// because its context was canceled. Terminal, without an outcome.
	StateCanceled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "Initializing"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	case StateCannotRun:
		return "CannotRun"
	case StateCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Decision is the result of one Step. Either Continue is true and the next
// frame must be scheduled, or Outcome holds the terminal outcome.
type Decision struct {
	Continue bool
	Outcome  Outcome
}

// Runner drives a single benchmark run. A Runner owns its configuration,
// its run state and its surface; it is not safe for concurrent use and is
// not reusable.
type Runner struct {
	id          uuid.UUID
	cfg         RunConfiguration
	description string
	opts        runnerOptions
	log         *slog.Logger

	state   State
	surface surface.Surface
	epoch   time.Time

	frameIndex int
	samples    []time.Duration
	startTS    time.Duration
	hasStart   bool
	prevTS     time.Duration
	hasPrev    bool
	outcome    Outcome
	finishErr  error

	frameCallback func(ts time.Duration)
	taskCallback  func()
}

// New normalizes the manifest and creates a Runner. It fails with
// ErrInvalidConfiguration before anything is acquired or scheduled.
func New(m Manifest, opts ...Option) (*Runner, error) {
	cfg, err := Normalize(m)
	if err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.factory == nil {
		options.factory = surface.FactoryByName("")
	}
	if options.scheduler == nil {
		options.scheduler = frame.NewLoop()
	}
	if options.logger == nil {
		options.logger = Logger()
	}
	if err := checkRefresh(cfg, options.scheduler); err != nil {
		return nil, err
	}

	r := &Runner{
		id:          uuid.New(),
		cfg:         cfg,
		description: cfg.Description(),
		opts:        options,
		epoch:       options.wall.Now(),
	}
	r.log = options.logger.With("run_id", r.id.String(), "title", cfg.Title)
	r.frameCallback = func(ts time.Duration) {
		if r.Step(ts).Continue {
			r.schedule()
		}
	}
	r.taskCallback = func() { r.frameCallback(0) }
	return r, nil
}

// checkRefresh rejects a callback-paced run on a scheduler that refreshes
// faster than CallbackMinimumFrameDuration: every delta would be dropped and
// the run would never stop.
func checkRefresh(cfg RunConfiguration, s frame.Scheduler) error {
	if cfg.FrameMethod != CallbackClock {
		return nil
	}
	p, ok := s.(interface{ Interval() time.Duration })
	if !ok {
		return nil
	}
	if iv := p.Interval(); iv > 0 && iv < CallbackMinimumFrameDuration {
		return fmt.Errorf("%w: refresh interval %v is shorter than the minimum frame duration %v",
			ErrInvalidConfiguration, iv, CallbackMinimumFrameDuration)
	}
	return nil
}

// ID returns the unique identifier of this run.
func (r *Runner) ID() uuid.UUID { return r.id }

// Config returns the effective configuration.
func (r *Runner) Config() RunConfiguration { return r.cfg }

// Description returns the human-readable run description.
func (r *Runner) Description() string { return r.description }

// Surface returns the rendering context, or nil before Start.
func (r *Runner) Surface() surface.Surface { return r.surface }

// Frame returns the index of the current frame, starting at 0.
func (r *Runner) Frame() int { return r.frameIndex }

// State returns the lifecycle state.
func (r *Runner) State() State { return r.state }

// Outcome returns the terminal outcome, or nil if none was reached.
func (r *Runner) Outcome() Outcome { return r.outcome }

// Samples returns a copy of the accepted samples in observation order.
func (r *Runner) Samples() []time.Duration { return slices.Clone(r.samples) }

// Start acquires the surface, checks the required capabilities in order
// and schedules the first frame.
//
// If the surface cannot be acquired Start returns ErrNoContext and the run
// never enters Running. If a required capability is missing the run stops
// with UnsupportedCapability without scheduling any frame; Start returns
// nil in that case.
func (r *Runner) Start() error {
	if r.state != StateInitializing {
		return ErrAlreadyStarted
	}

	s, err := r.opts.factory(surface.Options{
		Width:          r.cfg.Width,
		Height:         r.cfg.Height,
		ContextOptions: r.cfg.ContextOptions,
	})
	if err == nil && s == nil {
		err = errors.New("surface factory returned nil")
	}
	if err != nil {
		r.state = StateCannotRun
		r.opts.status(StatusCannotRun)
		r.log.Warn("cannot run", "err", err)
		return fmt.Errorf("%w: %w", ErrNoContext, err)
	}
	r.surface = s

	for _, name := range r.cfg.RequiredCapabilities {
		if !s.HasCapability(name) {
			r.finish(UnsupportedCapability{Name: name})
			return nil
		}
	}

	r.state = StateRunning
	r.opts.status(StatusRunning)
	r.log.Info("run started",
		"description", r.description,
		"frame_method", r.cfg.FrameMethod.String(),
		"repeat", r.cfg.Repeat)
	r.schedule()
	return nil
}

// schedule registers the next invocation with the frame method's primitive.
func (r *Runner) schedule() {
	if r.cfg.FrameMethod == ManualClock {
		r.opts.scheduler.Defer(r.taskCallback)
		return
	}
	r.opts.scheduler.RequestFrame(r.frameCallback)
}

// Step executes one frame and decides whether the run continues.
//
// ts is the refresh timestamp under CallbackClock. ManualClock runs ignore
// it and time the invocation with the wall clock instead. Step never
// schedules anything itself; the caller re-registers the run when the
// decision says Continue. Once the run is no longer Running, Step does
// nothing and returns the stored outcome.
func (r *Runner) Step(ts time.Duration) Decision {
	if r.state != StateRunning {
		return Decision{Outcome: r.outcome}
	}

	manual := r.cfg.FrameMethod == ManualClock
	if manual {
		// Drain earlier work so it is not billed to this frame.
		r.flush()
		ts = r.now()
	}

	for range r.cfg.Repeat {
		if err := r.cfg.FrameCallback(r); err != nil {
			// The workload error is reported; a pending surface error is
			// consumed with it.
			if ctxErr := r.takeError(); ctxErr != nil {
				r.log.Debug("surface error superseded by workload error", "err", ctxErr)
			}
			return r.finish(WorkloadError{Message: err.Error()})
		}
	}

	switch {
	case manual:
		if r.cfg.AccountForFinishLatency {
			r.flush()
		}
		r.samples = append(r.samples, r.now()-ts)
		if !r.hasStart {
			r.startTS, r.hasStart = ts, true
		}
	case r.hasPrev:
		delta, ok := AcceptSample(r.prevTS, ts, CallbackMinimumFrameDuration)
		if ok {
			r.samples = append(r.samples, delta)
		} else {
			r.log.Debug("dropped short frame", "frame", r.frameIndex, "delta", delta)
		}
	default:
		r.startTS, r.hasStart = ts, true
	}

	if p, ok := r.surface.(surface.Presenter); ok {
		p.Present()
	}

	if ShouldStop(len(r.samples), ts-r.startTS) {
		return r.finish(r.complete())
	}

	r.prevTS, r.hasPrev = ts, true
	r.frameIndex++
	return Decision{Continue: true}
}

// flush waits for the surface to finish pending work. A failure is kept until
// the run completes, even if the surface does not record it in its error flag.
func (r *Runner) flush() {
	if err := r.surface.Finish(); err != nil {
		r.log.Debug("surface finish failed", "frame", r.frameIndex, "err", err)
		if r.finishErr == nil {
			r.finishErr = err
		}
	}
}

// takeError consumes the surface error flag and any kept finish failure.
func (r *Runner) takeError() error {
	err := r.surface.TakeError()
	if err == nil {
		err = r.finishErr
	}
	r.finishErr = nil
	return err
}

// now reads the wall clock as an offset from the runner's epoch.
func (r *Runner) now() time.Duration {
	return r.opts.wall.Now().Sub(r.epoch)
}

// complete turns the collected samples into the final outcome, unless the
// surface recorded an error during the run.
func (r *Runner) complete() Outcome {
	if err := r.takeError(); err != nil {
		r.log.Warn("surface reported an error", "err", err)
		return ContextError{}
	}
	report, err := ComputeStatistics(r.samples)
	if err != nil {
		return WorkloadError{Message: err.Error()}
	}
	return Success{Report: report}
}

// finish records the terminal outcome and emits the status line and the
// notification. It runs exactly once per run.
func (r *Runner) finish(o Outcome) Decision {
	r.outcome = o
	r.state = StateStopped
	r.opts.status(o.Status())

	attrs := []any{"outcome", o.Kind().String(), "frames", r.frameIndex + 1, "samples", len(r.samples)}
	if s, ok := o.(Success); ok {
		attrs = append(attrs, "median", s.Report.Median, "dispersion_pct", s.Report.RelativeDispersionPercent)
	}
	r.log.Info("run stopped", attrs...)

	if err := r.opts.notifier.Notify(o.Result(r.description)); err != nil {
		r.log.Warn("result notification failed", "err", err)
	}
	return Decision{Outcome: o}
}

// Run starts the run and drives the scheduler until the run stops. It
// returns the terminal outcome, or an error when the run could not start
// (ErrNoContext) or ctx was canceled first. A canceled run is abandoned:
// it emits no notification and ignores any callback still pending in a
// shared scheduler. Run closes the surface before returning.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	if err := r.Start(); err != nil {
		return nil, err
	}
	defer r.Close()

	if r.state == StateRunning {
		if err := r.opts.scheduler.Run(ctx); err != nil {
			if r.state == StateRunning {
				r.state = StateCanceled
				r.log.Info("run canceled", "frames", r.frameIndex, "err", err)
			}
			return nil, err
		}
	}
	if r.outcome == nil {
		return nil, ErrIncomplete
	}
	return r.outcome, nil
}

// Close releases the surface. It is safe to call more than once.
func (r *Runner) Close() error {
	if r.surface == nil {
		return nil
	}
	err := r.surface.Close()
	r.surface = nil
	if err != nil {
		r.log.Warn("closing surface", "err", err)
	}
	return err
}
