package ggbench

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ggbench/frame"
	"github.com/gogpu/ggbench/surface"
)

// fakeSurface records the calls made by a run.
type fakeSurface struct {
	caps     map[string]bool
	pending  error
	finishes int
	// finishErrs is returned by successive Finish calls; the error flag is
	// left untouched.
	finishErrs []error
	presents int
	closed   bool
}

func (s *fakeSurface) Width() int                     { return 1 }
func (s *fakeSurface) Height() int                    { return 1 }
func (s *fakeSurface) HasCapability(name string) bool { return s.caps[name] }
func (s *fakeSurface) Present()                       { s.presents++ }

func (s *fakeSurface) Finish() error {
	s.finishes++
	if len(s.finishErrs) == 0 {
		return nil
	}
	err := s.finishErrs[0]
	s.finishErrs = s.finishErrs[1:]
	return err
}

func (s *fakeSurface) TakeError() error {
	err := s.pending
	s.pending = nil
	return err
}

func (s *fakeSurface) Close() error {
	s.closed = true
	return nil
}

func factoryFor(s surface.Surface) surface.SurfaceFactory {
	return func(surface.Options) (surface.Surface, error) { return s, nil }
}

// fakeScheduler queues callbacks and lets tests fire refreshes by hand.
type fakeScheduler struct {
	frames []func(time.Duration)
	tasks  []func()
}

func (s *fakeScheduler) RequestFrame(fn func(time.Duration)) { s.frames = append(s.frames, fn) }
func (s *fakeScheduler) Defer(fn func())                     { s.tasks = append(s.tasks, fn) }

// fire runs every queued frame callback with ts and returns how many ran.
func (s *fakeScheduler) fire(ts time.Duration) int {
	batch := s.frames
	s.frames = nil
	for _, fn := range batch {
		fn(ts)
	}
	return len(batch)
}

// Run drains the queues with refreshes every 20ms.
func (s *fakeScheduler) Run(ctx context.Context) error {
	var ts time.Duration
	for len(s.tasks) > 0 || len(s.frames) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(s.tasks) > 0 {
			task := s.tasks[0]
			s.tasks = s.tasks[1:]
			task()
			continue
		}
		s.fire(ts)
		ts += 20 * time.Millisecond
	}
	return nil
}

func (s *fakeScheduler) pending() int { return len(s.frames) + len(s.tasks) }

// steppingClock advances by step on every reading.
type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

type recorder struct {
	statuses []string
	results  []Result
}

func (rec *recorder) options() []Option {
	return []Option{
		WithStatusFunc(func(s string) { rec.statuses = append(rec.statuses, s) }),
		WithNotifier(NotifierFunc(func(r Result) error {
			rec.results = append(rec.results, r)
			return nil
		})),
	}
}

func ptr[T any](v T) *T { return &v }

func newTestRunner(t *testing.T, m Manifest, s surface.Surface, sched frame.Scheduler, rec *recorder, extra ...Option) *Runner {
	t.Helper()
	opts := append(rec.options(), WithSurfaceFactory(factoryFor(s)), WithScheduler(sched))
	r, err := New(m, append(opts, extra...)...)
	require.NoError(t, err)
	return r
}

func TestRunnerNewRejectsInvalidManifest(t *testing.T) {
	_, err := New(Manifest{Repeat: ptr(0)})
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = New(Manifest{FrameMethod: ptr("vsync")})
	require.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestRunnerUnsupportedCapability(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		caps     map[string]bool
		want     string
	}{
		{"single missing", []string{"EXT_float_blend"}, nil, "EXT_float_blend"},
		{"first missing wins", []string{"a", "b"}, nil, "a"},
		{"present then missing", []string{"a", "b"}, map[string]bool{"a": true}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			s := &fakeSurface{caps: tt.caps}
			sched := &fakeScheduler{}
			rec := &recorder{}
			r := newTestRunner(t, Manifest{
				Title:                ptr("caps"),
				RequiredCapabilities: tt.required,
				FrameCallback:        func(*Runner) error { calls++; return nil },
			}, s, sched, rec)

			out, err := r.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, UnsupportedCapability{Name: tt.want}, out)
			assert.Equal(t, StateStopped, r.State())
			assert.Zero(t, calls)
			assert.Zero(t, sched.pending())
			assert.Equal(t, []string{"Requires unsupported capability: " + tt.want}, rec.statuses)
			require.Len(t, rec.results, 1)
			assert.True(t, rec.results[0].Skip)
			assert.Equal(t, "caps, size 1024×1024", rec.results[0].TestDescription)
			assert.True(t, s.closed)
		})
	}
}

func TestRunnerCallbackTermination(t *testing.T) {
	calls := 0
	s := &fakeSurface{}
	sched := &fakeScheduler{}
	rec := &recorder{}
	r := newTestRunner(t, Manifest{
		FrameCallback: func(*Runner) error { calls++; return nil },
	}, s, sched, rec)

	require.NoError(t, r.Start())
	assert.Equal(t, StateRunning, r.State())
	assert.Equal(t, []string{StatusRunning}, rec.statuses)

	// Refreshes every 20ms: the run must stop on the first frame with more
	// than 10 samples and more than 300ms elapsed, at ts=320ms.
	var ts time.Duration
	for sched.fire(ts) > 0 {
		if r.State() == StateRunning {
			assert.LessOrEqual(t, ts, 300*time.Millisecond)
		}
		ts += 20 * time.Millisecond
	}

	assert.Equal(t, 17, calls)
	assert.Equal(t, 16, r.Frame())
	assert.Len(t, r.Samples(), 16)
	for _, d := range r.Samples() {
		assert.Equal(t, 20*time.Millisecond, d)
	}
	assert.Equal(t, 17, s.presents)
	assert.Zero(t, s.finishes)

	out := r.Outcome()
	require.IsType(t, Success{}, out)
	assert.Equal(t, 20*time.Millisecond, out.(Success).Report.Median)

	require.Len(t, rec.results, 1)
	require.NotNil(t, rec.results[0].TestResult)
	assert.InDelta(t, 20.0, *rec.results[0].TestResult, 1e-9)
	assert.Len(t, rec.statuses, 2)
	assert.True(t, strings.HasPrefix(rec.statuses[1], "median: 20 ms"))
}

func TestRunnerRejectsShortDeltas(t *testing.T) {
	sched := &fakeScheduler{}
	rec := &recorder{}
	r := newTestRunner(t, Manifest{}, &fakeSurface{}, sched, rec)
	require.NoError(t, r.Start())

	for _, ms := range []int{0, 16, 24, 41, 56, 72} {
		d := r.Step(time.Duration(ms) * time.Millisecond)
		require.True(t, d.Continue)
	}
	// 24-16 and 56-41 are below one refresh; the previous timestamp still
	// advances past them.
	want := []time.Duration{16 * time.Millisecond, 17 * time.Millisecond, 16 * time.Millisecond}
	assert.Equal(t, want, r.Samples())
	assert.Equal(t, 6, r.Frame())
}

func TestRunnerWorkloadError(t *testing.T) {
	tests := []struct {
		name      string
		repeat    int
		failFrame int
		failCall  int
		wantCalls int
	}{
		{"first frame", 1, 0, 1, 1},
		{"later frame", 1, 3, 1, 4},
		{"mid repeat", 3, 2, 2, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls, inFrame := 0, 0
			lastFrame := -1
			sched := &fakeScheduler{}
			rec := &recorder{}
			r := newTestRunner(t, Manifest{
				Repeat: ptr(tt.repeat),
				FrameCallback: func(r *Runner) error {
					calls++
					if r.Frame() != lastFrame {
						lastFrame, inFrame = r.Frame(), 0
					}
					inFrame++
					if r.Frame() == tt.failFrame && inFrame == tt.failCall {
						return errors.New("boom")
					}
					return nil
				},
			}, &fakeSurface{}, sched, rec)

			out, err := r.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, WorkloadError{Message: "boom"}, out)
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.failFrame, r.Frame())
			assert.Zero(t, sched.pending())
			require.Len(t, rec.results, 1)
			assert.True(t, rec.results[0].Error)
			assert.Equal(t, "Error: boom", rec.statuses[len(rec.statuses)-1])
		})
	}
}

func TestRunnerContextError(t *testing.T) {
	s := &fakeSurface{}
	rec := &recorder{}
	r := newTestRunner(t, Manifest{
		FrameCallback: func(r *Runner) error {
			if r.Frame() == 2 {
				s.pending = errors.New("device lost")
			}
			return nil
		},
	}, s, &fakeScheduler{}, rec)

	out, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ContextError{}, out)
	assert.Nil(t, s.pending, "flag must be consumed")
	require.Len(t, rec.results, 1)
	assert.True(t, rec.results[0].Error)
	assert.Nil(t, rec.results[0].TestResult)
}

func TestRunnerWorkloadErrorTakesPrecedence(t *testing.T) {
	s := &fakeSurface{}
	rec := &recorder{}
	r := newTestRunner(t, Manifest{
		FrameCallback: func(r *Runner) error {
			s.pending = errors.New("device lost")
			return errors.New("draw failed")
		},
	}, s, &fakeScheduler{}, rec)

	out, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WorkloadError{Message: "draw failed"}, out)
	assert.Nil(t, s.pending, "flag must be consumed")
}

func TestRunnerKeepsFinishFailure(t *testing.T) {
	tests := []struct {
		name     string
		callback func(*Runner) error
		want     Outcome
	}{
		{"reported at completion", func(*Runner) error { return nil }, ContextError{}},
		{"superseded by workload error", func(r *Runner) error {
			if r.Frame() == 3 {
				return errors.New("draw failed")
			}
			return nil
		}, WorkloadError{Message: "draw failed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSurface{finishErrs: []error{nil, nil, errors.New("flush failed")}}
			rec := &recorder{}
			r := newTestRunner(t, Manifest{
				FrameMethod:   ptr("manual"),
				FrameCallback: tt.callback,
			}, s, frame.NewLoop(), rec,
				WithWallClock(&steppingClock{now: time.Unix(1000, 0), step: 10 * time.Millisecond}))

			out, err := r.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Nil(t, r.finishErr, "kept failure must be consumed")
			require.Len(t, rec.results, 1)
			assert.True(t, rec.results[0].Error)
		})
	}
}

func TestRunnerRejectsFastRefresh(t *testing.T) {
	fast := frame.NewLoop(frame.WithRefreshInterval(time.Second / 120))

	_, err := New(Manifest{}, WithScheduler(fast))
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "refresh interval")

	// Manual runs do not depend on the refresh rate.
	_, err = New(Manifest{FrameMethod: ptr("manual")}, WithScheduler(fast))
	require.NoError(t, err)

	_, err = New(Manifest{}, WithScheduler(frame.NewLoop()))
	require.NoError(t, err)
}

func TestRunnerManualClock(t *testing.T) {
	tests := []struct {
		name         string
		account      bool
		wantFinishes int
	}{
		{"account for finish latency", true, 34},
		{"ignore finish latency", false, 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSurface{}
			clock := &steppingClock{now: time.Unix(1000, 0), step: 10 * time.Millisecond}
			rec := &recorder{}
			calls := 0
			r := newTestRunner(t, Manifest{
				FrameMethod:             ptr("setTimeoutZero"),
				AccountForFinishLatency: ptr(tt.account),
				FrameCallback:           func(*Runner) error { calls++; return nil },
			}, s, frame.NewLoop(), rec, WithWallClock(clock))

			assert.Equal(t, 1, r.Config().Width)
			assert.Equal(t, "Untitled", r.Description())

			out, err := r.Run(context.Background())
			require.NoError(t, err)
			require.IsType(t, Success{}, out)

			// Each frame reads the clock twice, 10ms apart, and frame k
			// starts 20k ms after the first.
			assert.Equal(t, 17, calls)
			assert.Len(t, r.Samples(), 17)
			assert.Equal(t, 10*time.Millisecond, out.(Success).Report.Median)
			assert.Equal(t, tt.wantFinishes, s.finishes)
			assert.True(t, s.closed)
			require.Len(t, rec.results, 1)
		})
	}
}

func TestRunnerNoContext(t *testing.T) {
	tests := []struct {
		name    string
		factory surface.SurfaceFactory
	}{
		{"factory error", func(surface.Options) (surface.Surface, error) {
			return nil, errors.New("no adapter")
		}},
		{"nil surface", func(surface.Options) (surface.Surface, error) { return nil, nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			calls := 0
			sched := &fakeScheduler{}
			r, err := New(Manifest{FrameCallback: func(*Runner) error { calls++; return nil }},
				append(rec.options(), WithSurfaceFactory(tt.factory), WithScheduler(sched))...)
			require.NoError(t, err)

			out, err := r.Run(context.Background())
			require.ErrorIs(t, err, ErrNoContext)
			assert.Nil(t, out)
			assert.Equal(t, StateCannotRun, r.State())
			assert.Equal(t, []string{StatusCannotRun}, rec.statuses)
			assert.Empty(t, rec.results)
			assert.Zero(t, calls)
			assert.Zero(t, sched.pending())
		})
	}
}

func TestRunnerStartTwice(t *testing.T) {
	r := newTestRunner(t, Manifest{}, &fakeSurface{}, &fakeScheduler{}, &recorder{})
	require.NoError(t, r.Start())
	assert.ErrorIs(t, r.Start(), ErrAlreadyStarted)
}

func TestRunnerStepAfterStop(t *testing.T) {
	sched := &fakeScheduler{}
	rec := &recorder{}
	r := newTestRunner(t, Manifest{
		FrameCallback: func(*Runner) error { return errors.New("boom") },
	}, &fakeSurface{}, sched, rec)
	require.NoError(t, r.Start())

	first := r.Step(0)
	assert.False(t, first.Continue)
	second := r.Step(time.Second)
	assert.False(t, second.Continue)
	assert.Equal(t, first.Outcome, second.Outcome)
	assert.Len(t, rec.results, 1)
}

func TestRunnerCanceled(t *testing.T) {
	loop := frame.NewLoop()
	rec := &recorder{}
	calls := 0
	s := &fakeSurface{}
	r := newTestRunner(t, Manifest{
		FrameCallback: func(*Runner) error { calls++; return nil },
	}, s, loop, rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
	assert.Equal(t, StateCanceled, r.State())
	assert.True(t, s.closed)
	assert.Equal(t, 1, loop.Pending())

	// The stale frame callback fires on the next use of the shared loop
	// and must not touch the abandoned run.
	require.NoError(t, loop.Run(context.Background()))
	assert.Zero(t, calls)
	assert.Zero(t, loop.Pending())
	assert.Empty(t, rec.results)
}

func TestRunnerChanNotifierReceivesOneResult(t *testing.T) {
	ch := make(ChanNotifier, 2)
	r, err := New(Manifest{Title: ptr("once")},
		WithSurfaceFactory(factoryFor(&fakeSurface{})),
		WithScheduler(&fakeScheduler{}),
		WithNotifier(ch))
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, ch, 1)
	got := <-ch
	assert.Equal(t, "once, size 1024×1024", got.TestDescription)
	require.NotNil(t, got.TestResult)
}

func TestRunnerWithVectorSurface(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time refresh loop")
	}
	loop := frame.NewLoop(frame.WithRefreshInterval(17 * time.Millisecond))
	rec := &recorder{}
	r, err := New(Manifest{
		Width:                ptr(32),
		Height:               ptr(32),
		RequiredCapabilities: []string{surface.CapVector},
		FrameCallback: func(r *Runner) error {
			vs := r.Surface().(*surface.VectorSurface)
			z := vs.Rasterizer()
			z.MoveTo(0, 0)
			z.LineTo(32, 0)
			z.LineTo(0, 32)
			z.ClosePath()
			vs.Fill(color.RGBA{G: 255, A: 255})
			return nil
		},
	}, append(rec.options(),
		WithSurfaceFactory(surface.FactoryByName("vector")),
		WithScheduler(loop))...)
	require.NoError(t, err)

	out, err := r.Run(context.Background())
	require.NoError(t, err)
	require.IsType(t, Success{}, out)
	report := out.(Success).Report
	assert.Greater(t, len(report.SortedSamples), MinSampleCount)
	assert.GreaterOrEqual(t, report.SortedSamples[0], CallbackMinimumFrameDuration)
	assert.Nil(t, r.Surface(), "surface released after Run")
}
