// Package suite loads benchmark suites from YAML and runs them one after
// another.
//
// A suite file names a default surface backend and lists benchmarks:
//
//	backend: gg
//	benchmarks:
//	  - title: circles
//	    workload: circles
//	    params: {count: 500}
//	    repeat: 2
//	  - title: shaping
//	    workload: shaping
//	    frameMethod: setTimeoutZero
//
// Every entry accepts the manifest fields of ggbench.Manifest next to
// workload, params and an optional per-entry backend.
package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/ggbench"
	"github.com/gogpu/ggbench/frame"
	"github.com/gogpu/ggbench/surface"
	"github.com/gogpu/ggbench/workload"
)

// ErrEmptySuite is returned when a suite has no benchmarks.
var ErrEmptySuite = errors.New("suite: no benchmarks")

// Suite is a decoded suite file.
type Suite struct {
	// Backend is the surface backend used by entries that do not name
	// their own. Empty selects the best available backend.
	Backend    string  `yaml:"backend"`
	Benchmarks []Entry `yaml:"benchmarks"`
}

// Entry is one benchmark of a suite.
type Entry struct {
	ggbench.Manifest `yaml:",inline"`

	Workload string          `yaml:"workload"`
	Params   workload.Params `yaml:"params"`
	Backend  string          `yaml:"backend"`
}

// EntryError reports a suite entry that could not be turned into a run.
type EntryError struct {
	Index int
	Title string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("suite: benchmark %d (%s): %v", e.Index, e.Title, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// title returns the entry title for error messages.
func (e Entry) title() string {
	if e.Title != nil {
		return *e.Title
	}
	if e.Workload != "" {
		return e.Workload
	}
	return ggbench.DefaultTitle
}

// Load decodes a suite from r. Unknown fields are rejected and every entry
// is checked: the workload must exist and the manifest must normalize.
func Load(r io.Reader) (*Suite, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySuite
		}
		return nil, fmt.Errorf("suite: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads and decodes the suite file at path.
func LoadFile(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("suite: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks every entry without acquiring any surface.
func (s *Suite) Validate() error {
	if len(s.Benchmarks) == 0 {
		return ErrEmptySuite
	}
	for i, e := range s.Benchmarks {
		if _, err := e.manifest(); err != nil {
			return &EntryError{Index: i, Title: e.title(), Err: err}
		}
	}
	return nil
}

// manifest builds the run manifest of the entry: the workload becomes the
// frame callback and its required capabilities are appended to the listed
// ones.
func (e Entry) manifest() (ggbench.Manifest, error) {
	name := e.Workload
	if name == "" {
		name = "noop"
	}
	info, ok := workload.Describe(name)
	if !ok {
		return ggbench.Manifest{}, fmt.Errorf("%w: %q", workload.ErrUnknownWorkload, name)
	}
	w, err := workload.Lookup(name, e.Params)
	if err != nil {
		return ggbench.Manifest{}, err
	}

	m := e.Manifest
	m.FrameCallback = w
	m.RequiredCapabilities = slices.Clone(e.RequiredCapabilities)
	for _, c := range info.Requires {
		if !slices.Contains(m.RequiredCapabilities, c) {
			m.RequiredCapabilities = append(m.RequiredCapabilities, c)
		}
	}
	if m.Title == nil {
		title := e.title()
		m.Title = &title
	}
	if _, err := ggbench.Normalize(m); err != nil {
		return ggbench.Manifest{}, err
	}
	return m, nil
}

// Env holds the collaborators shared by every run of a suite.
type Env struct {
	// Scheduler is shared by all runs. Nil creates one frame.Loop for the
	// whole suite.
	Scheduler frame.Scheduler

	// Wall is the clock of manually timed runs. Nil uses the system clock.
	Wall frame.WallClock

	// Notifier receives one result per run that reached an outcome.
	Notifier ggbench.Notifier

	// Backend overrides the backend of the suite and of every entry.
	Backend string

	// Status receives the status lines of each run.
	Status func(index int, description, status string)

	Logger *slog.Logger
}

// RunResult is the result of one entry.
type RunResult struct {
	Index       int
	Description string

	// Outcome is nil when the run could not start; Err says why.
	Outcome ggbench.Outcome
	Err     error
}

// Run executes the benchmarks strictly one after another, each with its own
// Runner and surface. Results are returned in suite order.
//
// A run that cannot get a rendering context is recorded with ErrNoContext
// and the suite moves on. Run stops at the first entry that cannot be
// built, and when ctx is done; the results collected so far are returned
// with the error.
func (s *Suite) Run(ctx context.Context, env Env) ([]RunResult, error) {
	sched := env.Scheduler
	if sched == nil {
		sched = frame.NewLoop()
	}

	results := make([]RunResult, 0, len(s.Benchmarks))
	for i, e := range s.Benchmarks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		m, err := e.manifest()
		if err != nil {
			return results, &EntryError{Index: i, Title: e.title(), Err: err}
		}

		cfg, err := ggbench.Normalize(m)
		if err != nil {
			return results, &EntryError{Index: i, Title: e.title(), Err: err}
		}
		description := cfg.Description()

		opts := []ggbench.Option{
			ggbench.WithScheduler(sched),
			ggbench.WithSurfaceFactory(surface.FactoryByName(s.backendFor(e, env))),
			ggbench.WithWallClock(env.Wall),
			ggbench.WithNotifier(env.Notifier),
		}
		if env.Status != nil {
			opts = append(opts, ggbench.WithStatusFunc(func(status string) {
				env.Status(i, description, status)
			}))
		}
		if env.Logger != nil {
			opts = append(opts, ggbench.WithLogger(env.Logger.With("benchmark", i)))
		}

		r, err := ggbench.New(m, opts...)
		if err != nil {
			return results, &EntryError{Index: i, Title: e.title(), Err: err}
		}

		out, err := r.Run(ctx)
		if err != nil && !errors.Is(err, ggbench.ErrNoContext) {
			return results, err
		}
		results = append(results, RunResult{Index: i, Description: description, Outcome: out, Err: err})
	}
	return results, nil
}

func (s *Suite) backendFor(e Entry, env Env) string {
	switch {
	case env.Backend != "":
		return env.Backend
	case e.Backend != "":
		return e.Backend
	default:
		return s.Backend
	}
}
