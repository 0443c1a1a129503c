package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/gogpu/ggbench"
	"github.com/gogpu/ggbench/frame"
	"github.com/gogpu/ggbench/suite"
	"github.com/gogpu/ggbench/workload"
)

type runFlags struct {
	backend         string
	json            bool
	logLevel        string
	noColor         bool
	refresh         time.Duration
	clockResolution time.Duration
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [suite.yaml]",
		Short: "Run a benchmark suite",
		Long: `Run the benchmarks of a suite file one after another and report each result.

Without a suite file every built-in workload except "fail" runs once with
the default manifest. The command fails when any benchmark ends in an error
or cannot get a rendering context; skipped benchmarks do not fail it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, args, f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.backend, "backend", "", "surface backend for every benchmark (default: suite backend, then best available)")
	flags.BoolVar(&f.json, "json", false, "write one JSON result per benchmark to stdout")
	flags.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	flags.DurationVar(&f.refresh, "refresh", frame.DefaultRefreshInterval, "refresh interval of the frame loop")
	flags.DurationVar(&f.clockResolution, "clock-resolution", 0, "truncate wall clock readings to this resolution (0 = full)")
	return cmd
}

// defaultSuite measures every built-in workload except "fail".
func defaultSuite() *suite.Suite {
	s := &suite.Suite{}
	for _, name := range workload.Names() {
		if name == "fail" {
			continue
		}
		title := name
		s.Benchmarks = append(s.Benchmarks, suite.Entry{
			Manifest: ggbench.Manifest{Title: &title},
			Workload: name,
		})
	}
	return s
}

func runSuite(cmd *cobra.Command, args []string, f runFlags) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", f.logLevel, err)
	}
	if f.refresh <= 0 {
		return errors.New("--refresh must be positive")
	}
	if f.refresh < ggbench.CallbackMinimumFrameDuration {
		return fmt.Errorf("--refresh %v is shorter than the minimum frame duration %v",
			f.refresh, ggbench.CallbackMinimumFrameDuration)
	}
	if f.noColor {
		color.NoColor = true
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	ggbench.SetLogger(logger)
	gg.SetLogger(logger)
	defer func() {
		ggbench.SetLogger(nil)
		gg.SetLogger(nil)
	}()

	s := defaultSuite()
	if len(args) == 1 {
		loaded, err := suite.LoadFile(args[0])
		if err != nil {
			return err
		}
		s = loaded
	}

	// Human output goes to stderr when stdout carries JSON.
	human := cmd.OutOrStdout()
	notifier := ggbench.Discard
	if f.json {
		human = cmd.ErrOrStderr()
		notifier = ggbench.NewJSONNotifier(cmd.OutOrStdout())
	}
	p := newPrinter(human)

	results, err := s.Run(cmd.Context(), suite.Env{
		Scheduler: frame.NewLoop(frame.WithRefreshInterval(f.refresh)),
		Wall:      frame.SystemClock{Resolution: f.clockResolution},
		Notifier:  notifier,
		Backend:   f.backend,
		Status:    p.status,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	return p.summary(results)
}

// printer writes colored status lines.
type printer struct {
	w      io.Writer
	title  func(a ...any) string
	faint  func(a ...any) string
	ok     func(a ...any) string
	warn   func(a ...any) string
	failed func(a ...any) string
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:      w,
		title:  color.New(color.Bold).SprintFunc(),
		faint:  color.New(color.Faint).SprintFunc(),
		ok:     color.New(color.FgGreen).SprintFunc(),
		warn:   color.New(color.FgYellow).SprintFunc(),
		failed: color.New(color.FgRed).SprintFunc(),
	}
}

func (p *printer) status(index int, description, status string) {
	var colored string
	switch {
	case status == ggbench.StatusRunning:
		colored = p.faint(status)
	case strings.HasPrefix(status, "Requires unsupported capability"):
		colored = p.warn(status)
	case status == ggbench.StatusCannotRun,
		status == (ggbench.ContextError{}).Status(),
		strings.HasPrefix(status, "Error: "):
		colored = p.failed(status)
	default:
		colored = p.ok(status)
	}
	fmt.Fprintf(p.w, "%s %s\n%s\n", p.faint(fmt.Sprintf("[%d]", index)), p.title(description), indent(colored))
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

// summary prints the totals and returns an error when any run failed.
func (p *printer) summary(results []suite.RunResult) error {
	var passed, skipped, failed int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
		case res.Outcome.Kind() == ggbench.KindSuccess:
			passed++
		case res.Outcome.Kind() == ggbench.KindUnsupportedCapability:
			skipped++
		default:
			failed++
		}
	}
	fmt.Fprintf(p.w, "\n%s passed, %s skipped, %s failed\n",
		p.ok(passed), p.warn(skipped), p.failed(failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d benchmarks failed", failed, len(results))
	}
	return nil
}
