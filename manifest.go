package ggbench

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfiguration is returned by Normalize and New when a manifest
// cannot be turned into a runnable configuration.
var ErrInvalidConfiguration = errors.New("ggbench: invalid configuration")

// PreserveDrawingBuffer is the context option that keeps the drawing buffer
// between frames instead of discarding it at the compositing point.
const PreserveDrawingBuffer = "preserveDrawingBuffer"

// DefaultTitle is used when a manifest has no title.
const DefaultTitle = "Untitled"

// FrameMethod selects the timestamp source and frame pump for a run.
type FrameMethod int

const (
	// CallbackClock invokes the run once per display refresh and passes the
	// refresh timestamp. The engine never reads time on its own.
	CallbackClock FrameMethod = iota

	// ManualClock invokes the run on the next loop turn with no timestamp.
	// The surface is drained before and after the workload and the wall
	// clock is read around it.
	ManualClock
)

// String returns the canonical frame method name.
func (m FrameMethod) String() string {
	switch m {
	case CallbackClock:
		return "requestAnimationFrame"
	case ManualClock:
		return "setTimeoutZero"
	default:
		return "Unknown"
	}
}

// ParseFrameMethod resolves a frame method by name. Both the canonical names
// and the short aliases "callback" and "manual" are accepted.
func ParseFrameMethod(name string) (FrameMethod, error) {
	switch name {
	case "requestAnimationFrame", "callback":
		return CallbackClock, nil
	case "setTimeoutZero", "manual":
		return ManualClock, nil
	default:
		return 0, fmt.Errorf("%w: unknown frame method %q", ErrInvalidConfiguration, name)
	}
}

// Manifest is the raw, partially populated description of a benchmark.
// Every field is optional; Normalize fills in the defaults.
type Manifest struct {
	Title                   *string         `yaml:"title"`
	FrameCallback           Workload        `yaml:"-"`
	ContextOptions          map[string]bool `yaml:"contextOptions"`
	FrameMethod             *string         `yaml:"frameMethod"`
	Width                   *int            `yaml:"width"`
	Height                  *int            `yaml:"height"`
	Repeat                  *int            `yaml:"repeat"`
	AccountForFinishLatency *bool           `yaml:"accountForFinishLatency"`
	RequiredCapabilities    []string        `yaml:"requiredCapabilities"`
}

// RunConfiguration is the fully populated configuration of one run.
// It is built once by Normalize and never modified afterwards.
type RunConfiguration struct {
	Title                   string
	Width                   int `validate:"gte=1"`
	Height                  int `validate:"gte=1"`
	Repeat                  int `validate:"gte=1"`
	AccountForFinishLatency bool
	FrameMethod             FrameMethod `validate:"gte=0,lte=1"`
	RequiredCapabilities    []string    `validate:"omitempty,dive,required"`
	ContextOptions          map[string]bool
	FrameCallback           Workload
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func noopWorkload(*Runner) error { return nil }

// Normalize turns a manifest into a RunConfiguration. Defaults are applied
// independently of each other:
//   - title: "Untitled"
//   - frame callback: a no-op
//   - context options: empty
//   - frame method: CallbackClock
//   - width and height: 1024 under CallbackClock, 1 otherwise
//   - repeat: 1
//   - finish latency accounting: enabled
//
// Normalize fails with ErrInvalidConfiguration for an unknown frame method
// or a non-positive size or repeat count. The manifest is not modified.
func Normalize(m Manifest) (RunConfiguration, error) {
	cfg := RunConfiguration{
		Title:                   DefaultTitle,
		FrameCallback:           noopWorkload,
		ContextOptions:          map[string]bool{},
		FrameMethod:             CallbackClock,
		Repeat:                  1,
		AccountForFinishLatency: true,
	}

	if m.Title != nil {
		cfg.Title = *m.Title
	}
	if m.FrameCallback != nil {
		cfg.FrameCallback = m.FrameCallback
	}
	if m.ContextOptions != nil {
		cfg.ContextOptions = maps.Clone(m.ContextOptions)
	}
	if m.FrameMethod != nil {
		method, err := ParseFrameMethod(*m.FrameMethod)
		if err != nil {
			return RunConfiguration{}, err
		}
		cfg.FrameMethod = method
	}

	defaultSize := 1
	if cfg.FrameMethod == CallbackClock {
		defaultSize = 1024
	}
	cfg.Width = valueOr(m.Width, defaultSize)
	cfg.Height = valueOr(m.Height, defaultSize)
	cfg.Repeat = valueOr(m.Repeat, cfg.Repeat)
	cfg.AccountForFinishLatency = valueOr(m.AccountForFinishLatency, cfg.AccountForFinishLatency)
	cfg.RequiredCapabilities = slices.Clone(m.RequiredCapabilities)

	if err := validate.Struct(cfg); err != nil {
		return RunConfiguration{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return cfg, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Description returns the human-readable run description used in status
// output and result notifications.
func (c RunConfiguration) Description() string {
	var b strings.Builder
	b.WriteString(c.Title)
	if c.ContextOptions[PreserveDrawingBuffer] {
		b.WriteString(", with preserveDrawingBuffer")
	}
	if c.Repeat > 1 {
		b.WriteString(", repeated ")
		b.WriteString(strconv.Itoa(c.Repeat))
		b.WriteString("×")
	}
	if c.FrameMethod == CallbackClock {
		fmt.Fprintf(&b, ", size %d×%d", c.Width, c.Height)
	}
	return b.String()
}
