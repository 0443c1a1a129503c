package workload

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/ggbench"
	"github.com/gogpu/ggbench/surface"
)

var (
	// ErrSurfaceMismatch is returned by a workload that needs a surface
	// backend other than the one the run acquired.
	ErrSurfaceMismatch = errors.New("workload: surface backend mismatch")

	// ErrUnknownWorkload is returned by Lookup for an unregistered name.
	ErrUnknownWorkload = errors.New("workload: unknown workload")
)

// DefaultText is drawn and shaped when Params.Text is empty.
const DefaultText = "The quick brown fox jumps over the lazy dog. fi fl ffi AV To"

// Params tunes a workload. Zero values select the workload's default.
type Params struct {
	// Count is the number of primitives drawn per invocation.
	Count int `yaml:"count"`

	// FailAt is the frame index on which the fail workload errors.
	FailAt int `yaml:"failAt"`

	// Text overrides DefaultText for the text and shaping workloads.
	Text string `yaml:"text"`

	// Shaper selects how the text workload lays out glyphs: "builtin"
	// (default) draws with gg's DrawString, "gotext" shapes each line with
	// HarfBuzz and fills the shaped glyph outlines.
	Shaper string `yaml:"shaper"`
}

func (p Params) count(def int) int {
	if p.Count > 0 {
		return p.Count
	}
	return def
}

func (p Params) text() string {
	if p.Text != "" {
		return p.Text
	}
	return DefaultText
}

// Info describes a built-in workload.
type Info struct {
	Name        string
	Description string

	// Requires lists the surface capabilities the workload needs.
	Requires []string

	build func(Params) (ggbench.Workload, error)
}

var builtins = map[string]Info{
	"noop": {
		Name:        "noop",
		Description: "does nothing",
		build:       func(Params) (ggbench.Workload, error) { return noop, nil },
	},
	"clear": {
		Name:        "clear",
		Description: "clears the surface to a rotating hue",
		build:       newClear,
	},
	"circles": {
		Name:        "circles",
		Description: "fills circles on a gg surface",
		build:       newCircles,
	},
	"paths": {
		Name:        "paths",
		Description: "strokes cubic curves on a gg surface",
		build:       newPaths,
	},
	"text": {
		Name:        "text",
		Description: "draws Go Regular text on a gg surface",
		Requires:    []string{surface.CapText},
		build:       newText,
	},
	"shaping": {
		Name:        "shaping",
		Description: "shapes text with the HarfBuzz shaper",
		build:       newShaping,
	},
	"vector": {
		Name:        "vector",
		Description: "fills triangles on a vector surface",
		Requires:    []string{surface.CapVector},
		build:       newVector,
	},
	"fail": {
		Name:        "fail",
		Description: "returns an error on frame failAt",
		build:       newFail,
	},
}

// Names returns the built-in workload names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Describe returns the description of the named workload.
func Describe(name string) (Info, bool) {
	info, ok := builtins[name]
	if !ok {
		return Info{}, false
	}
	info.Requires = slices.Clone(info.Requires)
	return info, true
}

// Lookup builds the named workload with the given parameters.
func Lookup(name string, p Params) (ggbench.Workload, error) {
	info, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkload, name)
	}
	if p.Count < 0 || p.FailAt < 0 {
		return nil, fmt.Errorf("workload: %s: count and failAt must not be negative", name)
	}
	return info.build(p)
}

func noop(*ggbench.Runner) error { return nil }

func newFail(p Params) (ggbench.Workload, error) {
	return func(r *ggbench.Runner) error {
		if r.Frame() == p.FailAt {
			return fmt.Errorf("injected failure at frame %d", r.Frame())
		}
		return nil
	}, nil
}

func mismatch(r *ggbench.Runner, want string) error {
	return fmt.Errorf("%w: want %s, got %T", ErrSurfaceMismatch, want, r.Surface())
}
