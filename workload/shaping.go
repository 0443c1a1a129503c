package workload

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/ggbench"
)

// shapingSize is the shaping size in points.
const shapingSize = 16

// newShaping shapes the text Count times per invocation. It draws nothing,
// so it runs on any surface and isolates shaping cost from rasterization.
func newShaping(p Params) (ggbench.Workload, error) {
	n := p.count(100)
	runes := []rune(p.text())

	parsed, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("workload: shaping: %w", err)
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(parsed.Font),
		Size:      fixed.I(shapingSize),
		Script:    scriptOf(runes),
		Language:  language.NewLanguage("en"),
	}
	var shaper shaping.HarfbuzzShaper

	return func(*ggbench.Runner) error {
		for range n {
			out := shaper.Shape(input)
			if len(out.Glyphs) == 0 {
				return fmt.Errorf("shaping %q produced no glyphs", string(runes))
			}
		}
		return nil
	}, nil
}

// scriptOf returns the script of the first non-space rune.
func scriptOf(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
