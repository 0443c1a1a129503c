package workload

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ggbench"
	"github.com/gogpu/ggbench/surface"
)

// ggSurface returns the gg surface of the run.
func ggSurface(r *ggbench.Runner) (*surface.GGSurface, error) {
	s, ok := r.Surface().(*surface.GGSurface)
	if !ok {
		return nil, mismatch(r, "gg")
	}
	return s, nil
}

// hue rotates 7 degrees per frame so consecutive frames differ.
func hue(frame int) float64 {
	return float64(frame*7%360) + 0.5
}

func newClear(Params) (ggbench.Workload, error) {
	return func(r *ggbench.Runner) error {
		c := gg.HSL(hue(r.Frame()), 0.6, 0.5)
		switch s := r.Surface().(type) {
		case *surface.GGSurface:
			s.Context().ClearWithColor(c)
			return nil
		case *surface.VectorSurface:
			w, h := float32(s.Width()), float32(s.Height())
			z := s.Rasterizer()
			z.MoveTo(0, 0)
			z.LineTo(w, 0)
			z.LineTo(w, h)
			z.LineTo(0, h)
			z.ClosePath()
			s.Fill(c.Color())
			return nil
		default:
			return mismatch(r, "gg or vector")
		}
	}, nil
}

func newCircles(p Params) (ggbench.Workload, error) {
	n := p.count(100)
	return func(r *ggbench.Runner) error {
		s, err := ggSurface(r)
		if err != nil {
			return err
		}
		dc := s.Context()
		w, h := float64(s.Width()), float64(s.Height())
		rng := rand.New(rand.NewPCG(uint64(r.Frame()), 1))
		for range n {
			dc.SetColor(gg.HSL(rng.Float64()*360, 0.7, 0.5).Color())
			dc.DrawCircle(rng.Float64()*w, rng.Float64()*h, 2+rng.Float64()*w/16)
			if err := s.Check(dc.Fill()); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

func newPaths(p Params) (ggbench.Workload, error) {
	n := p.count(50)
	return func(r *ggbench.Runner) error {
		s, err := ggSurface(r)
		if err != nil {
			return err
		}
		dc := s.Context()
		w, h := float64(s.Width()), float64(s.Height())
		rng := rand.New(rand.NewPCG(uint64(r.Frame()), 2))
		dc.SetLineWidth(2)
		for range n {
			dc.SetRGB(rng.Float64(), rng.Float64(), rng.Float64())
			dc.MoveTo(rng.Float64()*w, rng.Float64()*h)
			dc.CubicTo(
				rng.Float64()*w, rng.Float64()*h,
				rng.Float64()*w, rng.Float64()*h,
				rng.Float64()*w, rng.Float64()*h,
			)
			if err := s.Check(dc.Stroke()); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

func newText(p Params) (ggbench.Workload, error) {
	n := p.count(20)
	str := p.text()

	var shaper *text.GoTextShaper
	switch p.Shaper {
	case "", "builtin":
	case "gotext":
		shaper = text.NewGoTextShaper()
	default:
		return nil, fmt.Errorf("workload: text: unknown shaper %q", p.Shaper)
	}

	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("workload: text: %w", err)
	}
	face := source.Face(16)
	outlines := newOutlineCache(source)

	return func(r *ggbench.Runner) error {
		s, err := ggSurface(r)
		if err != nil {
			return err
		}
		dc := s.Context()
		dc.SetFont(face)
		dc.SetRGB(0.1, 0.1, 0.1)
		lineHeight := 20.0
		for i := range n {
			y := lineHeight * float64(i%max(1, int(float64(s.Height())/lineHeight))+1)
			if shaper == nil {
				dc.DrawString(str, 4, y)
				continue
			}
			glyphs := shaper.Shape(str, face)
			if len(glyphs) == 0 {
				return fmt.Errorf("shaping %q produced no glyphs", str)
			}
			if err := outlines.draw(dc, glyphs, face.Size(), 4, y); err != nil {
				return s.Check(err)
			}
		}
		return nil
	}, nil
}

// outlineCache fills shaped glyphs as paths. Outlines are extracted once per
// glyph and size; workloads run on a single goroutine.
type outlineCache struct {
	font      text.ParsedFont
	extractor *text.OutlineExtractor
	outlines  map[outlineKey]*text.GlyphOutline
}

type outlineKey struct {
	gid  text.GlyphID
	size float64
}

func newOutlineCache(source *text.FontSource) *outlineCache {
	return &outlineCache{
		font:      source.Parsed(),
		extractor: text.NewOutlineExtractor(),
		outlines:  make(map[outlineKey]*text.GlyphOutline),
	}
}

func (c *outlineCache) outline(gid text.GlyphID, size float64) (*text.GlyphOutline, error) {
	key := outlineKey{gid: gid, size: size}
	if o, ok := c.outlines[key]; ok {
		return o, nil
	}
	o, err := c.extractor.ExtractOutline(c.font, gid, size)
	if err != nil {
		return nil, err
	}
	c.outlines[key] = o
	return o, nil
}

// draw appends every glyph outline to the current path at the baseline
// (x, y) and fills it. Font Y grows upward, so outline Y is flipped.
func (c *outlineCache) draw(dc *gg.Context, glyphs []text.ShapedGlyph, size, x, y float64) error {
	for _, g := range glyphs {
		o, err := c.outline(g.GID, size)
		if err != nil {
			return fmt.Errorf("glyph %d: %w", g.GID, err)
		}
		if o == nil || o.IsEmpty() {
			continue
		}
		ox, oy := x+g.X, y+g.Y
		pt := func(p text.OutlinePoint) (float64, float64) {
			return ox + float64(p.X), oy - float64(p.Y)
		}
		for _, seg := range o.Segments {
			switch seg.Op {
			case text.OutlineOpMoveTo:
				dc.MoveTo(pt(seg.Points[0]))
			case text.OutlineOpLineTo:
				dc.LineTo(pt(seg.Points[0]))
			case text.OutlineOpQuadTo:
				cx, cy := pt(seg.Points[0])
				px, py := pt(seg.Points[1])
				dc.QuadraticTo(cx, cy, px, py)
			case text.OutlineOpCubicTo:
				c1x, c1y := pt(seg.Points[0])
				c2x, c2y := pt(seg.Points[1])
				px, py := pt(seg.Points[2])
				dc.CubicTo(c1x, c1y, c2x, c2y, px, py)
			}
		}
		dc.ClosePath()
	}
	return dc.Fill()
}
