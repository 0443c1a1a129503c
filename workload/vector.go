package workload

import (
	"image/color"
	"math/rand/v2"

	"github.com/gogpu/ggbench"
	"github.com/gogpu/ggbench/surface"
)

func newVector(p Params) (ggbench.Workload, error) {
	n := p.count(100)
	return func(r *ggbench.Runner) error {
		s, ok := r.Surface().(*surface.VectorSurface)
		if !ok {
			return mismatch(r, "vector")
		}
		w, h := float32(s.Width()), float32(s.Height())
		rng := rand.New(rand.NewPCG(uint64(r.Frame()), 3))
		z := s.Rasterizer()
		for range n {
			z.MoveTo(rng.Float32()*w, rng.Float32()*h)
			z.LineTo(rng.Float32()*w, rng.Float32()*h)
			z.LineTo(rng.Float32()*w, rng.Float32()*h)
			z.ClosePath()
			s.Fill(color.NRGBA{
				R: uint8(rng.IntN(256)),
				G: uint8(rng.IntN(256)),
				B: uint8(rng.IntN(256)),
				A: 192,
			})
		}
		return nil
	}, nil
}
