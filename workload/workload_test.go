package workload

import (
	"context"
	"testing"

	"github.com/gogpu/gg/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ggbench"
	"github.com/gogpu/ggbench/frame"
	"github.com/gogpu/ggbench/surface"
)

func ptr[T any](v T) *T { return &v }

// startRunner starts a run on the named backend without pumping frames, so
// tests can invoke workloads directly.
func startRunner(t *testing.T, backend string) *ggbench.Runner {
	t.Helper()
	r, err := ggbench.New(ggbench.Manifest{Width: ptr(64), Height: ptr(64)},
		ggbench.WithSurfaceFactory(surface.FactoryByName(backend)),
		ggbench.WithScheduler(frame.NewLoop()))
	require.NoError(t, err)
	require.NoError(t, r.Start())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestNames(t *testing.T) {
	assert.Equal(t,
		[]string{"circles", "clear", "fail", "noop", "paths", "shaping", "text", "vector"},
		Names())
}

func TestLookupErrors(t *testing.T) {
	_, err := Lookup("spinning-cube", Params{})
	assert.ErrorIs(t, err, ErrUnknownWorkload)

	_, err = Lookup("circles", Params{Count: -1})
	assert.Error(t, err)

	_, err = Lookup("text", Params{Shaper: "icu"})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	info, ok := Describe("vector")
	require.True(t, ok)
	assert.Equal(t, []string{surface.CapVector}, info.Requires)

	info.Requires[0] = "changed"
	again, _ := Describe("vector")
	assert.Equal(t, surface.CapVector, again.Requires[0])

	_, ok = Describe("missing")
	assert.False(t, ok)
}

func TestWorkloadsOnBackends(t *testing.T) {
	tests := []struct {
		workload string
		params   Params
		backend  string
		mismatch bool
	}{
		{"noop", Params{}, "vector", false},
		{"clear", Params{}, "gg", false},
		{"clear", Params{}, "vector", false},
		{"circles", Params{Count: 10}, "gg", false},
		{"circles", Params{Count: 10}, "vector", true},
		{"paths", Params{Count: 10}, "gg", false},
		{"paths", Params{Count: 10}, "vector", true},
		{"text", Params{Count: 3}, "gg", false},
		{"text", Params{Count: 3, Shaper: "gotext"}, "gg", false},
		{"text", Params{Count: 3}, "vector", true},
		{"shaping", Params{Count: 2}, "gg", false},
		{"shaping", Params{Count: 2, Text: "Привет, мир"}, "vector", false},
		{"vector", Params{Count: 10}, "vector", false},
		{"vector", Params{Count: 10}, "gg", true},
	}
	for _, tt := range tests {
		t.Run(tt.workload+"/"+tt.backend, func(t *testing.T) {
			w, err := Lookup(tt.workload, tt.params)
			require.NoError(t, err)

			r := startRunner(t, tt.backend)
			err = w(r)
			if tt.mismatch {
				assert.ErrorIs(t, err, ErrSurfaceMismatch)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, r.Surface().TakeError())
		})
	}
}

func TestVectorDraws(t *testing.T) {
	w, err := Lookup("clear", Params{})
	require.NoError(t, err)

	r := startRunner(t, "vector")
	require.NoError(t, w(r))

	img := r.Surface().(*surface.VectorSurface).Image()
	assert.Equal(t, uint8(255), img.RGBAAt(32, 32).A)
}

func TestFailStopsRun(t *testing.T) {
	w, err := Lookup("fail", Params{FailAt: 3})
	require.NoError(t, err)

	r, err := ggbench.New(ggbench.Manifest{
		FrameMethod:   ptr("manual"),
		FrameCallback: w,
	}, ggbench.WithSurfaceFactory(surface.FactoryByName("vector")))
	require.NoError(t, err)

	out, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ggbench.WorkloadError{Message: "injected failure at frame 3"}, out)
	assert.Equal(t, 3, r.Frame())
}

func BenchmarkShaping(b *testing.B) {
	w, err := Lookup("shaping", Params{Count: 1})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		if err := w(nil); err != nil {
			b.Fatal(err)
		}
	}
}

func TestShapedTextFillsOutlines(t *testing.T) {
	source, err := text.NewFontSource(goregular.TTF)
	require.NoError(t, err)
	face := source.Face(16)
	glyphs := text.NewGoTextShaper().Shape("Hi", face)
	require.NotEmpty(t, glyphs)

	s, err := surface.NewGGSurface(surface.Options{Width: 64, Height: 32})
	require.NoError(t, err)
	defer s.Close()

	cache := newOutlineCache(source)
	dc := s.Context()
	dc.SetRGB(0, 0, 0)
	require.NoError(t, cache.draw(dc, glyphs, face.Size(), 4, 20))
	assert.NotEmpty(t, cache.outlines)

	inked := 0
	img := dc.Image()
	for y := range 32 {
		for x := range 64 {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				inked++
			}
		}
	}
	assert.Positive(t, inked, "shaped glyphs left no ink")

	// Outlines are reused on the next frame.
	n := len(cache.outlines)
	require.NoError(t, cache.draw(dc, glyphs, face.Size(), 4, 20))
	assert.Len(t, cache.outlines, n)
}
