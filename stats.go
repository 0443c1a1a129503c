package ggbench

import (
	"errors"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrInsufficientSamples is returned by ComputeStatistics for an empty
// sample set.
var ErrInsufficientSamples = errors.New("ggbench: insufficient samples")

// Report summarizes the samples of one run. It is computed once and never
// modified.
type Report struct {
	// SortedSamples holds every accepted sample in ascending order.
	SortedSamples []time.Duration

	// MedianIndex is len(SortedSamples)/2.
	MedianIndex int

	// Median is SortedSamples[MedianIndex]. For an even count this is the
	// upper of the two middle samples, not their average.
	Median time.Duration

	Mean time.Duration

	// StandardDeviation is the population standard deviation (divisor n).
	StandardDeviation time.Duration

	// RelativeDispersionPercent is 100*StandardDeviation/Median, rounded.
	// It is 0 when the median is 0.
	RelativeDispersionPercent int
}

// ComputeStatistics reduces a sample set to a Report. The input slice is
// not modified. Running it again on Report.SortedSamples yields the same
// Report.
func ComputeStatistics(samples []time.Duration) (Report, error) {
	n := len(samples)
	if n == 0 {
		return Report{}, ErrInsufficientSamples
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	medianIndex := n / 2
	median := sorted[medianIndex]

	// Sums run over the sorted copy so the result does not depend on
	// observation order.
	var sum time.Duration
	for _, s := range sorted {
		sum += s
	}
	mean := float64(sum) / float64(n)

	var sumDiffSquares float64
	for _, s := range sorted {
		diff := float64(s) - mean
		sumDiffSquares += diff * diff
	}
	stdDev := math.Sqrt(sumDiffSquares / float64(n))

	dispersion := 0
	if median != 0 {
		dispersion = int(math.Round(100 * stdDev / float64(median)))
	}

	return Report{
		SortedSamples:             sorted,
		MedianIndex:               medianIndex,
		Median:                    median,
		Mean:                      time.Duration(math.Round(mean)),
		StandardDeviation:         time.Duration(math.Round(stdDev)),
		RelativeDispersionPercent: dispersion,
	}, nil
}

// BelowMedian returns the samples sorted before the median.
func (r Report) BelowMedian() []time.Duration {
	return r.SortedSamples[:r.MedianIndex]
}

// AboveMedian returns the samples sorted after the median.
func (r Report) AboveMedian() []time.Duration {
	if len(r.SortedSamples) == 0 {
		return nil
	}
	return r.SortedSamples[r.MedianIndex+1:]
}

// MedianMillis returns the median in milliseconds.
func (r Report) MedianMillis() float64 {
	return millis(r.Median)
}

var printer = message.NewPrinter(language.English)

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func formatNumber(d time.Duration) string {
	return printer.Sprint(number.Decimal(millis(d), number.MaxFractionDigits(3)))
}

func formatMillis(d time.Duration) string {
	return formatNumber(d) + " ms"
}

// String renders the human-readable summary shown when a run succeeds.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("median: " + formatMillis(r.Median) + "\n")
	b.WriteString("average: " + formatMillis(r.Mean) + "\n")
	b.WriteString("standard deviation: " + formatMillis(r.StandardDeviation))
	printer.Fprintf(&b, " (%d%% of median)\n", r.RelativeDispersionPercent)

	b.WriteString("sorted timings: ")
	parts := make([]string, 0, len(r.SortedSamples))
	for _, s := range r.BelowMedian() {
		parts = append(parts, formatNumber(s))
	}
	if len(r.SortedSamples) > 0 {
		parts = append(parts, "["+formatNumber(r.Median)+"]")
	}
	for _, s := range r.AboveMedian() {
		parts = append(parts, formatNumber(s))
	}
	b.WriteString(strings.Join(parts, ", "))
	return b.String()
}
