// Package scale derives outlier-robust value-to-color mappings from joined
// metric values.
package scale

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scale is a pair of display bounds plus the palette used to render them.
// Bounds are clipped to the 1st/99th percentile of the data so a single
// extreme community area does not flatten the visible color range.
type Scale struct {
	Low     float64
	High    float64
	Palette string
}

const (
	lowQuantile  = 0.01
	highQuantile = 0.99
)

// Compute filters null values and returns the clipped scale bounds. With
// fewer than two distinct non-null values the bounds collapse (Low == High);
// renderers treat that as mapping everything to one color.
func Compute(values []*float64) Scale {
	xs := NonNull(values)
	s := Scale{Palette: "inferno"}

	switch len(xs) {
	case 0:
		return s
	case 1:
		s.Low, s.High = xs[0], xs[0]
		return s
	}

	sort.Float64s(xs)
	s.Low = quantile(xs, lowQuantile)
	s.High = quantile(xs, highQuantile)

	zap.L().Debug("computed color scale",
		zap.String("component", "scale"),
		zap.Float64("low", s.Low),
		zap.Float64("high", s.High),
		zap.Int("values", len(xs)),
	)
	return s
}

// Degenerate reports whether the bounds collapsed to a single value.
func (s Scale) Degenerate() bool {
	return s.High <= s.Low
}

// Normalize maps a value into [0, 1] across the scale bounds, clamping
// clipped outliers to the ends. A degenerate scale, or a NaN value, maps
// to the palette midpoint.
func (s Scale) Normalize(v float64) float64 {
	if s.Degenerate() || math.IsNaN(v) {
		return 0.5
	}
	t := (v - s.Low) / (s.High - s.Low)
	return math.Min(1, math.Max(0, t))
}

// quantile is the type-7 estimator (linear interpolation between order
// statistics, the convention of mainstream statistical libraries). Input
// must be sorted and non-empty.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	i := int(math.Floor(h))
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

// NonNull extracts the non-null values.
func NonNull(values []*float64) []float64 {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			xs = append(xs, *v)
		}
	}
	return xs
}

// Summary describes a metric value distribution for run logs.
type Summary struct {
	Count int
	Nulls int
	Min   float64
	Max   float64
	Mean  float64
}

// Summarize computes the distribution summary of the joined metric values.
func Summarize(values []*float64) Summary {
	xs := NonNull(values)
	sum := Summary{Count: len(xs), Nulls: len(values) - len(xs)}
	if len(xs) == 0 {
		return sum
	}
	sum.Min = floats.Min(xs)
	sum.Max = floats.Max(xs)
	sum.Mean = stat.Mean(xs, nil)
	return sum
}
