package scale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrs(xs ...float64) []*float64 {
	out := make([]*float64, len(xs))
	for i := range xs {
		v := xs[i]
		out[i] = &v
	}
	return out
}

func TestComputeClipsOutliers(t *testing.T) {
	values := ptrs()
	for v := 1.0; v <= 100; v++ {
		values = append(values, ptrs(v)...)
	}

	s := Compute(values)
	// 1st/99th percentile bounds exclude the extreme low and high values.
	assert.Greater(t, s.Low, 1.0)
	assert.Less(t, s.High, 100.0)
	assert.InDelta(t, 1.99, s.Low, 1e-9)
	assert.InDelta(t, 99.01, s.High, 1e-9)
	assert.False(t, s.Degenerate())
}

func TestComputeOrdering(t *testing.T) {
	s := Compute(ptrs(10, 2, 7, 99, 0.5))
	assert.LessOrEqual(t, s.Low, s.High)
}

func TestComputeIgnoresNulls(t *testing.T) {
	values := ptrs(5, 10)
	values = append(values, nil, nil)

	s := Compute(values)
	assert.LessOrEqual(t, s.Low, s.High)
	assert.GreaterOrEqual(t, s.Low, 5.0)
	assert.LessOrEqual(t, s.High, 10.0)
}

func TestComputeDegenerate(t *testing.T) {
	// All null.
	s := Compute([]*float64{nil, nil})
	assert.True(t, s.Degenerate())

	// Single value.
	s = Compute(ptrs(7))
	assert.True(t, s.Degenerate())
	assert.Equal(t, 7.0, s.Low)
	assert.Equal(t, 7.0, s.High)

	// All equal.
	s = Compute(ptrs(3, 3, 3))
	assert.True(t, s.Degenerate())
}

func TestNormalize(t *testing.T) {
	s := Scale{Low: 10, High: 20}
	assert.InDelta(t, 0.0, s.Normalize(10), 1e-9)
	assert.InDelta(t, 0.5, s.Normalize(15), 1e-9)
	assert.InDelta(t, 1.0, s.Normalize(20), 1e-9)
	// Clipped outliers clamp to the ends.
	assert.InDelta(t, 0.0, s.Normalize(-100), 1e-9)
	assert.InDelta(t, 1.0, s.Normalize(500), 1e-9)
}

func TestNormalizeDegenerate(t *testing.T) {
	s := Scale{Low: 5, High: 5}
	assert.InDelta(t, 0.5, s.Normalize(5), 1e-9)
	assert.InDelta(t, 0.5, s.Normalize(123), 1e-9)
}

func TestNormalizeNaN(t *testing.T) {
	s := Scale{Low: 10, High: 20}
	assert.InDelta(t, 0.5, s.Normalize(math.NaN()), 1e-9)
}

func TestQuantileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.0, quantile(sorted, 0), 1e-9)
	assert.InDelta(t, 2.5, quantile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 4.0, quantile(sorted, 1), 1e-9)
	assert.InDelta(t, 1.15, quantile(sorted, 0.05), 1e-9)
}

func TestSummarize(t *testing.T) {
	values := ptrs(2, 4, 6)
	values = append(values, nil)

	sum := Summarize(values)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 1, sum.Nulls)
	assert.Equal(t, 2.0, sum.Min)
	assert.Equal(t, 6.0, sum.Max)
	assert.InDelta(t, 4.0, sum.Mean, 1e-9)
}

func TestInfernoEndpoints(t *testing.T) {
	dark := Inferno(0)
	light := Inferno(1)
	assert.Equal(t, "#000004", Hex(dark))
	assert.Equal(t, "#fcffa4", Hex(light))

	// Mid range is valid and differs from both ends.
	mid := Inferno(0.5)
	assert.NotEqual(t, dark, mid)
	assert.NotEqual(t, light, mid)

	// Out-of-range and NaN inputs clamp instead of panicking.
	assert.Equal(t, dark, Inferno(-1))
	assert.Equal(t, light, Inferno(2))
	assert.Equal(t, dark, Inferno(math.NaN()))
}

func TestEqualBins(t *testing.T) {
	bins := EqualBins(ptrs(0, 30, 60), YlOrRd)
	require.Len(t, bins, 6)
	assert.InDelta(t, 0, bins[0].Low, 1e-9)
	assert.InDelta(t, 10, bins[0].High, 1e-9)
	assert.InDelta(t, 60, bins[5].High, 1e-9)

	assert.Equal(t, YlOrRd[0], ColorFor(bins, 3))
	assert.Equal(t, YlOrRd[2], ColorFor(bins, 25))
	assert.Equal(t, YlOrRd[5], ColorFor(bins, 60))
	assert.Equal(t, YlOrRd[5], ColorFor(bins, 999))
}

func TestEqualBinsDegenerate(t *testing.T) {
	bins := EqualBins(ptrs(5, 5, 5), YlOrRd)
	require.Len(t, bins, 1)
	assert.Equal(t, YlOrRd[5], bins[0].Color)

	assert.Nil(t, EqualBins([]*float64{nil}, YlOrRd))
}
