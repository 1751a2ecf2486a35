package scale

import (
	"fmt"
	"image/color"
	"math"
)

// infernoStops are evenly spaced anchors of the perceptually uniform
// inferno colormap, dark to light.
var infernoStops = []color.RGBA{
	{0, 0, 4, 255},
	{27, 12, 65, 255},
	{74, 12, 107, 255},
	{120, 28, 109, 255},
	{165, 44, 96, 255},
	{207, 68, 70, 255},
	{237, 105, 37, 255},
	{251, 155, 6, 255},
	{247, 209, 61, 255},
	{252, 255, 164, 255},
}

// Inferno returns the inferno colormap sample at t in [0, 1]. Out-of-range
// and NaN inputs clamp instead of indexing outside the stops.
func Inferno(t float64) color.RGBA {
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Min(1, math.Max(0, t))
	pos := t * float64(len(infernoStops)-1)
	i := int(math.Floor(pos))
	if i >= len(infernoStops)-1 {
		return infernoStops[len(infernoStops)-1]
	}
	frac := pos - float64(i)
	a, b := infernoStops[i], infernoStops[i+1]
	return color.RGBA{
		R: lerp8(a.R, b.R, frac),
		G: lerp8(a.G, b.G, frac),
		B: lerp8(a.B, b.B, frac),
		A: 255,
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
}

// YlOrRd is the six-class yellow-orange-red sequential palette used by the
// interactive map, light to dark.
var YlOrRd = []string{"#ffffb2", "#fed976", "#feb24c", "#fd8d3c", "#f03b20", "#bd0026"}

// Bin is one class of a binned choropleth scale.
type Bin struct {
	Low   float64
	High  float64
	Color string
}

// EqualBins splits the non-null value range into len(colors) equal-interval
// classes. A degenerate range yields a single bin.
func EqualBins(values []*float64, colors []string) []Bin {
	xs := NonNull(values)
	if len(xs) == 0 || len(colors) == 0 {
		return nil
	}

	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		return []Bin{{Low: lo, High: hi, Color: colors[len(colors)-1]}}
	}

	n := len(colors)
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{
			Low:   lo + float64(i)*width,
			High:  lo + float64(i+1)*width,
			Color: colors[i],
		}
	}
	bins[n-1].High = hi
	return bins
}

// ColorFor returns the bin color for v. Values outside the range clamp to
// the end bins.
func ColorFor(bins []Bin, v float64) string {
	if len(bins) == 0 {
		return ""
	}
	for _, b := range bins {
		if v <= b.High {
			return b.Color
		}
	}
	return bins[len(bins)-1].Color
}

// Hex renders c as a #rrggbb string.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
