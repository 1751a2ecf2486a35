package poster

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/chicago-health-atlas/healthmap/internal/config"
	"github.com/chicago-health-atlas/healthmap/internal/geodata"
	"github.com/chicago-health-atlas/healthmap/internal/join"
	"github.com/chicago-health-atlas/healthmap/internal/scale"
)

func testConfig() config.PosterConfig {
	return config.PosterConfig{Width: 440, Height: 560, BasemapEnabled: false}
}

func feature(name string, value *float64, minLon, minLat, maxLon, maxLat float64) *join.Feature {
	g := geom.NewPolygonFlat(geom.XY, []float64{
		minLon, minLat, maxLon, minLat, maxLon, maxLat, minLon, maxLat, minLon, minLat,
	}, []int{10})
	return &join.Feature{
		Geo:      &geodata.Feature{Geometry: g, Properties: map[string]any{"community": name}},
		AreaName: name,
		Value:    value,
	}
}

func ptr(v float64) *float64 { return &v }

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestRenderDimensionsAndFormat(t *testing.T) {
	r := New(testConfig())
	features := []*join.Feature{
		feature("A", ptr(5), 0, 0, 1, 1),
		feature("B", nil, 1, 0, 2, 1),
	}

	data, err := r.Render(context.Background(), features, scale.Compute(join.Values(features)), "Birth Rate")
	require.NoError(t, err)

	img := decodePNG(t, data)
	assert.Equal(t, 440, img.Bounds().Dx())
	assert.Equal(t, 560, img.Bounds().Dy())
}

func TestRenderFillColors(t *testing.T) {
	r := New(testConfig())
	features := []*join.Feature{
		feature("A", ptr(5), 0, 0, 1, 1),
		feature("B", nil, 1, 0, 2, 1),
	}
	s := scale.Compute(join.Values(features))

	data, err := r.Render(context.Background(), features, s, "Birth Rate")
	require.NoError(t, err)
	img := decodePNG(t, data)

	// Locate each square's center through the same viewport math.
	mapRect := image.Rect(440/20, 560*8/100, 440*19/20, 560*80/100)
	b := geom.NewBounds(geom.XY)
	for _, f := range features {
		b.Extend(f.Geo.Geometry)
	}
	minX, minY, maxX, maxY := mercatorBounds(b)
	v := newViewport(minX, minY, maxX, maxY, mapRect.Min.X, mapRect.Min.Y, mapRect.Dx(), mapRect.Dy())

	ax, ay := v.toPixel(mercator(0.5, 0.5))
	bx, by := v.toPixel(mercator(1.5, 0.5))

	ar, ag, ab, _ := img.At(int(ax), int(ay)).RGBA()
	nr, ng, nb, _ := img.At(int(bx), int(by)).RGBA()

	// The valued region is palette-colored, the null region neutral gray.
	assert.False(t, ar == ag && ag == ab, "valued region should not be grayscale")
	assert.Equal(t, nr, ng)
	assert.Equal(t, ng, nb)
}

func TestRenderNoFeatures(t *testing.T) {
	r := New(testConfig())
	_, err := r.Render(context.Background(), nil, scale.Scale{}, "Birth Rate")
	require.Error(t, err)
}

func TestRenderDegenerateScale(t *testing.T) {
	r := New(testConfig())
	features := []*join.Feature{feature("A", ptr(7), 0, 0, 1, 1)}

	// Equal bounds must not panic or divide by zero.
	data, err := r.Render(context.Background(), features, scale.Compute(join.Values(features)), "Stroke")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderBasemapFailureIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.BasemapEnabled = true
	cfg.BasemapURL = srv.URL
	cfg.TileTimeoutSec = 2
	cfg.TilesPerSecond = 100
	cfg.BasemapOpacity = 0.4

	r := New(cfg)
	features := []*join.Feature{feature("A", ptr(5), 0, 0, 1, 1)}

	data, err := r.Render(context.Background(), features, scale.Compute(join.Values(features)), "Birth Rate")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestMercator(t *testing.T) {
	x, y := mercator(0, 0)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, _ = mercator(180, 0)
	assert.InDelta(t, originShift, x, 1e-6)

	_, y = mercator(0, 85.05112878)
	assert.InDelta(t, originShift, y, 1)

	// Chicago stays in the right quadrant.
	x, y = mercator(-87.6298, 41.8781)
	assert.Less(t, x, 0.0)
	assert.Greater(t, y, 0.0)
}

func TestViewportRoundTrip(t *testing.T) {
	v := newViewport(0, 0, 1000, 2000, 10, 20, 100, 400)

	// Corners map inside the rect, y flipped.
	x0, y0 := v.toPixel(0, 0)
	x1, y1 := v.toPixel(1000, 2000)
	assert.LessOrEqual(t, 10.0, x0)
	assert.LessOrEqual(t, x1, 110.0)
	assert.Greater(t, y0, y1)

	// Aspect preserved: one meter is the same number of pixels each axis.
	xm, _ := v.toPixel(500, 0)
	_, ym := v.toPixel(0, 1000)
	assert.InDelta(t, (x1-x0)/2, xm-x0, 1e-9)
	assert.InDelta(t, (y0-y1)/2, y0-ym, 1e-9)
}

func TestTileMath(t *testing.T) {
	// Zoom 1 splits the world into 2x2; the NE quadrant is tile (1, 0).
	tx, ty := tileAt(originShift/2, originShift/2, 1)
	assert.Equal(t, 1, tx)
	assert.Equal(t, 0, ty)

	minX, minY, maxX, maxY := tileBounds(tx, ty, 1)
	assert.InDelta(t, 0, minX, 1e-6)
	assert.InDelta(t, originShift, maxX, 1e-6)
	assert.InDelta(t, 0, minY, 1e-6)
	assert.InDelta(t, originShift, maxY, 1e-6)

	// tileAt is consistent with tileBounds across zooms.
	for z := 1; z <= 10; z++ {
		gx, gy := tileAt(-9753673, 5142727, z) // Chicago-ish
		bMinX, bMinY, bMaxX, bMaxY := tileBounds(gx, gy, z)
		assert.LessOrEqual(t, bMinX, -9753673.0)
		assert.GreaterOrEqual(t, bMaxX, -9753673.0)
		assert.LessOrEqual(t, bMinY, 5142727.0)
		assert.GreaterOrEqual(t, bMaxY, 5142727.0)
	}
}

func TestTileZoomMatchesResolution(t *testing.T) {
	// A viewport ~1000px wide over ~Chicago (~30km) should land in the
	// city-scale zoom range.
	minX, minY := mercator(-87.9, 41.6)
	maxX, maxY := mercator(-87.5, 42.05)
	v := newViewport(minX, minY, maxX, maxY, 0, 0, 1000, 1400)

	z := v.tileZoom()
	assert.GreaterOrEqual(t, z, 9)
	assert.LessOrEqual(t, z, 13)
}

func TestWrapText(t *testing.T) {
	face := newFace(12, false)
	require.NotNil(t, face)

	lines := wrapText("one two three four five six seven eight nine ten", face, 100)
	assert.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.NotEmpty(t, l)
	}

	// Everything fits on one line when the width allows.
	lines = wrapText("short", face, math.MaxInt32)
	assert.Equal(t, []string{"short"}, lines)
}
