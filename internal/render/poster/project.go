package poster

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Web Mercator (EPSG:3857) constants.
const (
	originShift = 20037508.342789244 // meters at 180 degrees
	tileSize    = 256
	maxTileZoom = 17
	minTileZoom = 1
)

// mercator projects a lon/lat degree pair to Web Mercator meters.
func mercator(lon, lat float64) (x, y float64) {
	x = lon * originShift / 180
	y = math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180) * originShift / 180
	return x, y
}

// mercatorBounds projects a geographic bounding box to Web Mercator.
func mercatorBounds(b *geom.Bounds) (minX, minY, maxX, maxY float64) {
	minX, minY = mercator(b.Min(0), b.Min(1))
	maxX, maxY = mercator(b.Max(0), b.Max(1))
	return minX, minY, maxX, maxY
}

// viewport maps Web Mercator meters onto a pixel rectangle of the canvas,
// preserving aspect ratio and centering the data extent.
type viewport struct {
	minX, minY float64 // mercator extent
	maxX, maxY float64
	px, py     int // top-left canvas pixel of the drawing rect
	pw, ph     int
	scale      float64 // pixels per meter
	offX, offY float64 // centering offsets in pixels
}

func newViewport(minX, minY, maxX, maxY float64, px, py, pw, ph int) viewport {
	v := viewport{minX: minX, minY: minY, maxX: maxX, maxY: maxY, px: px, py: py, pw: pw, ph: ph}

	w := maxX - minX
	h := maxY - minY
	if w <= 0 || h <= 0 {
		v.scale = 1
		return v
	}
	v.scale = math.Min(float64(pw)/w, float64(ph)/h)
	v.offX = (float64(pw) - w*v.scale) / 2
	v.offY = (float64(ph) - h*v.scale) / 2
	return v
}

// toPixel converts Web Mercator meters to canvas pixel coordinates. The y
// axis flips: mercator y grows north, canvas y grows down.
func (v viewport) toPixel(mx, my float64) (float64, float64) {
	x := float64(v.px) + v.offX + (mx-v.minX)*v.scale
	y := float64(v.py) + v.offY + (v.maxY-my)*v.scale
	return x, y
}

// tileZoom picks the tile zoom whose native resolution best matches the
// viewport's pixels-per-meter.
func (v viewport) tileZoom() int {
	// meters per pixel at zoom z: 2*originShift / (tileSize * 2^z)
	target := 1 / v.scale
	z := int(math.Round(math.Log2(2 * originShift / (tileSize * target))))
	if z < minTileZoom {
		z = minTileZoom
	}
	if z > maxTileZoom {
		z = maxTileZoom
	}
	return z
}

// tileAt returns the tile column/row containing a mercator point at zoom z.
func tileAt(mx, my float64, z int) (tx, ty int) {
	n := float64(int(1) << uint(z))
	tx = int(math.Floor((mx + originShift) / (2 * originShift) * n))
	ty = int(math.Floor((originShift - my) / (2 * originShift) * n))
	limit := (1 << uint(z)) - 1
	tx = clampInt(tx, 0, limit)
	ty = clampInt(ty, 0, limit)
	return tx, ty
}

// tileBounds returns the mercator extent of tile (tx, ty) at zoom z.
func tileBounds(tx, ty, z int) (minX, minY, maxX, maxY float64) {
	n := float64(int(1) << uint(z))
	span := 2 * originShift / n
	minX = -originShift + float64(tx)*span
	maxX = minX + span
	maxY = originShift - float64(ty)*span
	minY = maxY - span
	return minX, minY, maxX, maxY
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
