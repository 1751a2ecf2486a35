// Package poster renders the static choropleth artifact: a fixed-size
// portrait PNG with a projected polygon layer, an optional muted basemap,
// a title, a horizontal colorbar, and a caption.
package poster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/chicago-health-atlas/healthmap/internal/config"
	"github.com/chicago-health-atlas/healthmap/internal/join"
	"github.com/chicago-health-atlas/healthmap/internal/render/basemap"
	"github.com/chicago-health-atlas/healthmap/internal/scale"
)

// maxBasemapTiles bounds the tile grid fetched for one poster; the zoom is
// stepped down until the grid fits.
const maxBasemapTiles = 100

var (
	colorOutline = color.RGBA{255, 255, 255, 255}
	colorNoData  = color.RGBA{217, 217, 217, 255}
	colorText    = color.RGBA{33, 33, 33, 255}
)

// Renderer produces the poster artifact.
type Renderer struct {
	cfg   config.PosterConfig
	tiles *basemap.Client
}

// New creates a poster renderer. The basemap client is only constructed
// when the basemap layer is enabled.
func New(cfg config.PosterConfig) *Renderer {
	r := &Renderer{cfg: cfg}
	if cfg.BasemapEnabled && cfg.BasemapURL != "" {
		r.tiles = basemap.NewClient(
			cfg.BasemapURL,
			time.Duration(cfg.TileTimeoutSec)*time.Second,
			cfg.TilesPerSecond,
		)
	}
	return r
}

// Render draws the joined features as a Web Mercator choropleth and returns
// the encoded PNG. Basemap failure degrades to a plain background; every
// other step is deterministic.
func (r *Renderer) Render(ctx context.Context, features []*join.Feature, s scale.Scale, metricName string) ([]byte, error) {
	if len(features) == 0 {
		return nil, eris.New("poster: no features to render")
	}

	log := zap.L().With(zap.String("component", "poster"))
	w, h := r.cfg.Width, r.cfg.Height
	if w <= 0 || h <= 0 {
		w, h = 2200, 2800
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	// Map area between the title band and the colorbar band.
	mapRect := image.Rect(w/20, h*8/100, w*19/20, h*80/100)

	bounds := geom.NewBounds(geom.XY)
	for _, f := range features {
		bounds.Extend(f.Geo.Geometry)
	}
	minX, minY, maxX, maxY := mercatorBounds(bounds)
	v := newViewport(minX, minY, maxX, maxY, mapRect.Min.X, mapRect.Min.Y, mapRect.Dx(), mapRect.Dy())

	if r.tiles != nil {
		if err := r.drawBasemap(ctx, canvas, mapRect, v); err != nil {
			log.Warn("basemap unavailable, rendering without it", zap.Error(err))
		}
	}

	if err := r.drawChoropleth(canvas, features, s, v); err != nil {
		return nil, err
	}

	r.drawTitle(canvas, metricName, w, h)
	r.drawColorbar(canvas, s, metricName, w, h)
	r.drawCaption(canvas, metricName, w, h)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, eris.Wrap(err, "poster: encode png")
	}
	log.Info("rendered poster", zap.Int("width", w), zap.Int("height", h), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// drawBasemap fetches the tile grid covering the viewport and composites it
// at reduced opacity beneath the choropleth. Any fetch failure aborts the
// whole layer; the caller degrades gracefully.
func (r *Renderer) drawBasemap(ctx context.Context, canvas *image.RGBA, mapRect image.Rectangle, v viewport) error {
	zoom := v.tileZoom()

	// Expand the data extent to the full map rect so tiles cover the
	// centering margins too.
	rectMinX := v.minX - v.offX/v.scale
	rectMaxX := v.maxX + v.offX/v.scale
	rectMinY := v.minY - v.offY/v.scale
	rectMaxY := v.maxY + v.offY/v.scale

	var txMin, txMax, tyMin, tyMax int
	for ; zoom >= minTileZoom; zoom-- {
		txMin, tyMin = tileAt(rectMinX, rectMaxY, zoom)
		txMax, tyMax = tileAt(rectMaxX, rectMinY, zoom)
		if (txMax-txMin+1)*(tyMax-tyMin+1) <= maxBasemapTiles {
			break
		}
	}

	layer := image.NewRGBA(image.Rect(0, 0, mapRect.Dx(), mapRect.Dy()))
	for ty := tyMin; ty <= tyMax; ty++ {
		for tx := txMin; tx <= txMax; tx++ {
			tile, err := r.tiles.FetchImage(ctx, zoom, tx, ty)
			if err != nil {
				return eris.Wrapf(err, "poster: basemap tile %d/%d/%d", zoom, tx, ty)
			}

			tMinX, tMinY, tMaxX, tMaxY := tileBounds(tx, ty, zoom)
			x0, y0 := v.toPixel(tMinX, tMaxY)
			x1, y1 := v.toPixel(tMaxX, tMinY)
			dst := image.Rect(
				int(x0)-mapRect.Min.X, int(y0)-mapRect.Min.Y,
				int(x1)-mapRect.Min.X, int(y1)-mapRect.Min.Y,
			)
			xdraw.ApproxBiLinear.Scale(layer, dst, tile, tile.Bounds(), xdraw.Over, nil)
		}
	}

	alpha := uint8(255 * r.cfg.BasemapOpacity)
	if alpha == 0 {
		alpha = 102
	}
	draw.DrawMask(canvas, mapRect, layer, image.Point{}, &image.Uniform{color.Alpha{A: alpha}}, image.Point{}, draw.Over)

	zap.L().Debug("composited basemap",
		zap.Int("zoom", zoom),
		zap.Int("tiles", (txMax-txMin+1)*(tyMax-tyMin+1)),
	)
	return nil
}

// drawChoropleth fills every polygon by its metric value mapped through the
// scale and the inferno palette, with thin light outlines. Null values
// render as neutral gray.
func (r *Renderer) drawChoropleth(canvas *image.RGBA, features []*join.Feature, s scale.Scale, v viewport) error {
	gc, err := drawing.NewRasterGraphicContext(canvas)
	if err != nil {
		return eris.Wrap(err, "poster: create graphic context")
	}
	gc.SetLineWidth(float64(canvas.Bounds().Dx()) / 1500)

	for _, f := range features {
		var fill color.Color = colorNoData
		if f.Value != nil {
			fill = scale.Inferno(s.Normalize(*f.Value))
		}
		gc.SetFillColor(fill)
		gc.SetStrokeColor(colorOutline)

		eachPolygon(f.Geo.Geometry, func(rings [][]geom.Coord) {
			gc.BeginPath()
			for _, ring := range rings {
				for i, c := range ring {
					px, py := v.toPixel(mercatorCoord(c))
					if i == 0 {
						gc.MoveTo(px, py)
					} else {
						gc.LineTo(px, py)
					}
				}
				gc.Close()
			}
			gc.FillStroke()
		})
	}
	return nil
}

func (r *Renderer) drawTitle(canvas *image.RGBA, metricName string, w, h int) {
	face := newFace(float64(w)/28, true)
	title := fmt.Sprintf("%s Across Chicago Community Areas", metricName)
	drawCenteredString(canvas, title, w/2, h*5/100, colorText, face)
}

// drawColorbar paints a horizontal legend bar mapping the palette to the
// scale bounds, labeled with the metric name.
func (r *Renderer) drawColorbar(canvas *image.RGBA, s scale.Scale, metricName string, w, h int) {
	x0, x1 := w*20/100, w*80/100
	y0 := h * 84 / 100
	y1 := y0 + h*18/1000

	for x := x0; x < x1; x++ {
		t := 0.5
		if x1 > x0+1 {
			t = float64(x-x0) / float64(x1-x0-1)
		}
		col := scale.Inferno(t)
		for y := y0; y < y1; y++ {
			canvas.SetRGBA(x, y, col)
		}
	}

	small := newFace(float64(w)/90, false)
	labelY := y1 + h*16/1000
	drawCenteredString(canvas, fmt.Sprintf("%.4g", s.Low), x0, labelY, colorText, small)
	drawCenteredString(canvas, fmt.Sprintf("%.4g", s.High), x1, labelY, colorText, small)
	drawCenteredString(canvas, metricName, w/2, labelY+h*16/1000, colorText, small)
}

func (r *Renderer) drawCaption(canvas *image.RGBA, metricName string, w, h int) {
	caption := fmt.Sprintf(
		"This map shows spatial patterns of %s in Chicago. Darker colors represent higher values. "+
			"These patterns highlight how health outcomes vary across neighborhoods, often reflecting "+
			"structural, environmental, and socioeconomic factors.",
		strings.ToLower(metricName),
	)

	face := newFace(float64(w)/95, false)
	lineHeight := h * 14 / 1000
	y := h * 92 / 100
	for _, line := range wrapText(caption, face, w*8/10) {
		drawCenteredString(canvas, line, w/2, y, colorText, face)
		y += lineHeight
	}
}

// eachPolygon invokes fn once per polygon with all of its rings (outer ring
// first). Non-areal geometries are ignored.
func eachPolygon(g geom.T, fn func(rings [][]geom.Coord)) {
	switch t := g.(type) {
	case *geom.Polygon:
		fn(polygonRings(t))
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			fn(polygonRings(t.Polygon(i)))
		}
	}
}

func polygonRings(p *geom.Polygon) [][]geom.Coord {
	rings := make([][]geom.Coord, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		rings = append(rings, p.LinearRing(i).Coords())
	}
	return rings
}

func mercatorCoord(c geom.Coord) (float64, float64) {
	return mercator(c[0], c[1])
}
