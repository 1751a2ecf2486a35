// Package webmap renders the interactive choropleth artifact: a
// self-contained Leaflet document with a binned warm-palette layer, hover
// tooltips, and a legend.
package webmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/chicago-health-atlas/healthmap/internal/config"
	"github.com/chicago-health-atlas/healthmap/internal/join"
	"github.com/chicago-health-atlas/healthmap/internal/scale"
)

const noDataColor = "#d9d9d9"

// Renderer produces the interactive artifact.
type Renderer struct {
	cfg config.WebmapConfig
}

// New creates a webmap renderer.
func New(cfg config.WebmapConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

type legendEntry struct {
	Color string
	Label string
}

type pageData struct {
	Title       string
	MetricName  string
	CenterLat   float64
	CenterLng   float64
	Zoom        int
	TileURL     string
	Attribution string
	GeoJSON     template.JS
	Legend      []legendEntry
}

// Render builds the interactive document for the joined features. Geometry
// stays in geographic coordinates; the value surface is binned into six
// equal-interval warm-palette classes computed from the data.
func (r *Renderer) Render(features []*join.Feature, metricName string) ([]byte, error) {
	if len(features) == 0 {
		return nil, eris.New("webmap: no features to render")
	}

	bins := scale.EqualBins(join.Values(features), scale.YlOrRd)
	lat, lng := center(features)

	fc := geojson.FeatureCollection{}
	for i, f := range features {
		props := map[string]any{
			"name":    f.AreaName,
			"color":   noDataColor,
			"tooltip": tooltipHTML(metricName, f),
		}
		if f.Value != nil {
			props["value"] = *f.Value
			props["color"] = scale.ColorFor(bins, *f.Value)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         fmt.Sprintf("%d", i),
			Geometry:   f.Geo.Geometry,
			Properties: props,
		})
	}

	payload, err := json.Marshal(&fc)
	if err != nil {
		return nil, eris.Wrap(err, "webmap: marshal geojson")
	}

	zoom := r.cfg.Zoom
	if zoom == 0 {
		zoom = 10
	}

	data := pageData{
		Title:       fmt.Sprintf("%s Across Chicago Community Areas", metricName),
		MetricName:  metricName,
		CenterLat:   lat,
		CenterLng:   lng,
		Zoom:        zoom,
		TileURL:     r.cfg.TileURL,
		Attribution: r.cfg.TileAttribution,
		GeoJSON:     template.JS(payload), //nolint:gosec // json.Marshal output
		Legend:      legend(bins),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, eris.Wrap(err, "webmap: execute template")
	}

	zap.L().Info("rendered interactive map",
		zap.String("component", "webmap"),
		zap.Int("features", len(features)),
		zap.Int("bins", len(bins)),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// center is the mean of the polygon centroids across all features.
func center(features []*join.Feature) (lat, lng float64) {
	lats := make([]float64, 0, len(features))
	lngs := make([]float64, 0, len(features))
	for _, f := range features {
		c := f.Geo.Centroid()
		lngs = append(lngs, c[0])
		lats = append(lats, c[1])
	}
	return stat.Mean(lats, nil), stat.Mean(lngs, nil)
}

// tooltipHTML renders the hover tooltip body for one feature.
func tooltipHTML(metricName string, f *join.Feature) string {
	name := f.AreaName
	if name == "" {
		name = "Unknown"
	}
	value := "No data"
	if f.Value != nil {
		value = fmt.Sprintf("%.4g", *f.Value)
	}
	return fmt.Sprintf("<b>Community Area:</b> %s<br><b>%s:</b> %s",
		template.HTMLEscapeString(name), template.HTMLEscapeString(metricName), value)
}

func legend(bins []scale.Bin) []legendEntry {
	entries := make([]legendEntry, 0, len(bins)+1)
	for _, b := range bins {
		entries = append(entries, legendEntry{
			Color: b.Color,
			Label: fmt.Sprintf("%.4g to %.4g", b.Low, b.High),
		})
	}
	entries = append(entries, legendEntry{Color: noDataColor, Label: "No data"})
	return entries
}
