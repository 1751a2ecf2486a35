package geodata

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// loadGeoJSON reads a GeoJSON FeatureCollection. Features without geometry
// are skipped with a warning rather than failing the load.
func loadGeoJSON(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "geodata: parse GeoJSON %s", path)
	}

	log := zap.L().With(zap.String("component", "geodata"))

	col := &Collection{}
	for i, f := range fc.Features {
		if f.Geometry == nil {
			log.Warn("skipping feature without geometry", zap.Int("index", i))
			continue
		}
		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		col.Features = append(col.Features, &Feature{
			Geometry:   f.Geometry,
			Properties: trimKeys(props),
		})
	}

	log.Info("loaded boundary source",
		zap.String("path", path),
		zap.String("format", "geojson"),
		zap.Int("features", len(col.Features)),
	)
	return col, nil
}
