package geodata

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// loadShapefile reads an ESRI shapefile. DBF field names double as the
// attribute names, trimmed of their null padding.
func loadShapefile(path string) (*Collection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimSpace(strings.TrimRight(f.String(), "\x00"))
	}

	log := zap.L().With(zap.String("component", "geodata"))

	col := &Collection{}
	for reader.Next() {
		n, shape := reader.Shape()
		g := shapeToGeom(shape)
		if g == nil {
			log.Warn("skipping non-polygon shape", zap.Int("record", n))
			continue
		}

		props := make(map[string]any, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(reader.Attribute(i))
		}

		col.Features = append(col.Features, &Feature{
			Geometry:   g,
			Properties: props,
		})
	}

	log.Info("loaded boundary source",
		zap.String("path", path),
		zap.String("format", "shapefile"),
		zap.Int("features", len(col.Features)),
	)
	return col, nil
}

// shapeToGeom converts a shapefile polygon to a geom.MultiPolygon.
// Returns nil for unsupported or empty shapes.
func shapeToGeom(s shp.Shape) geom.T {
	p, ok := s.(*shp.Polygon)
	if !ok || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geodata: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geodata: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
