// Package geodata loads community-area boundary polygons from GeoJSON or
// ESRI shapefile sources into an in-memory feature collection.
package geodata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

var (
	// ErrMissingSource indicates the boundary source file does not exist.
	ErrMissingSource = eris.New("geodata: missing source")
	// ErrSchema indicates the source has no community-area name attribute.
	ErrSchema = eris.New("geodata: schema")
)

// Feature is one polygon or multi-polygon region with its attributes.
type Feature struct {
	Geometry   geom.T
	Properties map[string]any
}

// Collection is a set of boundary features sharing a schema. NameField is
// the attribute holding the community-area name, detected at load time.
type Collection struct {
	Features  []*Feature
	NameField string
}

// Name returns the community-area name attribute of the feature as a string,
// or "" if absent.
func (f *Feature) Name(nameField string) string {
	v, ok := f.Properties[nameField]
	if !ok || v == nil {
		return ""
	}
	return asString(v)
}

// Centroid returns the centroid of the feature's geometry. Falls back to the
// bounding-box center for geometries the centroid algorithm rejects.
func (f *Feature) Centroid() geom.Coord {
	c, err := xy.Centroid(f.Geometry)
	if err == nil && len(c) >= 2 {
		return c
	}
	b := f.Geometry.Bounds()
	return geom.Coord{(b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2}
}

// Bounds returns the bounding box of the whole collection.
func (c *Collection) Bounds() *geom.Bounds {
	bounds := geom.NewBounds(geom.XY)
	for _, f := range c.Features {
		bounds.Extend(f.Geometry)
	}
	return bounds
}

// Load reads a boundary source, dispatching on file extension. Supported
// formats are GeoJSON (.geojson, .json) and ESRI shapefile (.shp).
func Load(path string) (*Collection, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(ErrMissingSource, "geodata: %s", path)
	}

	var (
		col *Collection
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		col, err = loadShapefile(path)
	default:
		col, err = loadGeoJSON(path)
	}
	if err != nil {
		return nil, err
	}

	field, err := detectNameField(col)
	if err != nil {
		return nil, err
	}
	col.NameField = field
	return col, nil
}

// detectNameField finds the attribute whose name contains "community",
// case-insensitively. Keys are scanned in sorted order so detection is
// deterministic regardless of map iteration.
func detectNameField(col *Collection) (string, error) {
	seen := map[string]bool{}
	var keys []string
	for _, f := range col.Features {
		for k := range f.Properties {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), "community") {
			return k, nil
		}
	}
	return "", eris.Wrap(ErrSchema, "geodata: no community field in boundary source")
}

// trimKeys rebuilds a property map with leading/trailing whitespace stripped
// from every attribute name.
func trimKeys(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
