// Package join matches boundary features to metric rows by a normalized
// community-area name and derives the numeric value surface for rendering.
package join

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/chicago-health-atlas/healthmap/internal/geodata"
	"github.com/chicago-health-atlas/healthmap/internal/tabular"
)

// ErrMetricNotFound indicates the requested metric column is not present in
// the metric table.
var ErrMetricNotFound = eris.New("join: metric not found")

// Feature is a boundary feature extended with its matched metric row and the
// selected metric coerced to a number. Value is nil when the feature had no
// matching row or the raw value failed numeric coercion.
type Feature struct {
	Geo        *geodata.Feature
	Key        string
	AreaName   string
	Attributes tabular.Row
	Value      *float64
}

// NormalizeKey derives the join key from an area name: Unicode case folding
// plus leading/trailing whitespace removal, applied identically to both
// sides of the join. The function is idempotent.
func NormalizeKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Join performs a left join of boundary features against metric rows on the
// normalized area name. Every feature appears exactly once in the result;
// unmatched features get a nil metric value and unmatched rows are dropped.
// Duplicate keys on the metric side resolve first-match-wins in row order.
func Join(col *geodata.Collection, table *tabular.Table, metric string) ([]*Feature, error) {
	if !table.HasColumn(metric) {
		return nil, eris.Wrapf(ErrMetricNotFound, "join: metric %q not in metric source", metric)
	}

	log := zap.L().With(zap.String("component", "join"), zap.String("metric", metric))

	byKey := make(map[string]tabular.Row, len(table.Rows))
	for _, row := range table.Rows {
		key := NormalizeKey(row.Key())
		if key == "" {
			continue
		}
		if _, dup := byKey[key]; dup {
			log.Debug("duplicate metric key, keeping first row", zap.String("key", key))
			continue
		}
		byKey[key] = row
	}

	joined := make([]*Feature, 0, len(col.Features))
	unmatched := 0
	unparsed := 0

	for _, gf := range col.Features {
		name := gf.Name(col.NameField)
		jf := &Feature{
			Geo:      gf,
			Key:      NormalizeKey(name),
			AreaName: name,
		}

		if row, ok := byKey[jf.Key]; ok {
			jf.Attributes = row
			if jf.AreaName == "" {
				jf.AreaName = row.Key()
			}
			jf.Value = Coerce(row[metric])
			if jf.Value == nil {
				unparsed++
			}
		} else {
			unmatched++
		}

		joined = append(joined, jf)
	}

	if unmatched > 0 || unparsed > 0 {
		log.Warn("join produced null metric values",
			zap.Int("unmatched_features", unmatched),
			zap.Int("unparseable_values", unparsed),
		)
	}
	log.Info("joined boundary and metric data",
		zap.Int("features", len(joined)),
		zap.Int("metric_rows", len(table.Rows)),
	)
	return joined, nil
}

// Coerce parses a raw cell value as a number. Thousands separators and a
// trailing percent sign are tolerated. Returns nil for anything that does
// not parse; bad values render as neutral regions rather than failing a run.
// NaN and infinity cells count as missing: exported tables spell absent
// values "NaN" and a non-finite value has no place on a color scale.
func Coerce(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Values extracts the metric value of every joined feature, preserving
// order; nil entries are kept so callers see the full null pattern.
func Values(features []*Feature) []*float64 {
	out := make([]*float64, len(features))
	for i, f := range features {
		out[i] = f.Value
	}
	return out
}
