// Package tabular loads health-metric tables from CSV or XLSX sources. Rows
// are keyed by the "Community Area Name" column; all other columns are
// candidate metrics.
package tabular

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// KeyColumn is the required join-key column. Match is exact after header
// whitespace trimming.
const KeyColumn = "Community Area Name"

var (
	// ErrMissingSource indicates the metric source file does not exist.
	ErrMissingSource = eris.New("tabular: missing source")
	// ErrSchema indicates the required key column is absent.
	ErrSchema = eris.New("tabular: schema")
)

// Row maps a normalized column name to its raw cell value.
type Row map[string]string

// Table is a loaded metric table with column order preserved.
type Table struct {
	Columns []string
	Rows    []Row
}

// Key returns the row's community-area name value.
func (r Row) Key() string {
	return r[KeyColumn]
}

// MetricColumns returns every column except the join key, in source order.
func (t *Table) MetricColumns() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c != KeyColumn {
			cols = append(cols, c)
		}
	}
	return cols
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Load reads a metric table, dispatching on file extension. Supported
// formats are CSV (default) and XLSX.
func Load(ctx context.Context, path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(ErrMissingSource, "tabular: %s", path)
	}

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		records, err = readCSV(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	table, err := fromRecords(records)
	if err != nil {
		return nil, err
	}

	zap.L().Info("loaded metric source",
		zap.String("component", "tabular"),
		zap.String("path", path),
		zap.Int("rows", len(table.Rows)),
		zap.Int("metric_columns", len(table.MetricColumns())),
	)
	return table, nil
}

// fromRecords builds a Table from raw records. The first record is the
// header; header names are trimmed of leading/trailing whitespace.
func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, eris.Wrap(ErrSchema, "tabular: empty source")
	}

	header := make([]string, len(records[0]))
	hasKey := false
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] == KeyColumn {
			hasKey = true
		}
	}
	if !hasKey {
		return nil, eris.Wrapf(ErrSchema, "tabular: required column %q not found", KeyColumn)
	}

	t := &Table{Columns: header}
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
