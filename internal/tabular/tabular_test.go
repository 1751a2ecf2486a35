package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, " Community Area Name ,Birth Rate,Diabetes-related\nAustin,16.2,85.3\nLoop,9.1,20.4\n")

	table, err := Load(context.Background(), path)
	require.NoError(t, err)

	// Header names are trimmed.
	assert.Equal(t, []string{KeyColumn, "Birth Rate", "Diabetes-related"}, table.Columns)
	assert.Equal(t, []string{"Birth Rate", "Diabetes-related"}, table.MetricColumns())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Austin", table.Rows[0].Key())
	assert.Equal(t, "16.2", table.Rows[0]["Birth Rate"])
	assert.Equal(t, "20.4", table.Rows[1]["Diabetes-related"])
}

func writeTempXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.xlsx")

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rec := range rows {
		row := sheet.AddRow()
		for _, cell := range rec {
			row.AddCell().SetString(cell)
		}
	}
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeTempXLSX(t, [][]string{
		{" Community Area Name ", "Birth Rate"},
		{"Austin", "16.2"},
		{"Loop", "9.1"},
	})

	table, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{KeyColumn, "Birth Rate"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Austin", table.Rows[0].Key())
	assert.Equal(t, "9.1", table.Rows[1]["Birth Rate"])
}

func TestLoadXLSXMissingKeyColumn(t *testing.T) {
	path := writeTempXLSX(t, [][]string{
		{"Area", "Birth Rate"},
		{"Austin", "16.2"},
	})

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSchema))
}

func TestLoadMissingSource(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingSource))
}

func TestLoadMissingKeyColumn(t *testing.T) {
	path := writeTempCSV(t, "Area,Birth Rate\nAustin,16.2\n")
	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSchema))
	assert.Contains(t, err.Error(), "Community Area Name")
}

func TestLoadEmptySource(t *testing.T) {
	path := writeTempCSV(t, "")
	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrSchema))
}

func TestLoadRaggedRows(t *testing.T) {
	// Short rows leave the trailing columns unset rather than erroring.
	path := writeTempCSV(t, "Community Area Name,Birth Rate,Diabetes-related\nAustin,16.2\n")

	table, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "16.2", table.Rows[0]["Birth Rate"])
	assert.Equal(t, "", table.Rows[0]["Diabetes-related"])
}

func TestHasColumn(t *testing.T) {
	path := writeTempCSV(t, "Community Area Name,Birth Rate\nAustin,16.2\n")
	table, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, table.HasColumn("Birth Rate"))
	assert.False(t, table.HasColumn("birth rate"))
	assert.False(t, table.HasColumn("Stroke"))
}

func TestLoadContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeTempCSV(t, "Community Area Name,Birth Rate\nAustin,16.2\n")
	_, err := Load(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}
