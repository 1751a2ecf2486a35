package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicago-health-atlas/healthmap/internal/config"
)

func TestColumnsCommand_ListsMetrics(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "metrics.csv")
	csv := "Community Area Name,Obesity Rate,Smoking Rate\nLoop,10,20\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))

	old := cfg
	defer func() { cfg = old }()
	cfg = &config.Config{}
	cfg.Metric.Path = csvPath

	var out bytes.Buffer
	columnsCmd.SetOut(&out)
	defer columnsCmd.SetOut(nil)
	columnsCmd.SetContext(context.Background())

	err := columnsCmd.RunE(columnsCmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "Obesity Rate\nSmoking Rate\n", out.String())
}

func TestColumnsCommand_MissingSource(t *testing.T) {
	old := cfg
	defer func() { cfg = old }()
	cfg = &config.Config{}
	cfg.Metric.Path = filepath.Join(t.TempDir(), "absent.csv")

	columnsCmd.SetContext(context.Background())
	err := columnsCmd.RunE(columnsCmd, nil)
	assert.Error(t, err)
}
