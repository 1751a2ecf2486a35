package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chicago-health-atlas/healthmap/internal/pipeline"
)

var renderMetric string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the poster PNG and interactive map for a metric",
	Long:  "Loads the boundary and metric sources, joins them, and writes a poster PNG and a Leaflet HTML map to the output directory. Without --metric, lists the available columns and prompts for one.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p := pipeline.New(cfg)

		metric := renderMetric
		if metric == "" {
			var err error
			metric, err = promptMetric(ctx, p)
			if err != nil {
				return err
			}
		}

		result, err := p.Run(ctx, metric)
		if err != nil {
			return eris.Wrap(err, "render")
		}

		zap.L().Info("render complete",
			zap.String("metric", metric),
			zap.Int("features", result.Features),
			zap.Int("matched", result.Summary.Count),
		)

		fmt.Fprintf(cmd.OutOrStdout(), "poster: %s\nwebmap: %s\n", result.PosterPath, result.WebmapPath)
		return nil
	},
}

// promptMetric lists the available columns and reads a selection from stdin.
// Accepts either the column name or its 1-based index in the listing.
func promptMetric(ctx context.Context, p *pipeline.Pipeline) (string, error) {
	cols, err := p.Columns(ctx)
	if err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", eris.New("render: no metric columns in tabular source")
	}

	fmt.Println("Available metrics:")
	for i, c := range cols {
		fmt.Printf("  %2d. %s\n", i+1, c)
	}
	fmt.Print("Select a metric (name or number): ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", eris.Wrap(err, "render: read selection")
	}
	line = strings.TrimSpace(line)

	if n, convErr := strconv.Atoi(line); convErr == nil {
		if n < 1 || n > len(cols) {
			return "", eris.Errorf("render: selection %d out of range 1-%d", n, len(cols))
		}
		return cols[n-1], nil
	}
	return line, nil
}

func init() {
	renderCmd.Flags().StringVar(&renderMetric, "metric", "", "metric column to map (prompts if omitted)")
	rootCmd.AddCommand(renderCmd)
}
