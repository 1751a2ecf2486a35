package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chicago-health-atlas/healthmap/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "healthmap",
	Short: "Chicago community-area health choropleth generator",
	Long:  "Joins community-area boundaries with a tabular health dataset and renders a print-quality poster PNG and an interactive Leaflet map for a chosen metric.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
