package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/chicago-health-atlas/healthmap/internal/pipeline"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List metric columns available in the tabular source",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg)

		cols, err := p.Columns(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "columns")
		}

		for _, c := range cols {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
