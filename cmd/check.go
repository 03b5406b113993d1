package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/kpi-pulse/internal/sheet"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load all source sheets once and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := sheet.NewLoader(cfg.Source, newFetcher())

		ctx, cancel := contextWithSourceTimeout(cmd.Context())
		defer cancel()

		start := time.Now()
		tables, err := loader.LoadAll(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("loaded 4 sheets in %s\n", time.Since(start).Round(time.Millisecond))
		for _, f := range []*sheet.Frame{tables.Monthly, tables.Org, tables.KPI, tables.TypeGuide} {
			fmt.Printf("  %-20s %4d rows x %2d cols  %v\n", f.Name, f.Len(), len(f.Headers), f.Headers)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
