package main

import (
	"encoding/csv"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/kpi-pulse/internal/reshape"
	"github.com/sells-group/kpi-pulse/internal/sheet"
	"github.com/sells-group/kpi-pulse/internal/snapshot"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build the wide KPI table and write it to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := sheet.NewLoader(cfg.Source, newFetcher())

		ctx, cancel := contextWithSourceTimeout(cmd.Context())
		defer cancel()

		snap, err := snapshot.Build(ctx, loader, time.Now())
		if err != nil {
			return err
		}

		switch strings.ToLower(exportFormat) {
		case "csv":
			err = writeCSV(exportOut, snap.Table)
		case "xlsx":
			err = writeXLSX(exportOut, snap.Table)
		default:
			return eris.Errorf("export: unsupported format %q (want csv or xlsx)", exportFormat)
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.String("format", exportFormat),
			zap.Int("rows", len(snap.Table)),
		)
		return nil
	},
}

func writeCSV(path string, rows []reshape.WideRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(reshape.Headers()); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, row := range rows {
		if err := w.Write(row.Cells()); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush")
}

func writeXLSX(path string, rows []reshape.WideRow) error {
	file := xlsx.NewFile()
	s, err := file.AddSheet("KPI_Wide")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := s.AddRow()
	for _, col := range reshape.Headers() {
		header.AddCell().Value = col
	}
	for _, row := range rows {
		xr := s.AddRow()
		for _, cell := range row.Cells() {
			xr.AddCell().Value = cell
		}
	}

	return eris.Wrap(file.Save(path), "export: save xlsx")
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "kpi_wide.csv", "output file path")
	rootCmd.AddCommand(exportCmd)
}
