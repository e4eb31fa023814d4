package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/golf-results/internal/backup"
)

var (
	flagExportFormat string
	flagExportOut    string
	flagExportSort   string
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Work with JSON backups",
	}

	export := &cobra.Command{
		Use:   "export <file.json>",
		Short: "Convert a backup to CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupExport,
	}
	export.Flags().StringVar(&flagExportFormat, "format", "csv", "Export format: csv or xlsx")
	export.Flags().StringVar(&flagExportOut, "out", "", "Output path (default: backup path with the format's extension)")
	export.Flags().StringVar(&flagExportSort, "sort", string(SortByPage), "Row order within a season: page, name or position")

	cmd.AddCommand(export)
	return cmd
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(flagExportFormat)
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("invalid format: %s (must be 'csv' or 'xlsx')", flagExportFormat)
	}

	order := SortOrder(strings.ToLower(flagExportSort))
	if !order.Valid() {
		return fmt.Errorf("invalid sort: %s (must be 'page', 'name' or 'position')", flagExportSort)
	}

	f, err := backup.Read(args[0])
	if err != nil {
		return err
	}
	for _, y := range f.Years {
		sortRows(y.Tournaments, order)
	}

	outPath := flagExportOut
	if outPath == "" {
		outPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close() //nolint:errcheck

	if format == "xlsx" {
		err = backup.ExportXLSX(f, out)
	} else {
		err = backup.ExportCSV(f, out)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d results for %s to %s\n", f.RowCount(), f.PlayerName, outPath)
	return out.Close()
}
