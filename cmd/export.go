// =============================================================================
// Branch Dashboard - Export Command
// =============================================================================
//
// This file defines the 'export' command, which writes the dealer plaza
// workbook: one sheet per plaza plus a summary sheet.
//
// COMMAND USAGE:
//   dashboard export [--dataset dealer] [--out path.xlsx]
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
	"github.com/ginjaninja78/branch-dashboard/internal/xlsxexport"
	"github.com/ginjaninja78/branch-dashboard/pkg/utils"
)

// errNoData is returned when there is nothing to export.
var errNoData = errors.New("no data available to export")

var (
	exportDataset string
	exportPath    string
)

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dealer plaza workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, registry, err := loadRuntime()
		if err != nil {
			return err
		}
		v, err := lookupView(registry, exportDataset)
		if err != nil {
			return err
		}
		return runExport(cmd.Context(), cmd.OutOrStdout(), cfg, v)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDataset, "dataset", "dealer", "Dataset to export (dealer or dealer-plaza)")
	exportCmd.Flags().StringVar(&exportPath, "out", "", "Output file (default is a generated name in the output directory)")
}

func runExport(ctx context.Context, out io.Writer, cfg *config.MainConfig, v *view.View) error {
	spec := v.Spec()
	if !spec.PlazaExport {
		return fmt.Errorf("dataset %s has no plaza export", spec.Code)
	}

	if err := v.Refresh(ctx); err != nil {
		return fmt.Errorf("%s: %s", spec.Code, fetcher.Message(err))
	}
	ds, err := v.Dataset()
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		return errNoData
	}

	path := exportPath
	if path == "" {
		if err := utils.EnsureDir(cfg.OutputDir); err != nil {
			return err
		}
		name := utils.GenerateOutputFileName(cfg.ExportFileFormat, ".xlsx", map[string]string{"dataset": spec.Code})
		path = filepath.Join(cfg.OutputDir, name)
	}

	report := xlsxexport.BuildPlazaReport(ds, spec.Title)
	if err := report.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Exported %d plaza(s) to %s\n", len(report.Plazas), path)
	return nil
}
