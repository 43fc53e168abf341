// =============================================================================
// Branch Dashboard - Refresh Command
// =============================================================================
//
// This file defines the 'refresh' command. It fetches datasets concurrently,
// one independent view each, and reports the outcome per dataset.
//
// COMMAND USAGE:
//   dashboard refresh [flags]
//
// FLAGS:
//   --dataset  : Refresh only these datasets (repeatable)
//   --summary  : Write a refresh summary file to the output directory
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/render"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
	"github.com/ginjaninja78/branch-dashboard/pkg/utils"
)

var (
	refreshDatasets []string
	writeSummary    bool
)

// refreshCmd represents the 'refresh' command.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch datasets and report the outcome",
	Long: `The refresh command downloads every configured dataset concurrently and
reports records, warnings and the sheet's update date for each one.

A dataset that fails to load does not affect the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, registry, err := loadRuntime()
		if err != nil {
			return err
		}
		for _, code := range refreshDatasets {
			if _, err := lookupView(registry, code); err != nil {
				return err
			}
		}
		return runRefresh(cmd.Context(), cmd.OutOrStdout(), cfg, registry)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().StringSliceVar(
		&refreshDatasets,
		"dataset",
		nil,
		"Refresh only these datasets",
	)

	refreshCmd.Flags().BoolVar(
		&writeSummary,
		"summary",
		false,
		"Write a refresh summary to the output directory",
	)
}

// runRefresh refreshes the selected views and prints one line per dataset.
func runRefresh(ctx context.Context, out io.Writer, cfg *config.MainConfig, registry *view.Registry) error {
	r := render.New(cfg.Theme)
	summary := utils.RefreshSummary{StartTime: time.Now()}

	fmt.Fprintln(out, "=== Branch Dashboard ===")
	fmt.Fprintln(out, "Refreshing datasets...")

	outcomes := registry.RefreshAll(ctx, refreshDatasets...)
	for _, o := range outcomes {
		ds := summarizeOutcome(o)
		summary.Datasets = append(summary.Datasets, ds)

		if ds.Error != "" {
			fmt.Fprintf(out, "  %s\n", r.Status(false, o.Code, ds.Error))
			continue
		}
		detail := fmt.Sprintf("%d record(s), %d warning(s)", ds.Records, ds.Warnings)
		if ds.UpdatedAt != "" {
			detail += ", updated " + ds.UpdatedAt
		}
		fmt.Fprintf(out, "  %s\n", r.Status(true, o.Code, detail))
	}
	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Refresh Complete ===")
	fmt.Fprintf(out, "Datasets:        %d\n", len(summary.Datasets))
	fmt.Fprintf(out, "Successful:      %d\n", summary.Succeeded())
	fmt.Fprintf(out, "Errors:          %d\n", len(summary.Datasets)-summary.Succeeded())
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if writeSummary {
		path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Summary written to %s\n", path)
	}
	return nil
}

func summarizeOutcome(o view.RefreshOutcome) utils.DatasetSummary {
	ds := utils.DatasetSummary{Code: o.Code}
	if o.Error != nil {
		ds.Error = fetcher.Message(o.Error)
	}
	if res := o.State.Result; res != nil && o.Error == nil {
		ds.Source = res.Dataset.Source
		ds.Records = res.Dataset.Len()
		ds.UpdatedAt = res.Dataset.UpdatedAt
		ds.Warnings = res.Stats.Warnings
	}
	return ds
}
