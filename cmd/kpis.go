package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/render"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
)

// kpisCmd prints the headline figures of the sales and collection datasets.
var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Print the sales and collection headline figures",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, registry, err := loadRuntime()
		if err != nil {
			return err
		}
		return runKPIs(cmd.Context(), cmd.OutOrStdout(), cfg, registry)
	},
}

func init() {
	rootCmd.AddCommand(kpisCmd)
}

func runKPIs(ctx context.Context, out io.Writer, cfg *config.MainConfig, registry *view.Registry) error {
	r := render.New(cfg.Theme)
	var panels []string

	for _, o := range registry.RefreshAll(ctx, metrics.SalesSpec.Code, metrics.CollectionSpec.Code) {
		if o.Error != nil {
			panels = append(panels, r.Status(false, o.Code, fetcher.Message(o.Error)))
			continue
		}
		ds := o.State.Result.Dataset
		switch o.Code {
		case metrics.SalesSpec.Code:
			panels = append(panels, r.SalesKPIs(metrics.ComputeSalesKPIs(ds)))
		case metrics.CollectionSpec.Code:
			panels = append(panels, r.CollectionKPIs(metrics.ComputeCollectionKPIs(ds)))
		}
	}

	fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	return nil
}
