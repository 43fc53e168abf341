// =============================================================================
// Branch Dashboard - Show Command
// =============================================================================
//
// COMMAND USAGE:
//   dashboard show --dataset sales                 # first branch
//   dashboard show --dataset sales --branch Khulna # one branch
//   dashboard show --dataset sales --all           # combined
//   dashboard show --dataset sales --all --spread  # with achievement spread
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/render"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
)

var (
	showDataset string
	showBranch  string
	showAll     bool
	showSpread  bool
)

// showCmd represents the 'show' command.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cards of one dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, registry, err := loadRuntime()
		if err != nil {
			return err
		}
		v, err := lookupView(registry, showDataset)
		if err != nil {
			return err
		}
		return runShow(cmd.Context(), cmd.OutOrStdout(), cfg, v)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showDataset, "dataset", "sales", "Dataset code")
	showCmd.Flags().StringVar(&showBranch, "branch", "", "Record identity to show (default is the first record)")
	showCmd.Flags().BoolVar(&showAll, "all", false, "Show the combined scope")
	showCmd.Flags().BoolVar(&showSpread, "spread", false, "Print the per-record achievement spread")
}

func runShow(ctx context.Context, out io.Writer, cfg *config.MainConfig, v *view.View) error {
	if err := v.Refresh(ctx); err != nil {
		return fmt.Errorf("%s: %s", v.Spec().Code, fetcher.Message(err))
	}

	switch {
	case showAll:
		v.SelectAll()
	case showBranch != "":
		if err := v.Select(showBranch); err != nil {
			return err
		}
	}

	m, cards, err := v.Current()
	if err != nil {
		return err
	}

	r := render.New(cfg.Theme)
	ds, _ := v.Dataset()
	heading := fmt.Sprintf("%s - %s", v.Spec().Title, m.Label)
	if ds.UpdatedAt != "" {
		heading += " (updated " + ds.UpdatedAt + ")"
	}
	fmt.Fprintln(out, r.Cards(heading, cards))

	if showSpread {
		fields := metrics.PairFields(v.Spec())
		spreads := make([]metrics.Spread, 0, len(fields))
		for _, f := range fields {
			spreads = append(spreads, metrics.PercentageSpread(ds, v.Spec(), f))
		}
		if text := r.Spreads(spreads); text != "" {
			fmt.Fprintln(out, text)
		}
	}
	return nil
}
