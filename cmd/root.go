// =============================================================================
// Branch Dashboard - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// loads the same configuration and logger through loadRuntime.
//
// COBRA CLI STRUCTURE:
//   rootCmd (dashboard)
//   ├── refreshCmd (dashboard refresh)
//   ├── showCmd    (dashboard show)
//   ├── kpisCmd    (dashboard kpis)
//   ├── exportCmd  (dashboard export)
//   ├── serveCmd   (dashboard serve)
//   └── versionCmd (dashboard version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/logging"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose switches logging to debug.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Branch Dashboard - sales, collection, dealer and corporate figures per branch",
	Long: `Branch Dashboard reads the published spreadsheets of each branch network
dataset, combines them into KPI cards and classifies every figure against
its target.

Datasets:
  sales         Branch sales and targets
  collection    Hire collection and overdue
  corporate     Corporate parties
  dealer        Dealer overview
  dealer-plaza  Dealer overview keyed by plaza

Example Usage:
  dashboard refresh                          # Fetch every dataset once
  dashboard show --dataset sales --all       # Combined sales cards
  dashboard show --dataset collection --branch "Dhaka North"
  dashboard export --dataset dealer          # Plaza workbook
  dashboard serve                            # JSON API`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadRuntime loads the configuration and builds the logger and the view
// registry every subcommand works with.
func loadRuntime() (*config.MainConfig, logging.Logger, *view.Registry, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.NewStderr(level)

	registry, err := view.NewRegistry(cfg, fetcher.New(cfg.FetchTimeout), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, registry, nil
}

// lookupView returns the view of a dataset code or a usage error.
func lookupView(registry *view.Registry, code string) (*view.View, error) {
	v, ok := registry.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDataset, code)
	}
	return v, nil
}
