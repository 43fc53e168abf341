// =============================================================================
// Branch Dashboard - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   dashboard serve [--addr :8080] [--refresh-interval 15m]
//
// All datasets are fetched once before the server starts listening. With
// --refresh-interval they are fetched again on that period.
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/logging"
	"github.com/ginjaninja78/branch-dashboard/internal/server"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
)

var (
	serveAddr       string
	refreshInterval time.Duration
)

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, registry, err := loadRuntime()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.ServerAddr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		refreshAndLog(ctx, registry, logger)
		if refreshInterval > 0 {
			go refreshLoop(ctx, registry, logger, refreshInterval)
		}

		return server.New(cfg, registry, logger).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server_addr)")
	serveCmd.Flags().DurationVar(&refreshInterval, "refresh-interval", 0, "Refetch every dataset on this period (0 disables)")
}

func refreshLoop(ctx context.Context, registry *view.Registry, logger logging.Logger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshAndLog(ctx, registry, logger)
		}
	}
}

func refreshAndLog(ctx context.Context, registry *view.Registry, logger logging.Logger) {
	for _, o := range registry.RefreshAll(ctx) {
		if o.Error != nil {
			logger.Warn("%s: %s", o.Code, fetcher.Message(o.Error))
			continue
		}
		logger.Info("%s: %d record(s)", o.Code, o.State.Result.Dataset.Len())
	}
}
