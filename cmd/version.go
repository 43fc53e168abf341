package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
)

// Version and BuildDate are stamped at build time:
//   go build -ldflags "-X 'github.com/ginjaninja78/branch-dashboard/cmd.Version=1.2.0'"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var versionShort bool

// versionCmd prints the build and the datasets this build knows about.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version and the supported datasets",
	Run: func(cmd *cobra.Command, args []string) {
		writeVersion(cmd.OutOrStdout(), versionShort)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

func writeVersion(out io.Writer, short bool) {
	if short {
		fmt.Fprintln(out, Version)
		return
	}

	codes := make([]string, 0, len(metrics.Specs()))
	for _, s := range metrics.Specs() {
		codes = append(codes, s.Code)
	}

	fmt.Fprintf(out, "dashboard %s (built %s, %s %s/%s)\n", Version, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "datasets: %s\n", strings.Join(codes, ", "))
}
