// =============================================================================
// Branch Dashboard - Main Entry Point
// =============================================================================
//
// USAGE:
//   dashboard refresh   - Fetch every dataset and report the outcome
//   dashboard show      - Print the cards of one dataset
//   dashboard kpis      - Print the sales and collection headline figures
//   dashboard export    - Write the dealer plaza workbook
//   dashboard serve     - Serve the JSON API
//   dashboard version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, aggregation, views, API and rendering
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/branch-dashboard/cmd"
)

func main() {
	cmd.Execute()
}
