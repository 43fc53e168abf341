// =============================================================================
// Branch Dashboard - File Utilities
// =============================================================================
//
// This module provides the small amount of file handling the dashboard
// needs:
//   - Output directory management
//   - Export file naming
//   - Refresh summary logs
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a file name based on a format string.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {<key>}     - Any key from params, e.g. {dataset}
//   - ext: The required extension including the dot, e.g. ".xlsx".
//   - params: A map of placeholder values.
//
// EXAMPLE:
//   format: "{dataset}_plaza_report_{date}_{uuid}.xlsx"
//   params: {"dataset": "dealer"}
//   output: "dealer_plaza_report_20250115_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xlsx"
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = sanitize(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// sanitize keeps placeholder values safe inside a file name.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}

// =============================================================================
// REFRESH SUMMARY
// =============================================================================

// RefreshSummary contains summary information about a refresh run.
type RefreshSummary struct {
	StartTime time.Time
	EndTime   time.Time
	Datasets  []DatasetSummary
}

// DatasetSummary describes the outcome for one dataset.
type DatasetSummary struct {
	Code      string
	Source    string
	Records   int
	Warnings  int
	UpdatedAt string
	Error     string
}

// Succeeded returns the number of datasets without an error.
func (s RefreshSummary) Succeeded() int {
	n := 0
	for _, d := range s.Datasets {
		if d.Error == "" {
			n++
		}
	}
	return n
}

// WriteSummaryLog writes a refresh summary to a text file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RefreshSummary, outputDir string) (string, error) {
	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	name := fmt.Sprintf("refresh_summary_%s.txt", summary.StartTime.Format("20060102_150405"))
	path := filepath.Join(outputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	fmt.Fprintf(w, "Branch Dashboard - Refresh Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Datasets:       %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime),
		len(summary.Datasets),
		summary.Succeeded(),
		len(summary.Datasets)-summary.Succeeded())

	w.WriteString("Datasets:\n")
	w.WriteString("--------------------------------------------------------------------------------\n")
	for _, d := range summary.Datasets {
		fmt.Fprintf(w, "  Dataset:      %s\n", d.Code)
		if d.Error != "" {
			fmt.Fprintf(w, "  Error:        %s\n\n", d.Error)
			continue
		}
		fmt.Fprintf(w, "  Source:       %s\n", d.Source)
		fmt.Fprintf(w, "  Records:      %d\n", d.Records)
		fmt.Fprintf(w, "  Warnings:     %d\n", d.Warnings)
		if d.UpdatedAt != "" {
			fmt.Fprintf(w, "  Updated:      %s\n", d.UpdatedAt)
		}
		w.WriteString("\n")
	}

	w.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return path, nil
}
