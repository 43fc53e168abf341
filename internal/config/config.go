// =============================================================================
// Branch Dashboard - Configuration Module
// =============================================================================
//
// This module loads the application configuration from config.yaml. Every
// setting has a default, so the file is optional: without it the dashboard
// reads the published sheets it was built for.
//
// CONFIGURATION FILE:
//   server_addr:   ":8080"
//   log_level:     info
//   theme:         light
//   fetch_timeout: 30s
//   output_dir:    ./output
//   datasets:
//     - code: sales
//       url: https://docs.google.com/.../pub?output=csv
//     - code: dealer-plaza
//       url: https://...
//       identity_key: Walton Plaza
//
// Datasets listed in the file override the built-in entry with the same code;
// unknown codes are rejected.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownDataset is returned for a dataset code the dashboard does not know.
var ErrUnknownDataset = errors.New("unknown dataset")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// ServerAddr is the listen address of the JSON API.
	// Default: ":8080"
	ServerAddr string `yaml:"server_addr"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// DISPLAY SETTINGS
	// =========================================================================

	// Theme is the display preference passed to the presentation layer.
	// Valid values: "light", "dark"
	// Default: "light"
	Theme Theme `yaml:"theme"`

	// =========================================================================
	// FETCH SETTINGS
	// =========================================================================

	// FetchTimeout bounds a single CSV download. There are no retries.
	// Default: 30s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is where exported workbooks and refresh summaries are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ExportFileFormat is the file name pattern of exported workbooks.
	// Placeholders: {uuid}, {timestamp}, {date}, {time}, {dataset}
	// Default: "{dataset}_plaza_report_{date}_{uuid}.xlsx"
	ExportFileFormat string `yaml:"export_file_format"`

	// =========================================================================
	// DATASETS
	// =========================================================================

	// Datasets overrides the built-in dataset endpoints.
	Datasets []DatasetConfig `yaml:"datasets"`
}

// DatasetConfig describes where one dataset is published.
type DatasetConfig struct {
	// Code matches a dataset in the metric catalog.
	Code string `yaml:"code"`

	// URL is the published-CSV endpoint. Empty means not configured yet.
	URL string `yaml:"url"`

	// IdentityKey overrides the row identity column.
	IdentityKey string `yaml:"identity_key,omitempty"`

	// DoubledQuoteEscape makes "" inside quoted fields a literal quote.
	DoubledQuoteEscape bool `yaml:"doubled_quote_escape,omitempty"`
}

// =============================================================================
// BUILT-IN DATASETS
// =============================================================================

const sheetsBase = "https://docs.google.com/spreadsheets/d/e/"

// DefaultDatasets returns the published sheets the dashboard reads when no
// override is configured.
func DefaultDatasets() []DatasetConfig {
	return []DatasetConfig{
		{Code: "sales", URL: sheetsBase + "2PACX-1vSfBMgoqCsNi4oAnvtFsSMEdxLLy1mdwFXLehQ2ZfjdHwHQq2mHGb0283g76EneTkFvKuvN8SPC9dll/pub?output=csv"},
		{Code: "collection", URL: sheetsBase + "2PACX-1vTXc-G_Yb3upkVljn0pXdzHqV5dAPr-TW47o9uKy8qQNRkiknwZx7wgSLESLsckivRHS73dRN3UaWcm/pub?output=csv"},
		{Code: "corporate", URL: sheetsBase + "2PACX-1vQncKkos2W7Eow929EBmY_ZbqQzrxwUCAuLit03kqei2ho8ICBE5xcdp2-LHA2hPb2jbyov6FfClOF2/pub?output=csv"},
		{Code: "dealer", URL: sheetsBase + "2PACX-1vQzdPUUVNNNlUy4U0SElgzASaiAFYoW05indKbBvRG-A9-Rs0WNZkZhMueUMhsFL9j98DUJV4UUqWRM/pub?output=csv"},
		{Code: "dealer-plaza", IdentityKey: "Walton Plaza"},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig loads the main configuration file.
//
// PARAMETERS:
//   - configPath: The path to config.yaml. A missing file yields defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file: defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyMainConfigDefaults sets default values for any unset options and
// merges dataset overrides onto the built-in list.
func applyMainConfigDefaults(config *MainConfig) {
	if config.ServerAddr == "" {
		config.ServerAddr = ":8080"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Theme == "" {
		config.Theme = ThemeLight
	}
	if config.FetchTimeout == 0 {
		config.FetchTimeout = 30 * time.Second
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ExportFileFormat == "" {
		config.ExportFileFormat = "{dataset}_plaza_report_{date}_{uuid}.xlsx"
	}
	config.Datasets = mergeDatasets(DefaultDatasets(), config.Datasets)
}

// mergeDatasets overlays overrides on the built-in list, keeping built-in
// order. Overrides with unknown codes are appended so validation can reject
// them.
func mergeDatasets(base, overrides []DatasetConfig) []DatasetConfig {
	merged := append([]DatasetConfig(nil), base...)
	for _, o := range overrides {
		found := false
		for i := range merged {
			if merged[i].Code != o.Code {
				continue
			}
			found = true
			if o.URL != "" {
				merged[i].URL = o.URL
			}
			if o.IdentityKey != "" {
				merged[i].IdentityKey = o.IdentityKey
			}
			merged[i].DoubledQuoteEscape = merged[i].DoubledQuoteEscape || o.DoubledQuoteEscape
		}
		if !found {
			merged = append(merged, o)
		}
	}
	return merged
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", config.LogLevel)
	}

	if !config.Theme.Valid() {
		return fmt.Errorf("invalid theme %q", config.Theme)
	}

	if config.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative")
	}

	known := make(map[string]bool)
	for _, d := range DefaultDatasets() {
		known[d.Code] = true
	}
	for _, d := range config.Datasets {
		if !known[d.Code] {
			return fmt.Errorf("%w: %q", ErrUnknownDataset, d.Code)
		}
	}

	return nil
}

// Dataset returns the configuration of one dataset.
func (c *MainConfig) Dataset(code string) (DatasetConfig, error) {
	for _, d := range c.Datasets {
		if d.Code == code {
			return d, nil
		}
	}
	return DatasetConfig{}, fmt.Errorf("%w: %q", ErrUnknownDataset, code)
}
