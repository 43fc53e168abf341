// =============================================================================
// Branch Dashboard - Dataset Pipeline
// =============================================================================
//
// This module runs the whole data path for one dataset. Every dataset uses
// the same pipeline; what differs is the catalog entry it is given.
//
// PIPELINE:
//   1. Fetch the CSV text from the dataset's published URL
//   2. Parse it into records, dropping rows without an identity
//   3. Validate the dataset against its catalog entry (warnings only)
//   4. Aggregate the combined scope and lay it out as cards
//
// CONCURRENCY:
//   A Pipeline holds no mutable state and may be run from several goroutines.
//   Serializing refreshes of one view is the view's job.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/csvparser"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/logging"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
	"github.com/ginjaninja78/branch-dashboard/internal/validation"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Code is the dataset code.
	Code string

	// Dataset is the parsed dataset. Nil when the fetch failed.
	Dataset *types.Dataset

	// Combined holds the combined-scope aggregation.
	Combined metrics.AggregatedMetrics

	// Cards is the combined scope laid out as cards.
	Cards []metrics.Card

	// Validation lists schema drift warnings.
	Validation *validation.ValidationResult

	// Success indicates whether the run produced a dataset.
	Success bool

	// Error contains the error if the run failed.
	Error error

	// Stats contains run statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about a run.
type ProcessingStats struct {
	// Bytes is the size of the fetched CSV text.
	Bytes int

	// LinesRead is the number of data lines after the header.
	LinesRead int

	// RecordsKept is the number of records with an identity.
	RecordsKept int

	// Warnings is the number of validation warnings.
	Warnings int

	// FetchTime is the time spent downloading.
	FetchTime time.Duration

	// ProcessingTime is the total run time.
	ProcessingTime time.Duration
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline turns one dataset's published CSV into display-ready data.
type Pipeline struct {
	spec    metrics.DatasetSpec
	dataset config.DatasetConfig
	fetcher fetcher.Fetcher
	logger  logging.Logger
}

// New creates a Pipeline.
//
// PARAMETERS:
//   - spec: The dataset's catalog entry.
//   - dataset: The dataset's endpoint configuration.
//   - f: The CSV fetcher.
//   - logger: Where progress is logged. Nil discards.
func New(spec metrics.DatasetSpec, dataset config.DatasetConfig, f fetcher.Fetcher, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{spec: spec, dataset: dataset, fetcher: f, logger: logger}
}

// Spec returns the catalog entry the pipeline runs with.
func (p *Pipeline) Spec() metrics.DatasetSpec {
	return p.spec
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run fetches and processes the dataset.
func (p *Pipeline) Run(ctx context.Context) Result {
	start := time.Now()
	runID := uuid.New().String()

	p.logger.Debug("[%s] fetching %s from %s", runID, p.spec.Code, p.dataset.URL)

	text, err := p.fetcher.Fetch(ctx, p.dataset.URL)
	fetchTime := time.Since(start)
	if err != nil {
		p.logger.Error("[%s] %s: %v", runID, p.spec.Code, err)
		return Result{
			RunID: runID,
			Code:  p.spec.Code,
			Error: fmt.Errorf("failed to fetch %s: %w", p.spec.Code, err),
			Stats: ProcessingStats{FetchTime: fetchTime, ProcessingTime: time.Since(start)},
		}
	}

	result := p.Process(text)
	result.RunID = runID
	result.Dataset.Source = p.dataset.URL
	result.Stats.FetchTime = fetchTime
	result.Stats.ProcessingTime = time.Since(start)

	p.logger.Info("[%s] %s: %d record(s), %d warning(s) in %s",
		runID, p.spec.Code, result.Stats.RecordsKept, result.Stats.Warnings, result.Stats.ProcessingTime)

	return result
}

// Process parses, validates and aggregates CSV text that is already in hand.
// It never fails: malformed text yields a best-effort dataset.
func (p *Pipeline) Process(text string) Result {
	opts := csvparser.Options{
		IdentityKey:        p.identityKey(),
		DoubledQuoteEscape: p.dataset.DoubledQuoteEscape,
	}

	ds := csvparser.Parse(text, opts)
	if len(ds.Headers) > 0 && !ds.HasColumn(opts.IdentityKey) {
		resolved := csvparser.ResolveIdentityKey(ds.Headers)
		if resolved != opts.IdentityKey && ds.HasColumn(resolved) {
			p.logger.Warn("%s: identity column %q not found, using %q", p.spec.Code, opts.IdentityKey, resolved)
			opts.IdentityKey = resolved
			ds = csvparser.Parse(text, opts)
		}
	}
	ds.FetchedAt = time.Now()

	check := validation.ValidateDataset(ds, p.spec)
	for _, issue := range check.Errors {
		p.logger.Warn("%s: %s", p.spec.Code, issue.Error())
	}

	combined, cards := metrics.BuildCards(ds, p.spec, types.CombinedScope())

	lines := len(csvparser.SplitLines(text))
	if lines > 0 {
		lines--
	}

	return Result{
		Code:       p.spec.Code,
		Dataset:    ds,
		Combined:   combined,
		Cards:      cards,
		Validation: check,
		Success:    true,
		Stats: ProcessingStats{
			Bytes:       len(text),
			LinesRead:   lines,
			RecordsKept: ds.Len(),
			Warnings:    check.WarningCount(),
		},
	}
}

func (p *Pipeline) identityKey() string {
	if p.dataset.IdentityKey != "" {
		return p.dataset.IdentityKey
	}
	if p.spec.IdentityKey != "" {
		return p.spec.IdentityKey
	}
	return csvparser.DefaultIdentityKey
}
