// =============================================================================
// Branch Dashboard - Dataset Validation
// =============================================================================
//
// The sheets are edited by hand, and a renamed or deleted column silently
// turns into zeros on the dashboard. This module compares a parsed dataset
// with its catalog entry and reports what looks wrong.
//
// VALIDATION STRATEGY:
//   Nothing reported here stops a dataset from being shown. Every issue is a
//   warning, collected and returned so the caller can log it and expose it
//   next to the data.
//
// CHECKS:
//   1. Catalogued columns missing from the header
//   2. Blank header labels
//   3. Duplicate record identities
//   4. Non-numeric text in amount and quantity columns
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/branch-dashboard/internal/csvparser"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/normalize"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// SeverityWarning marks an issue that does not stop display.
const SeverityWarning = "warning"

// Rule names.
const (
	RuleMissingColumn     = "missing_column"
	RuleBlankHeader       = "blank_header"
	RuleDuplicateIdentity = "duplicate_identity"
	RuleNonNumeric        = "non_numeric"
)

// ValidationError represents a single issue found in a dataset.
type ValidationError struct {
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Column   string `json:"column,omitempty"`
	Record   string `json:"record,omitempty"`
	Value    string `json:"value,omitempty"`
	Message  string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", strings.ToUpper(e.Severity))
	if e.Record != "" {
		fmt.Fprintf(&b, "Record '%s', ", e.Record)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, "Column '%s': ", e.Column)
	}
	b.WriteString(e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	Errors         []*ValidationError
	ColumnsChecked int
	RecordsChecked int
}

// WarningCount returns the number of issues.
func (r *ValidationResult) WarningCount() int {
	return len(r.Errors)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateDataset checks a dataset against its catalog entry.
func ValidateDataset(ds *types.Dataset, spec metrics.DatasetSpec) *ValidationResult {
	result := &ValidationResult{}
	if ds == nil || len(ds.Headers) == 0 {
		return result
	}

	for i, h := range ds.Headers {
		if h == "" && i != len(ds.Headers)-1 {
			result.add(&ValidationError{
				Rule:    RuleBlankHeader,
				Message: fmt.Sprintf("header at position %d is blank; its values are ignored", i+1),
			})
		}
	}

	numeric := make(map[string]bool)
	columns := catalogued(spec, ds, numeric)
	for _, col := range columns {
		result.ColumnsChecked++
		if !ds.HasColumn(col) {
			result.add(&ValidationError{
				Rule:    RuleMissingColumn,
				Column:  col,
				Message: "column not found in sheet; values default to zero",
			})
		}
	}

	seen := make(map[string]bool)
	for _, r := range ds.Records {
		result.RecordsChecked++
		id := r.Identity()
		if seen[id] {
			result.add(&ValidationError{
				Rule:    RuleDuplicateIdentity,
				Record:  id,
				Message: "identity appears more than once; selection picks the first",
			})
		}
		seen[id] = true
	}

	// Non-numeric cells, reported column by column in catalog order.
	for _, col := range columns {
		if !numeric[col] || !ds.HasColumn(col) {
			continue
		}
		for i, v := range csvparser.GetColumnByHeader(ds, col) {
			if v == "" || normalize.IsNumeric(v) {
				continue
			}
			result.add(&ValidationError{
				Rule:    RuleNonNumeric,
				Record:  ds.Records[i].Identity(),
				Column:  col,
				Value:   v,
				Message: "value is not numeric; counted as zero",
			})
		}
	}

	return result
}

func (r *ValidationResult) add(e *ValidationError) {
	e.Severity = SeverityWarning
	r.Errors = append(r.Errors, e)
}

// catalogued lists the columns a spec reads, in catalog order, and marks
// numeric ones. Dynamic columns are taken from the sheet itself and are not
// checked for presence.
func catalogued(spec metrics.DatasetSpec, ds *types.Dataset, numeric map[string]bool) []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(col string, kind metrics.Kind) {
		if col == "" {
			return
		}
		if kind != metrics.Percentage {
			numeric[col] = true
		}
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}

	for _, g := range spec.Groups {
		for _, f := range g.Fields {
			add(f.TargetColumn, f.Kind)
			add(f.Column, f.Kind)
			if f.Combine.Mode == metrics.CombineRatio {
				add(f.Combine.Numerator, metrics.Amount)
				add(f.Combine.Denominator, metrics.Amount)
			}
		}
	}
	return cols
}

// FormatErrors formats validation issues for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}
