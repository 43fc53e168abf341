// =============================================================================
// Branch Dashboard - CSV Parser Module
// =============================================================================
//
// This module turns the CSV text published by the reporting spreadsheets into
// a types.Dataset. The sheets are exported by hand and are not always clean,
// so the parser never fails: malformed input produces a best-effort dataset.
//
// PARSING RULES:
//   - Leading and trailing whitespace of the whole text is removed
//   - Lines are split on LF or CRLF
//   - The first line is the header; labels are trimmed
//   - Values are trimmed and zipped to headers by position
//   - Missing trailing values become "", extra values are ignored
//   - Rows without an identity value are dropped
//
// QUOTING:
//   A double quote toggles quoted mode. Commas inside quotes are literal.
//   The quote characters themselves are never emitted. A doubled quote inside
//   a quoted field therefore closes and reopens quoting and emits nothing,
//   unless Options.DoubledQuoteEscape is set.
//
// =============================================================================

package csvparser

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultIdentityKey is the identity column used when none is configured.
const DefaultIdentityKey = "Branch Name"

// UpdateMarkerIndex is the zero-based header position of the "last updated"
// marker cell.
const UpdateMarkerIndex = 39

// Options controls parsing behaviour.
type Options struct {
	// IdentityKey is the column that must be non-empty for a row to be kept.
	// Default: DefaultIdentityKey
	IdentityKey string

	// DoubledQuoteEscape makes "" inside a quoted field emit a literal quote.
	// Default: false (plain toggle)
	DoubledQuoteEscape bool
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse converts CSV text into a Dataset.
//
// PARAMETERS:
//   - text: The raw CSV text.
//   - opts: Parsing options.
//
// RETURNS:
//   - A Dataset. Empty input yields a dataset with no headers and no records.
func Parse(text string, opts Options) *types.Dataset {
	if opts.IdentityKey == "" {
		opts.IdentityKey = DefaultIdentityKey
	}

	ds := &types.Dataset{IdentityKey: opts.IdentityKey}

	lines := SplitLines(text)
	if len(lines) == 0 {
		return ds
	}

	header := ParseLine(lines[0], opts)
	ds.Headers = cleanHeaders(header)
	if marker, ok := markerFromHeader(header); ok {
		ds.UpdatedAt = marker
	}

	for _, line := range lines[1:] {
		record := zip(ds.Headers, ParseLine(line, opts))
		if strings.TrimSpace(record[opts.IdentityKey]) == "" {
			continue
		}
		ds.Records = append(ds.Records, record)
	}

	return ds
}

// SplitLines trims the text and splits it on LF or CRLF.
func SplitLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return lineBreak.Split(text, -1)
}

// ParseLine splits one CSV line into fields.
//
// A double quote toggles quoted mode; a comma outside quotes ends the field.
// With DoubledQuoteEscape set, "" inside quotes emits a literal quote.
func ParseLine(line string, opts Options) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if opts.DoubledQuoteEscape && inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())

	return fields
}

// ExtractUpdateDate returns the raw "last updated" marker from the header row.
//
// RETURNS:
//   - The marker cell at UpdateMarkerIndex, exactly as written in the sheet.
//   - false when the header is shorter than that or the cell is empty.
func ExtractUpdateDate(text string) (string, bool) {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return "", false
	}
	return markerFromHeader(ParseLine(lines[0], Options{}))
}

// ResolveIdentityKey returns the first identity column present in headers,
// or DefaultIdentityKey when none is.
func ResolveIdentityKey(headers []string) string {
	for _, col := range types.IdentityColumns {
		for _, h := range headers {
			if h == col {
				return col
			}
		}
	}
	return DefaultIdentityKey
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims every header label.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}

// zip pairs trimmed values with headers by position.
func zip(headers, values []string) types.Record {
	record := make(types.Record, len(headers))
	for i, h := range headers {
		if i < len(values) {
			record[h] = strings.TrimSpace(values[i])
		} else {
			record[h] = ""
		}
	}
	return record
}

// markerFromHeader reads the marker from the untrimmed header fields.
func markerFromHeader(headers []string) (string, bool) {
	if len(headers) <= UpdateMarkerIndex {
		return "", false
	}
	marker := headers[UpdateMarkerIndex]
	if marker == "" {
		return "", false
	}
	return marker, true
}

// =============================================================================
// DATA ACCESS HELPERS
// =============================================================================

// GetColumnByHeader returns every value of a column in record order.
func GetColumnByHeader(ds *types.Dataset, header string) []string {
	values := make([]string, 0, ds.Len())
	for _, r := range ds.Records {
		values = append(values, r.Text(header))
	}
	return values
}

// GetUniqueValues returns the distinct non-empty values of a column in order
// of first appearance.
func GetUniqueValues(ds *types.Dataset, header string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, r := range ds.Records {
		v := r.Text(header)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	return unique
}

// FilterRows returns the records for which predicate returns true.
func FilterRows(ds *types.Dataset, predicate func(types.Record) bool) []types.Record {
	var filtered []types.Record
	for _, r := range ds.Records {
		if predicate(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
