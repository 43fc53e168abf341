// =============================================================================
// Branch Dashboard - Shared Types
// =============================================================================
//
// This package contains the record and dataset types shared by the parser,
// the aggregator, the view layer and the exporters. Keeping them here avoids
// import cycles between those packages.
//
// =============================================================================

package types

import (
	"strings"
	"time"
)

// =============================================================================
// IDENTITY COLUMNS
// =============================================================================

// IdentityColumns lists the columns that can name a record, in lookup order.
// Most sheets use "Branch Name"; the plaza variant of the dealer export uses
// "Walton Plaza".
var IdentityColumns = []string{"Branch Name", "Walton Plaza", "Branch"}

// AreaIdentity is the identity value of the area-level summary row.
const AreaIdentity = "area"

// =============================================================================
// RECORD
// =============================================================================

// Record is one data row keyed by the trimmed header text.
type Record map[string]string

// Get returns the raw cell value and whether the column exists on the record.
func (r Record) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Text returns the raw cell value, or "" when the column is missing.
func (r Record) Text(column string) string {
	return r[column]
}

// Identity returns the first non-empty identity column value.
func (r Record) Identity() string {
	for _, col := range IdentityColumns {
		if v := strings.TrimSpace(r[col]); v != "" {
			return v
		}
	}
	return ""
}

// IsArea reports whether the record is the area summary row.
func (r Record) IsArea() bool {
	return strings.EqualFold(r.Identity(), AreaIdentity)
}

// =============================================================================
// DATASET
// =============================================================================

// Dataset is an ordered sequence of records sharing one header list.
type Dataset struct {
	// Headers holds the trimmed header labels in source order.
	Headers []string

	// Records holds the data rows in source order.
	Records []Record

	// IdentityKey is the column used to drop rows without an identity.
	IdentityKey string

	// UpdatedAt is the "last updated" marker carried in the header row.
	// Empty when the sheet does not provide one.
	UpdatedAt string

	// Source is where the CSV text came from (usually a URL).
	Source string

	// FetchedAt is when the CSV text was retrieved.
	FetchedAt time.Time
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// First returns the first record, or nil for an empty dataset.
func (d *Dataset) First() Record {
	if d.Len() == 0 {
		return nil
	}
	return d.Records[0]
}

// Find returns the record whose identity matches (case-sensitive after trim).
func (d *Dataset) Find(identity string) (Record, bool) {
	if d == nil {
		return nil, false
	}
	identity = strings.TrimSpace(identity)
	for _, r := range d.Records {
		if r.Identity() == identity {
			return r, true
		}
	}
	return nil, false
}

// AreaRecord returns the area summary row when the dataset has one.
func (d *Dataset) AreaRecord() (Record, bool) {
	if d == nil {
		return nil, false
	}
	for _, r := range d.Records {
		if r.IsArea() {
			return r, true
		}
	}
	return nil, false
}

// WithoutArea returns the records that take part in combined sums.
func (d *Dataset) WithoutArea() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, 0, len(d.Records))
	for _, r := range d.Records {
		if !r.IsArea() {
			out = append(out, r)
		}
	}
	return out
}

// Identities returns the identity of every record in source order.
func (d *Dataset) Identities() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.Records))
	for _, r := range d.Records {
		out = append(out, r.Identity())
	}
	return out
}

// HasColumn reports whether the header list contains the column.
func (d *Dataset) HasColumn(column string) bool {
	if d == nil {
		return false
	}
	for _, h := range d.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// =============================================================================
// SCOPE
// =============================================================================

// Scope selects what an aggregation covers: one record or all of them.
type Scope struct {
	// All selects the combined scope.
	All bool

	// Identity names the record for the single scope.
	Identity string
}

// CombinedScope returns the all-records scope.
func CombinedScope() Scope {
	return Scope{All: true}
}

// SingleScope returns the scope for one record.
func SingleScope(identity string) Scope {
	return Scope{Identity: identity}
}

// String returns a label suitable for display.
func (s Scope) String() string {
	if s.All {
		return "All Branches (Combined)"
	}
	return s.Identity
}
