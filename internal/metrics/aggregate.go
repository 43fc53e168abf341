// =============================================================================
// Branch Dashboard - KPI Aggregator
// =============================================================================
//
// Aggregate reduces a dataset to the values a view displays, either for one
// record or for all records combined.
//
// SINGLE SCOPE:
//   Values are read from the selected record. When the identity is unknown
//   the first record is used.
//
// COMBINED SCOPE:
//   - The area summary row never takes part in sums
//   - Amounts and quantities are summed exactly
//   - Percentages are never averaged: they are recomputed from summed
//     numerator and denominator columns, or copied from the area row
//   - Target-vs-achievement percentages use sum(ach)/sum(target)
//
// =============================================================================

package metrics

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/branch-dashboard/internal/normalize"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Value is one aggregated column.
type Value struct {
	// Kind is the semantic type of the column.
	Kind Kind

	// Number is the numeric value. For percentages it is the parsed text.
	Number decimal.Decimal

	// Text is the raw cell text in single scope, or the computed text for
	// combined percentages.
	Text string

	// Present is false when the column is missing from the sheet.
	Present bool
}

// AggregatedMetrics holds the values of every catalogued column for a scope.
type AggregatedMetrics struct {
	Scope   types.Scope
	Label   string
	Records int
	Values  map[string]Value
}

// Number returns the numeric value of a column, zero when missing.
func (m AggregatedMetrics) Number(column string) decimal.Decimal {
	return m.Values[column].Number
}

// Float returns the numeric value of a column as a float.
func (m AggregatedMetrics) Float(column string) float64 {
	return m.Values[column].Number.InexactFloat64()
}

// Text returns the text of a column. Numeric columns without text fall back
// to their decimal string.
func (m AggregatedMetrics) Text(column string) string {
	v, ok := m.Values[column]
	if !ok {
		return ""
	}
	if v.Text != "" || v.Kind == Percentage {
		return v.Text
	}
	return v.Number.String()
}

// Percent returns the achievement percentage of a pair field.
func (m AggregatedMetrics) Percent(f MetricField) int {
	if !f.IsPair() {
		return 0
	}
	return normalize.Percentage(m.Float(f.TargetColumn), m.Float(f.Column))
}

// =============================================================================
// AGGREGATION
// =============================================================================

// column is a catalogued column with the rule used to combine it.
type column struct {
	name string
	kind Kind
	mode CombineMode
	rule CombineRule
}

// Aggregate computes the values of every column in spec for the scope.
//
// PARAMETERS:
//   - ds: The parsed dataset. A nil or empty dataset yields zero values.
//   - spec: The dataset's catalog entry.
//   - scope: One record or all records.
//
// RETURNS:
//   - The aggregated values, keyed by column name.
func Aggregate(ds *types.Dataset, spec DatasetSpec, scope types.Scope) AggregatedMetrics {
	columns := catalogColumns(spec.ResolveGroups(ds))

	if scope.All {
		return aggregateCombined(ds, columns, scope)
	}
	return aggregateSingle(ds, columns, scope)
}

func aggregateSingle(ds *types.Dataset, columns []column, scope types.Scope) AggregatedMetrics {
	record, ok := ds.Find(scope.Identity)
	if !ok {
		record = ds.First()
	}

	m := AggregatedMetrics{
		Scope:  scope,
		Values: make(map[string]Value, len(columns)),
	}
	if record != nil {
		m.Label = record.Identity()
		m.Records = 1
	}

	for _, c := range columns {
		raw, present := record.Get(c.name)
		m.Values[c.name] = cellValue(c.kind, raw, present)
	}
	return m
}

func aggregateCombined(ds *types.Dataset, columns []column, scope types.Scope) AggregatedMetrics {
	records := ds.WithoutArea()
	area, hasArea := ds.AreaRecord()

	m := AggregatedMetrics{
		Scope:   scope,
		Label:   scope.String(),
		Records: len(records),
		Values:  make(map[string]Value, len(columns)),
	}

	for _, c := range columns {
		present := ds.HasColumn(c.name)

		switch c.mode {
		case CombineRatio:
			num := sumColumn(records, c.rule.Numerator, Amount)
			den := sumColumn(records, c.rule.Denominator, Amount)
			text := normalize.RatioPercent(num.InexactFloat64(), den.InexactFloat64(), c.rule.Decimals)
			m.Values[c.name] = Value{
				Kind:    c.kind,
				Number:  decimal.NewFromFloat(normalize.ParsePercentage(text)),
				Text:    text,
				Present: present,
			}

		case CombineFromArea:
			if hasArea {
				raw, ok := area.Get(c.name)
				m.Values[c.name] = cellValue(c.kind, raw, ok)
			} else {
				m.Values[c.name] = Value{Kind: c.kind, Number: decimal.Zero, Text: "0%", Present: present}
			}

		default:
			sum := sumColumn(records, c.name, c.kind)
			v := Value{Kind: c.kind, Number: sum, Present: present}
			if c.kind == Percentage {
				v.Text = strconv.FormatFloat(sum.InexactFloat64(), 'f', -1, 64) + "%"
			}
			m.Values[c.name] = v
		}
	}
	return m
}

// cellValue normalizes one raw cell.
func cellValue(kind Kind, raw string, present bool) Value {
	v := Value{Kind: kind, Text: raw, Present: present}
	switch kind {
	case Percentage:
		v.Number = decimal.NewFromFloat(normalize.ParsePercentage(raw))
	case Quantity:
		v.Number = normalize.ParseDecimal(raw).Truncate(0)
	default:
		v.Number = normalize.ParseDecimal(raw)
	}
	return v
}

// sumColumn adds the normalized values of a column across records.
func sumColumn(records []types.Record, name string, kind Kind) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(cellValue(kind, r.Text(name), true).Number)
	}
	return total
}

// catalogColumns flattens groups into unique columns, targets included.
func catalogColumns(groups []MetricGroup) []column {
	seen := make(map[string]bool)
	var cols []column
	add := func(c column) {
		if seen[c.name] {
			return
		}
		seen[c.name] = true
		cols = append(cols, c)
	}

	for _, g := range groups {
		for _, f := range g.Fields {
			if f.TargetColumn != "" {
				add(column{name: f.TargetColumn, kind: f.Kind, mode: CombineSum})
			}
			add(column{name: f.Column, kind: f.Kind, mode: f.combineMode(), rule: f.Combine})
		}
	}
	return cols
}

// =============================================================================
// RECORD-LEVEL HELPERS
// =============================================================================

// RecordPercent returns a pair field's achievement percentage for one record.
func RecordPercent(r types.Record, f MetricField) int {
	return normalize.CalculatePercentage(r.Text(f.TargetColumn), r.Text(f.Column))
}
