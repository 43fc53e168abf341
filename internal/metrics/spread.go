package metrics

import (
	"github.com/montanaflynn/stats"

	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// Spread summarizes per-record achievement percentages of a pair field. It is
// informational: the combined percentage is always sum(ach)/sum(target), and
// Mean usually differs from it.
type Spread struct {
	Field    string  `json:"field"`
	Records  int     `json:"records"`
	Combined int     `json:"combined"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// PercentageSpread computes the spread of a pair field over non-area records.
func PercentageSpread(ds *types.Dataset, spec DatasetSpec, f MetricField) Spread {
	s := Spread{Field: f.Label}
	if !f.IsPair() {
		return s
	}

	records := ds.WithoutArea()
	data := make(stats.Float64Data, 0, len(records))
	for _, r := range records {
		data = append(data, float64(RecordPercent(r, f)))
	}

	s.Records = len(data)
	s.Combined = Aggregate(ds, spec, types.CombinedScope()).Percent(f)
	if len(data) == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	return s
}

// PairFields returns every target-vs-achievement field of a spec.
func PairFields(spec DatasetSpec) []MetricField {
	var fields []MetricField
	for _, g := range spec.Groups {
		for _, f := range g.Fields {
			if f.IsPair() {
				fields = append(fields, f)
			}
		}
	}
	return fields
}
