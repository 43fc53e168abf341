package metrics

import (
	"github.com/ginjaninja78/branch-dashboard/internal/normalize"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// Card is a render-ready group of metric values.
type Card struct {
	Title       string      `json:"title"`
	Highlighted bool        `json:"highlighted"`
	Fields      []CardField `json:"fields"`
}

// CardField is one line of a card.
type CardField struct {
	Label   string  `json:"label"`
	Column  string  `json:"column"`
	Kind    Kind    `json:"kind"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Present bool    `json:"present"`

	// Target and Percent are set for target-vs-achievement fields only.
	Target        *float64 `json:"target,omitempty"`
	TargetDisplay string   `json:"target_display,omitempty"`
	Percent       *int     `json:"percent,omitempty"`

	Tier Tier `json:"tier"`
}

// BuildCards aggregates a dataset for the scope and lays the result out as
// cards in catalog order.
func BuildCards(ds *types.Dataset, spec DatasetSpec, scope types.Scope) (AggregatedMetrics, []Card) {
	m := Aggregate(ds, spec, scope)
	groups := spec.ResolveGroups(ds)

	cards := make([]Card, 0, len(groups))
	for _, g := range groups {
		card := Card{Title: g.Title, Fields: make([]CardField, 0, len(g.Fields))}
		for _, f := range g.Fields {
			card.Fields = append(card.Fields, buildField(m, f))
		}
		if g.Highlight != nil {
			card.Highlighted = g.Highlight.Highlighted(m)
		}
		cards = append(cards, card)
	}
	return m, cards
}

func buildField(m AggregatedMetrics, f MetricField) CardField {
	v := m.Values[f.Column]
	cf := CardField{
		Label:   f.Label,
		Column:  f.Column,
		Kind:    f.Kind,
		Value:   v.Number.InexactFloat64(),
		Display: display(v),
		Present: v.Present,
	}

	switch {
	case f.IsPair():
		target := m.Float(f.TargetColumn)
		pct := m.Percent(f)
		cf.Target = &target
		cf.TargetDisplay = display(m.Values[f.TargetColumn])
		cf.Percent = &pct
		cf.Tier = TargetTier(float64(pct))
	case f.Classify != nil:
		cf.Tier = f.Classify(cf.Value)
	}
	return cf
}

// display renders a value the way the cards show it. Non-numeric text in a
// numeric column is shown verbatim.
func display(v Value) string {
	switch {
	case v.Kind == Percentage:
		if v.Text == "" {
			return "0%"
		}
		return v.Text
	case v.Text != "" && !normalize.IsNumeric(v.Text):
		return v.Text
	case v.Kind == Quantity:
		return normalize.FormatNumber(v.Number.InexactFloat64())
	default:
		return normalize.FormatAmount(v.Number.InexactFloat64())
	}
}
