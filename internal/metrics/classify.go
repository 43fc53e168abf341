// =============================================================================
// Branch Dashboard - Classification Rules
// =============================================================================
//
// Tier functions map a number to good / warn / bad (or neutral), and highlight
// rules decide whether a whole card is flagged for attention.
//
// TIERS:
//   Target achievement   >=100 good, >=80 warn, else bad
//   Overdue %            <10 good,  <20 warn,  else bad
//   Collection %         >=30 good, >=20 warn, else bad
//   Increase/decrease    <0 good,   0 neutral, >0 bad
//
// CARD HIGHLIGHTS:
//   Sales target family          achievement % below 65
//   Collection executive family  achievement % below 90
//   Strict compliance family     achievement % below 100
//   Profit                       achievement below 0
//   Collection card              current % below last month's %
//   Count rules                  a quantity above a fixed limit
//   Shortfall rules              any positive value
//
// =============================================================================

package metrics

import (
	"github.com/ginjaninja78/branch-dashboard/internal/normalize"
)

// Tier is a qualitative band used for colouring.
type Tier string

const (
	TierGood    Tier = "good"
	TierWarn    Tier = "warn"
	TierBad     Tier = "bad"
	TierNeutral Tier = ""
)

// =============================================================================
// TIER FUNCTIONS
// =============================================================================

// TargetTier classifies an achievement percentage.
func TargetTier(pct float64) Tier {
	switch {
	case pct >= 100:
		return TierGood
	case pct >= 80:
		return TierWarn
	default:
		return TierBad
	}
}

// OverdueTier classifies an overdue percentage. Lower is better.
func OverdueTier(pct float64) Tier {
	switch {
	case pct < 10:
		return TierGood
	case pct < 20:
		return TierWarn
	default:
		return TierBad
	}
}

// CollectionTier classifies a collection percentage.
func CollectionTier(pct float64) Tier {
	switch {
	case pct >= 30:
		return TierGood
	case pct >= 20:
		return TierWarn
	default:
		return TierBad
	}
}

// DeltaTier classifies a month-over-month change where a decrease is good.
func DeltaTier(delta float64) Tier {
	switch {
	case delta < 0:
		return TierGood
	case delta > 0:
		return TierBad
	default:
		return TierNeutral
	}
}

// TotalAchievementTier is the subtitle tier of the overall achievement KPI.
// It never reports good.
func TotalAchievementTier(pct float64) Tier {
	if pct >= 80 {
		return TierWarn
	}
	return TierBad
}

// =============================================================================
// FAMILY THRESHOLDS
// =============================================================================

// Threshold returns the achievement % below which a card of this family is
// highlighted.
func (f Family) Threshold() (float64, bool) {
	switch f {
	case FamilySalesTarget:
		return 65, true
	case FamilyCollectionExecutive:
		return 90, true
	case FamilyStrictCompliance:
		return 100, true
	case FamilyProfit:
		return 0, true
	default:
		return 0, false
	}
}

// familyHighlight builds the card rule for a target-vs-achievement field.
func familyHighlight(f MetricField) HighlightRule {
	if threshold, ok := f.Family.Threshold(); ok {
		return AchievementBelow{Field: f, Threshold: threshold}
	}
	return nil
}

// =============================================================================
// HIGHLIGHT RULES
// =============================================================================

// HighlightRule decides whether a card needs attention for the given scope.
type HighlightRule interface {
	Highlighted(m AggregatedMetrics) bool
}

// AchievementBelow flags a pair field whose achievement % is under Threshold.
type AchievementBelow struct {
	Field     MetricField
	Threshold float64
}

func (r AchievementBelow) Highlighted(m AggregatedMetrics) bool {
	return float64(m.Percent(r.Field)) < r.Threshold
}

// BelowPreviousPeriod flags a card whose current percentage is below the
// previous period's.
type BelowPreviousPeriod struct {
	Current  string
	Previous string
}

func (r BelowPreviousPeriod) Highlighted(m AggregatedMetrics) bool {
	return normalize.ParsePercentage(m.Text(r.Current)) < normalize.ParsePercentage(m.Text(r.Previous))
}

// CountAbove flags a quantity column over a fixed count.
type CountAbove struct {
	Column string
	Limit  int64
}

func (r CountAbove) Highlighted(m AggregatedMetrics) bool {
	return m.Number(r.Column).IntPart() > r.Limit
}

// PositiveValue flags any positive value, e.g. a collection shortfall.
type PositiveValue struct {
	Column string
}

func (r PositiveValue) Highlighted(m AggregatedMetrics) bool {
	return m.Float(r.Column) > 0
}
