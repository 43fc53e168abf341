package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/branch-dashboard/internal/normalize"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// SalesKPIs is the headline bundle of the sales dashboard.
type SalesKPIs struct {
	TotalTarget      decimal.Decimal `json:"total_target"`
	TotalAchievement decimal.Decimal `json:"total_achievement"`

	// Display values in crore with one decimal.
	TotalTargetDisplay      string `json:"total_target_display"`
	TotalAchievementDisplay string `json:"total_achievement_display"`

	TotalPct  int `json:"total_pct"`
	RetailPct int `json:"retail_pct"`
	HirePct   int `json:"hire_pct"`
	ProfitPct int `json:"profit_pct"`

	TotalTier    Tier `json:"total_tier"`
	SubtitleTier Tier `json:"subtitle_tier"`
}

// CollectionKPIs is the headline bundle of the collection dashboard.
type CollectionKPIs struct {
	HireOutstanding      decimal.Decimal `json:"hire_outstanding"`
	OverdueRunning       decimal.Decimal `json:"overdue_running"`
	MaturedOverdueAmount decimal.Decimal `json:"matured_overdue_amount"`
	CollectibleQty       int64           `json:"collectible_qty"`
	CollectedQty         int64           `json:"collected_qty"`

	// Percentages with one decimal, "0%" when the denominator is zero.
	CollectionPct string `json:"collection_pct"`
	OverduePct    string `json:"overdue_pct"`

	HireOutstandingDisplay      string `json:"hire_outstanding_display"`
	OverdueRunningDisplay       string `json:"overdue_running_display"`
	MaturedOverdueAmountDisplay string `json:"matured_overdue_amount_display"`

	CollectionTier Tier `json:"collection_tier"`
	OverdueTier    Tier `json:"overdue_tier"`
}

// ComputeSalesKPIs derives the sales bundle from the combined scope.
func ComputeSalesKPIs(ds *types.Dataset) SalesKPIs {
	m := Aggregate(ds, SalesSpec, types.CombinedScope())

	target := m.Number(ColTotalTarget)
	ach := m.Number(ColTotalAch)
	total := normalize.Percentage(target.InexactFloat64(), ach.InexactFloat64())

	return SalesKPIs{
		TotalTarget:             target,
		TotalAchievement:        ach,
		TotalTargetDisplay:      normalize.Crore(target, 1),
		TotalAchievementDisplay: normalize.Crore(ach, 1),
		TotalPct:                total,
		RetailPct:               percentOf(m, ColRetailTarget, ColRetailAch),
		HirePct:                 percentOf(m, ColHireTarget, ColHireAch),
		ProfitPct:               percentOf(m, ColProfitTarget, ColProfitAch),
		TotalTier:               TargetTier(float64(total)),
		SubtitleTier:            TotalAchievementTier(float64(total)),
	}
}

// ComputeCollectionKPIs derives the collection bundle from the combined scope.
func ComputeCollectionKPIs(ds *types.Dataset) CollectionKPIs {
	m := Aggregate(ds, CollectionSpec, types.CombinedScope())

	outstanding := m.Number(ColHireOutstanding)
	overdue := m.Number(ColOverdueRunningMonth)
	matured := m.Number(ColMaturedOverdueAmount)
	collectible := m.Number(ColCollectibleQty).IntPart()
	collected := m.Number(ColCollectedQty).IntPart()

	collectionPct := normalize.RatioPercent(float64(collected), float64(collectible), 1)
	overduePct := normalize.RatioPercent(overdue.InexactFloat64(), outstanding.InexactFloat64(), 1)

	return CollectionKPIs{
		HireOutstanding:             outstanding,
		OverdueRunning:              overdue,
		MaturedOverdueAmount:        matured,
		CollectibleQty:              collectible,
		CollectedQty:                collected,
		CollectionPct:               collectionPct,
		OverduePct:                  overduePct,
		HireOutstandingDisplay:      normalize.Crore(outstanding, 2),
		OverdueRunningDisplay:       normalize.Crore(overdue, 2),
		MaturedOverdueAmountDisplay: normalize.Lakh(matured, 2),
		CollectionTier:              CollectionTier(normalize.ParsePercentage(collectionPct)),
		OverdueTier:                 OverdueTier(normalize.ParsePercentage(overduePct)),
	}
}

func percentOf(m AggregatedMetrics, target, achievement string) int {
	return normalize.Percentage(m.Float(target), m.Float(achievement))
}

// RecordTiers classifies one collection row for the branch table.
func RecordTiers(r types.Record) (collection, overdue Tier) {
	collection = CollectionTier(normalize.ParsePercentage(r.Text(ColCollectionQtyPct)))
	overdue = OverdueTier(normalize.ParsePercentage(r.Text(ColOverduePct)))
	return collection, overdue
}
