// =============================================================================
// Branch Dashboard - Metric Catalog
// =============================================================================
//
// This module declares, per dataset, which columns are read, how they are
// grouped into cards, how each one is combined across records, and how each
// one is classified. Every view runs the same aggregation code over one of
// these tables.
//
// COLUMN NAMES:
//   Column names are matched exactly against the sheet headers, including the
//   spelling mistakes the sheets carry ("Retial Ach", "Collectilbe",
//   "Corpoate Due"). Do not correct them here without correcting the sheets.
//
// CUSTOMIZATION:
//   - Add a field to a group to show another column on an existing card
//   - Add a DatasetSpec and register it in catalog to add a dataset
//
// =============================================================================

package metrics

import (
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

// Sales sheet.
const (
	ColTotalTarget            = "Total Target"
	ColTotalAch               = "Total Ach"
	ColRetailTarget           = "Retail Target"
	ColRetailAch              = "Retial Ach"
	ColHireTarget             = "Hire Target"
	ColHireAch                = "Hire Ach"
	ColHireDPTarget           = "Hire DP Target"
	ColHireDPAch              = "Hire DP Ach"
	ColInsLprTarget           = "INS or LPR Target"
	ColInsLprAch              = "INS or LPR Ach"
	ColExecCollectionTarget   = "Hire Collection Executive (Qty.) Target"
	ColExecCollectionAch      = "Hire Collection Executive (Qty.) Ach"
	ColSelfCollectionTarget   = "Hire Collection Self (Qty.) Target"
	ColSelfCollectionAch      = "Hire Collection Self (Qty.) Ach"
	ColDealerSalesTarget      = "Dealer & Corporate Sales Target"
	ColDealerSalesAch         = "Dealer & Corporate Sales Ach"
	ColDealerCollectionTarget = "Dealer & Corporate Collection Target"
	ColDealerCollectionAch    = "Dealer & Corporate Collection Ach"
	ColProfitTarget           = "Profit Target"
	ColProfitAch              = "Profit Ach"
)

// Collection sheet.
const (
	ColHireOutstanding         = "Hire Outstanding"
	ColNewOutstandingAdded     = "New Outstanding Added"
	ColTotalUpdateOutstanding  = "Total Update Outstanding"
	ColRunningACCollectible    = "Running AC (Collectilbe)"
	ColRunningACPOS            = "Running AC (POS)"
	ColOverduePreviousMonth    = "Overdue Previous Month"
	ColOverdueRunningMonth     = "Overdue Running Month"
	ColOverdueIncDec           = "Overdue Increase/Decrease"
	ColOverduePct              = "Overdue %"
	ColCollectibleQty          = "Collectible Qty"
	ColCollectedQty            = "Collected Qty"
	ColCollectionQtyPct        = "Collection Qty %"
	ColLastMonthCardCollPct    = "Last Month Card Coll %"
	ColMobileOverduePrevious   = "Mobile Overdue Previous Month"
	ColMobileOverdueRunning    = "Mobile Overdue Running Month"
	ColMobileOverdueIncDec     = "Mobile Overdue Increase/Decrease"
	ColOverdue2024Previous     = "2024 Overdue Previous Month"
	ColOverdue2024Running      = "2024 Overdue Running Month"
	ColOverdue2024IncDec       = "2024 Overdue Increase/Decrease"
	ColOverdue2025Previous     = "2025 Overdue Previous Month"
	ColOverdue2025Running      = "2025 Overdue Running Month"
	ColOverdue2025IncDec       = "2025 Overdue Increase/Decrease"
	ColNoCollection3Plus       = "3+ Month No Coll"
	ColMaturedOverdueQty       = "Matured Overdue Qty"
	ColMaturedOverdueAmount    = "Matured Overdue Amount"
	ColMRPCollectedQty         = "MRP Collected Qty"
	ColHCPCollected            = "HCP Collected"
	ColOnlyMRPCollectedQty     = "Only MRP Collected Qty"
	ColMRPPlus10Qty            = "MRP+10% Qty"
	ColRevert                  = "Revert"
	ColRevertResale            = "Revert Resale"
	ColRevertProductInPlaza    = "Revert Product in Plaza"
	ColDeathQty                = "Death Qty"
	ColRevertOverdueDeathResal = "Revert Overdue (Collectible) Death + Resale"
	ColEmployeeCorruptionQty   = "Employee Corruption Qty"
)

// Dealer sheets.
const (
	ColDealerQty              = "Dealer Qty"
	ColPositiveBalanceQty     = "Positive Balance Qty"
	ColNegativeBalanceQty     = "Negative Balance Qty"
	ColDealerDue              = "Dealer Due"
	ColPOSDue                 = "POS Due"
	ColEBSDue                 = "EBS Due"
	ColDealerAvgPct           = "Dealer Avg %"
	ColZeroPctDealerQty       = "0%-% Dealer Qty"
	ColNoColl3Month           = "3 Month No Coll"
	ColNoColl1Year            = "1 Year No Coll"
	ColNoCollQty              = "No Coll Qty"
	ColTotalSale              = "Total Sale"
	ColPOSSale                = "POS Sale"
	ColEBSSale                = "EBS Sale"
	ColPOSColl                = "POS Coll"
	ColEBSColl                = "EBS Coll"
	ColSalesVsColl            = "Sales VS Coll"
	ColPolicyWiseCollShort    = "Policy Wise Collection Short"
	ColPreviousMonthDue       = "Previous Month Due"
	ColTotalBalance           = "Total Balance"
	ColDueReduce              = "Due Reduce"
	ColPlazaName              = "Plaza Name"
	ColSerialNumber           = "S/N"
)

// Corporate sheet.
const (
	ColPartyQty           = "Party Qty"
	ColPositiveBalance    = "Positive Balance"
	ColNegativeBalance    = "Negative Balance"
	ColCorporateDue       = "Corpoate Due"
	ColTotalColl          = "Total Coll"
	ColNoCollRunningMonth = "No Coll Running Month"
	ColSalesVsCollShort   = "Sales vs Coll Short"
)

// =============================================================================
// FIELD AND GROUP TYPES
// =============================================================================

// Kind is the semantic type of a metric column.
type Kind int

const (
	// Amount is a money value, summed as a decimal.
	Amount Kind = iota
	// Quantity is a count, truncated to an integer before summing.
	Quantity
	// Percentage is a ratio carried as "12.34%" text.
	Percentage
)

// String returns the kind name used in JSON output.
func (k Kind) String() string {
	switch k {
	case Quantity:
		return "quantity"
	case Percentage:
		return "percentage"
	default:
		return "amount"
	}
}

// MarshalText lets Kind render as its name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name. Unknown names read as Amount.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "quantity":
		*k = Quantity
	case "percentage":
		*k = Percentage
	default:
		*k = Amount
	}
	return nil
}

// CombineMode selects how a column is combined across records.
type CombineMode int

const (
	// CombineDefault sums numeric kinds and reads percentages from the area row.
	CombineDefault CombineMode = iota
	// CombineSum adds the normalized values of all non-area records.
	CombineSum
	// CombineRatio recomputes a percentage from two summed columns.
	CombineRatio
	// CombineFromArea copies the area row's value.
	CombineFromArea
)

// CombineRule describes how a field is computed in the combined scope.
type CombineRule struct {
	Mode        CombineMode
	Numerator   string
	Denominator string
	Decimals    int
}

// Ratio builds a CombineRatio rule.
func Ratio(numerator, denominator string, decimals int) CombineRule {
	return CombineRule{Mode: CombineRatio, Numerator: numerator, Denominator: denominator, Decimals: decimals}
}

// Family groups target-vs-achievement metrics that share a highlight
// threshold.
type Family int

const (
	FamilyNone Family = iota
	FamilySalesTarget
	FamilyCollectionExecutive
	FamilyStrictCompliance
	FamilyProfit
)

// Classifier maps a numeric value to a tier.
type Classifier func(v float64) Tier

// MetricField is one column shown on a card. When TargetColumn is set the
// field is a target-vs-achievement pair and Column holds the achievement.
type MetricField struct {
	Label        string
	Column       string
	TargetColumn string
	Kind         Kind
	Classify     Classifier
	Combine      CombineRule
	Family       Family
}

// IsPair reports whether the field compares an achievement with a target.
func (f MetricField) IsPair() bool {
	return f.TargetColumn != ""
}

// combineMode resolves CombineDefault by kind.
func (f MetricField) combineMode() CombineMode {
	if f.Combine.Mode != CombineDefault {
		return f.Combine.Mode
	}
	if f.Kind == Percentage {
		return CombineFromArea
	}
	return CombineSum
}

// MetricGroup is one card: a title, ordered fields and an optional
// highlight rule.
type MetricGroup struct {
	Title     string
	Fields    []MetricField
	Highlight HighlightRule
}

// DatasetSpec is the declarative description of one dataset.
type DatasetSpec struct {
	// Code is the short dataset identifier used in config, URLs and the CLI.
	Code string

	// Title is the human readable name.
	Title string

	// IdentityKey is the column rows are filtered on.
	IdentityKey string

	// Groups are the cards, in display order.
	Groups []MetricGroup

	// DynamicColumns adds one amount card per header not already covered by
	// Groups and not listed in ExcludedColumns.
	DynamicColumns bool

	// ExcludedColumns are never turned into dynamic cards.
	ExcludedColumns []string

	// DynamicHighlights attaches highlight rules to dynamic cards by column.
	DynamicHighlights map[string]HighlightRule

	// PlazaExport enables the per-plaza workbook export.
	PlazaExport bool
}

// ResolveGroups returns the card groups for a dataset, expanding dynamic
// columns against its headers.
func (s DatasetSpec) ResolveGroups(ds *types.Dataset) []MetricGroup {
	if !s.DynamicColumns || ds == nil {
		return s.Groups
	}

	covered := make(map[string]bool)
	for _, col := range s.ExcludedColumns {
		covered[col] = true
	}
	for _, g := range s.Groups {
		for _, f := range g.Fields {
			covered[f.Column] = true
			if f.TargetColumn != "" {
				covered[f.TargetColumn] = true
			}
		}
	}

	groups := append([]MetricGroup(nil), s.Groups...)
	for _, h := range ds.Headers {
		if h == "" || covered[h] {
			continue
		}
		covered[h] = true
		groups = append(groups, MetricGroup{
			Title:     h,
			Fields:    []MetricField{{Label: h, Column: h, Kind: Amount}},
			Highlight: s.DynamicHighlights[h],
		})
	}
	return groups
}

// =============================================================================
// FIELD CONSTRUCTORS
// =============================================================================

func pair(label, target, achievement string, kind Kind, family Family) MetricField {
	return MetricField{
		Label:        label,
		Column:       achievement,
		TargetColumn: target,
		Kind:         kind,
		Classify:     TargetTier,
		Family:       family,
	}
}

func amount(label, column string) MetricField {
	return MetricField{Label: label, Column: column, Kind: Amount}
}

func qty(label, column string) MetricField {
	return MetricField{Label: label, Column: column, Kind: Quantity}
}

func pct(label, column string) MetricField {
	return MetricField{Label: label, Column: column, Kind: Percentage}
}

func delta(label, column string) MetricField {
	return MetricField{Label: label, Column: column, Kind: Amount, Classify: DeltaTier}
}

// pairGroup is a single-pair card with the highlight of its family.
func pairGroup(label, target, achievement string, kind Kind, family Family) MetricGroup {
	f := pair(label, target, achievement, kind, family)
	return MetricGroup{Title: label, Fields: []MetricField{f}, Highlight: familyHighlight(f)}
}

func single(field MetricField) MetricGroup {
	return MetricGroup{Title: field.Label, Fields: []MetricField{field}}
}

func overdueBand(title, previous, running, incDec string) MetricGroup {
	return MetricGroup{Title: title, Fields: []MetricField{
		amount("Previous Month", previous),
		amount("Running Month", running),
		delta("Increase/Decrease", incDec),
	}}
}

// =============================================================================
// DATASET TABLES
// =============================================================================

// SalesSpec is the branch sales and target sheet.
var SalesSpec = DatasetSpec{
	Code:        "sales",
	Title:       "Branch Sales & Targets",
	IdentityKey: "Branch Name",
	Groups: []MetricGroup{
		pairGroup("Total", ColTotalTarget, ColTotalAch, Amount, FamilySalesTarget),
		pairGroup("Retail", ColRetailTarget, ColRetailAch, Amount, FamilySalesTarget),
		pairGroup("Hire", ColHireTarget, ColHireAch, Amount, FamilySalesTarget),
		pairGroup("Hire DP", ColHireDPTarget, ColHireDPAch, Amount, FamilyStrictCompliance),
		pairGroup("INS / LPR", ColInsLprTarget, ColInsLprAch, Amount, FamilyStrictCompliance),
		pairGroup("Exec Collection", ColExecCollectionTarget, ColExecCollectionAch, Quantity, FamilyCollectionExecutive),
		pairGroup("Self Collection", ColSelfCollectionTarget, ColSelfCollectionAch, Quantity, FamilyCollectionExecutive),
		pairGroup("Dealer Sales", ColDealerSalesTarget, ColDealerSalesAch, Amount, FamilySalesTarget),
		pairGroup("Dealer Collection", ColDealerCollectionTarget, ColDealerCollectionAch, Amount, FamilyCollectionExecutive),
		pairGroup("Profit", ColProfitTarget, ColProfitAch, Amount, FamilyProfit),
	},
}

// CollectionSpec is the hire collection sheet.
var CollectionSpec = DatasetSpec{
	Code:        "collection",
	Title:       "Collection",
	IdentityKey: "Branch Name",
	Groups: []MetricGroup{
		{Title: "Hire Outstanding", Fields: []MetricField{
			amount("Hire Outstanding", ColHireOutstanding),
			amount("New Outstanding Added", ColNewOutstandingAdded),
			amount("Total Update Outstanding", ColTotalUpdateOutstanding),
		}},
		single(qty("Running AC (Collectible)", ColRunningACCollectible)),
		single(qty("Running AC (POS)", ColRunningACPOS)),
		{Title: "Overdue", Fields: []MetricField{
			amount("Previous Month", ColOverduePreviousMonth),
			amount("Running Month", ColOverdueRunningMonth),
			delta("Increase/Decrease", ColOverdueIncDec),
			{Label: "Overdue %", Column: ColOverduePct, Kind: Percentage, Classify: OverdueTier,
				Combine: Ratio(ColOverdueRunningMonth, ColHireOutstanding, 2)},
		}},
		{Title: "Collection", Fields: []MetricField{
			qty("Collectible Qty", ColCollectibleQty),
			qty("Collected Qty", ColCollectedQty),
			{Label: "Collection %", Column: ColCollectionQtyPct, Kind: Percentage, Classify: CollectionTier,
				Combine: Ratio(ColCollectedQty, ColCollectibleQty, 2)},
			pct("Last Month Card Coll %", ColLastMonthCardCollPct),
		}, Highlight: BelowPreviousPeriod{Current: ColCollectionQtyPct, Previous: ColLastMonthCardCollPct}},
		overdueBand("Mobile Overdue", ColMobileOverduePrevious, ColMobileOverdueRunning, ColMobileOverdueIncDec),
		overdueBand("2024 Overdue", ColOverdue2024Previous, ColOverdue2024Running, ColOverdue2024IncDec),
		overdueBand("2025 Overdue", ColOverdue2025Previous, ColOverdue2025Running, ColOverdue2025IncDec),
		single(qty("3+ Month No Collection", ColNoCollection3Plus)),
		{Title: "Matured Overdue", Fields: []MetricField{
			qty("Qty", ColMaturedOverdueQty),
			amount("Amount", ColMaturedOverdueAmount),
		}},
		single(qty("MRP Collected Qty", ColMRPCollectedQty)),
		single(qty("HCP Collected", ColHCPCollected)),
		single(qty("Only MRP Collected Qty", ColOnlyMRPCollectedQty)),
		{Title: "MRP+10% Qty", Fields: []MetricField{qty("MRP+10% Qty", ColMRPPlus10Qty)},
			Highlight: CountAbove{Column: ColMRPPlus10Qty, Limit: 0}},
		{Title: "Revert", Fields: []MetricField{
			qty("Revert", ColRevert),
			qty("Revert Resale", ColRevertResale),
			qty("Revert Product in Plaza", ColRevertProductInPlaza),
			qty("Death Qty", ColDeathQty),
			amount("Revert Overdue (Collectible) Death + Resale", ColRevertOverdueDeathResal),
		}},
		single(qty("Employee Corruption", ColEmployeeCorruptionQty)),
	},
}

func dealerGroups() []MetricGroup {
	return []MetricGroup{
		{Title: "Dealer Qty", Fields: []MetricField{
			qty("Dealer Qty", ColDealerQty),
			qty("Positive Balance Qty", ColPositiveBalanceQty),
			qty("Negative Balance Qty", ColNegativeBalanceQty),
		}},
		{Title: "Dealer Due", Fields: []MetricField{
			amount("Dealer Due", ColDealerDue),
			amount("POS Due", ColPOSDue),
			amount("EBS Due", ColEBSDue),
		}},
		single(pct("Dealer Avg %", ColDealerAvgPct)),
		single(qty("0%-% Dealer Qty", ColZeroPctDealerQty)),
		single(qty("3 Month No Coll", ColNoColl3Month)),
		single(qty("1 Year No Coll", ColNoColl1Year)),
		single(qty("No Coll Qty (Running)", ColNoCollQty)),
		{Title: "Sales VS Coll Running", Fields: []MetricField{
			amount("Total Sale", ColTotalSale),
			amount("POS Sale", ColPOSSale),
			amount("EBS Sale", ColEBSSale),
			amount("POS Coll", ColPOSColl),
			amount("EBS Coll", ColEBSColl),
			pct("Sales VS Coll", ColSalesVsColl),
		}, Highlight: PositiveValue{Column: ColSalesVsColl}},
		single(amount("Policy Wise Collection Short", ColPolicyWiseCollShort)),
		{Title: "Due Reduced (Running)", Fields: []MetricField{
			amount("Previous Month Due", ColPreviousMonthDue),
			amount("Total Balance", ColTotalBalance),
			amount("Due Reduce", ColDueReduce),
		}},
	}
}

// DealerSpec is the dealer overview sheet.
var DealerSpec = DatasetSpec{
	Code:        "dealer",
	Title:       "Dealer Overview",
	IdentityKey: "Branch Name",
	Groups:      dealerGroups(),
	PlazaExport: true,
}

// DealerPlazaSpec is the plaza-keyed variant of the dealer export.
var DealerPlazaSpec = DatasetSpec{
	Code:        "dealer-plaza",
	Title:       "Dealer Overview (Plaza)",
	IdentityKey: "Walton Plaza",
	Groups:      dealerGroups(),
	PlazaExport: true,
}

// CorporateSpec is the corporate sheet. Besides the grouped cards, every other
// column becomes its own card.
var CorporateSpec = DatasetSpec{
	Code:        "corporate",
	Title:       "Corporate Overview",
	IdentityKey: "Branch Name",
	Groups: []MetricGroup{
		{Title: "Party Qty", Fields: []MetricField{
			qty("Party Qty", ColPartyQty),
			qty("Positive Balance", ColPositiveBalance),
			qty("Negative Balance", ColNegativeBalance),
		}},
		{Title: "Corporate Due", Fields: []MetricField{
			amount("Corporate Due", ColCorporateDue),
			amount("POS Due", ColPOSDue),
			amount("EBS Due", ColEBSDue),
		}},
		{Title: "Total Sale", Fields: []MetricField{
			amount("Total Sale", ColTotalSale),
			amount("POS Sale", ColPOSSale),
			amount("EBS Sale", ColEBSSale),
		}},
		{Title: "Total Coll", Fields: []MetricField{
			amount("Total Coll", ColTotalColl),
			amount("POS Coll", ColPOSColl),
			amount("EBS Coll", ColEBSColl),
		}},
		single(qty("No Coll Qty (Running)", ColNoCollRunningMonth)),
	},
	DynamicColumns:  true,
	ExcludedColumns: append([]string{ColSerialNumber}, types.IdentityColumns...),
	DynamicHighlights: map[string]HighlightRule{
		ColSalesVsCollShort: PositiveValue{Column: ColSalesVsCollShort},
	},
}

var catalog = []DatasetSpec{SalesSpec, CollectionSpec, CorporateSpec, DealerSpec, DealerPlazaSpec}

// Specs returns every dataset spec in display order.
func Specs() []DatasetSpec {
	return append([]DatasetSpec(nil), catalog...)
}

// Lookup returns the dataset spec for a code.
func Lookup(code string) (DatasetSpec, bool) {
	for _, s := range catalog {
		if s.Code == code {
			return s, true
		}
	}
	return DatasetSpec{}, false
}
