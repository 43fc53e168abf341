package metrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/branch-dashboard/internal/csvparser"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

func parse(t *testing.T, text string) *types.Dataset {
	t.Helper()
	return csvparser.Parse(text, csvparser.Options{})
}

func totalField(t *testing.T) MetricField {
	t.Helper()
	f := SalesSpec.Groups[0].Fields[0]
	require.Equal(t, ColTotalAch, f.Column)
	return f
}

func TestAggregate_CombinedPercentIsNotAverage(t *testing.T) {
	ds := parse(t, "Branch Name,Total Target,Total Ach\nA,10,10\nB,1000,500")

	m := Aggregate(ds, SalesSpec, types.CombinedScope())

	assert.True(t, decimal.NewFromInt(1010).Equal(m.Number(ColTotalTarget)))
	assert.True(t, decimal.NewFromInt(510).Equal(m.Number(ColTotalAch)))
	assert.Equal(t, 50, m.Percent(totalField(t)))

	spread := PercentageSpread(ds, SalesSpec, totalField(t))
	assert.Equal(t, 75.0, spread.Mean)
	assert.Equal(t, 50, spread.Combined)
	assert.Equal(t, 2, spread.Records)
	assert.Equal(t, 50.0, spread.Min)
	assert.Equal(t, 100.0, spread.Max)
}

func TestAggregate_AreaRowExcludedFromSums(t *testing.T) {
	ds := parse(t, "Branch Name,Total Target,Total Ach\nA,10,10\nB,1000,500\nAREA,99999,1")

	m := Aggregate(ds, SalesSpec, types.CombinedScope())

	assert.True(t, decimal.NewFromInt(1010).Equal(m.Number(ColTotalTarget)))
	assert.Equal(t, 50, m.Percent(totalField(t)))
	assert.Equal(t, 2, m.Records)
}

func TestAggregate_PercentageFromAreaRow(t *testing.T) {
	withArea := parse(t, "Branch Name,Dealer Avg %\nA,10%\nB,20%\nArea,17%")
	m := Aggregate(withArea, DealerSpec, types.CombinedScope())
	assert.Equal(t, "17%", m.Text(ColDealerAvgPct))
	assert.Equal(t, 17.0, m.Float(ColDealerAvgPct))

	withoutArea := parse(t, "Branch Name,Dealer Avg %\nA,10%\nB,20%")
	m = Aggregate(withoutArea, DealerSpec, types.CombinedScope())
	assert.Equal(t, "0%", m.Text(ColDealerAvgPct))
}

func TestAggregate_RatioPercentages(t *testing.T) {
	ds := parse(t, "Branch Name,Hire Outstanding,Overdue Running Month,Overdue %,Collectible Qty,Collected Qty,Collection Qty %\n"+
		"A,1000,100,10%,20,5,25%\n"+
		"B,\"3,000\",300,10%,20,10,50%")

	m := Aggregate(ds, CollectionSpec, types.CombinedScope())

	assert.Equal(t, "10.00%", m.Text(ColOverduePct))
	assert.Equal(t, "37.50%", m.Text(ColCollectionQtyPct))
}

func TestAggregate_RatioZeroDenominator(t *testing.T) {
	ds := parse(t, "Branch Name,Hire Outstanding,Overdue Running Month\nA,0,100")

	m := Aggregate(ds, CollectionSpec, types.CombinedScope())

	assert.Equal(t, "0%", m.Text(ColOverduePct))
}

func TestAggregate_QuantitiesTruncateBeforeSumming(t *testing.T) {
	ds := parse(t, "Branch Name,Hire Collection Executive (Qty.) Target,Hire Collection Executive (Qty.) Ach\nA,10.9,2.7\nB,10.9,3.9")

	m := Aggregate(ds, SalesSpec, types.CombinedScope())

	assert.Equal(t, int64(20), m.Number(ColExecCollectionTarget).IntPart())
	assert.Equal(t, int64(5), m.Number(ColExecCollectionAch).IntPart())
}

func TestAggregate_SingleScope(t *testing.T) {
	ds := parse(t, "Branch Name,Total Target,Total Ach,Overdue %\nA,1000,850,5%\nB,0,500,7%")

	m := Aggregate(ds, SalesSpec, types.SingleScope("A"))
	assert.Equal(t, "A", m.Label)
	assert.Equal(t, 85, m.Percent(totalField(t)))

	m = Aggregate(ds, SalesSpec, types.SingleScope("B"))
	assert.Equal(t, 0, m.Percent(totalField(t)))

	m = Aggregate(ds, SalesSpec, types.SingleScope("missing"))
	assert.Equal(t, "A", m.Label)

	c := Aggregate(ds, CollectionSpec, types.SingleScope("B"))
	assert.Equal(t, "7%", c.Text(ColOverduePct))
}

func TestAggregate_MissingColumnsAreZero(t *testing.T) {
	ds := parse(t, "Branch Name,Total Target\nA,100")

	m := Aggregate(ds, SalesSpec, types.CombinedScope())

	assert.False(t, m.Values[ColTotalAch].Present)
	assert.True(t, m.Values[ColTotalTarget].Present)
	assert.True(t, m.Number(ColTotalAch).IsZero())
	assert.Equal(t, 0, m.Percent(totalField(t)))
}

func TestAggregate_EmptyDataset(t *testing.T) {
	m := Aggregate(&types.Dataset{}, SalesSpec, types.CombinedScope())
	assert.Equal(t, 0, m.Records)
	assert.True(t, m.Number(ColTotalTarget).IsZero())

	m = Aggregate(nil, SalesSpec, types.SingleScope("A"))
	assert.Equal(t, "", m.Label)
	assert.True(t, m.Number(ColTotalTarget).IsZero())
}

func TestResolveGroups_CorporateDynamicColumns(t *testing.T) {
	ds := parse(t, "S/N,Branch Name,Party Qty,Corpoate Due,Custom Col,Sales vs Coll Short\n1,A,3,100,7,50\n2,B,2,200,8,-10")

	groups := CorporateSpec.ResolveGroups(ds)

	titles := make([]string, 0, len(groups))
	for _, g := range groups {
		titles = append(titles, g.Title)
	}
	assert.Contains(t, titles, "Custom Col")
	assert.Contains(t, titles, ColSalesVsCollShort)
	assert.NotContains(t, titles, "S/N")
	assert.NotContains(t, titles, "Branch Name")
	assert.Len(t, groups, len(CorporateSpec.Groups)+2)

	m := Aggregate(ds, CorporateSpec, types.CombinedScope())
	assert.Equal(t, 15.0, m.Float("Custom Col"))
	assert.Equal(t, 300.0, m.Float(ColCorporateDue))
	assert.Equal(t, 40.0, m.Float(ColSalesVsCollShort))
}
