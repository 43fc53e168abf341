package csvparser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

func TestParse_FiltersRowsWithoutIdentity(t *testing.T) {
	ds := Parse("Branch Name,Total Target\nA,100\n,200", Options{})

	require.Len(t, ds.Records, 1)
	assert.Equal(t, types.Record{"Branch Name": "A", "Total Target": "100"}, ds.Records[0])
}

func TestParse_WhitespaceOnlyIdentityDropped(t *testing.T) {
	ds := Parse("Branch Name,Total Target\n   ,200\nB,3", Options{})

	require.Len(t, ds.Records, 1)
	assert.Equal(t, "B", ds.Records[0].Identity())
}

func TestParse_RecordKeysMatchTrimmedHeaders(t *testing.T) {
	text := " Branch Name , Retail Target ,Retial Ach\r\nDhaka, 10 ,5\r\nKhulna,20,\r\nSylhet,30,30\n"
	ds := Parse(text, Options{})

	assert.Equal(t, []string{"Branch Name", "Retail Target", "Retial Ach"}, ds.Headers)
	require.Len(t, ds.Records, 3)
	for _, r := range ds.Records {
		assert.Len(t, r, len(ds.Headers))
		for _, h := range ds.Headers {
			_, ok := r.Get(h)
			assert.True(t, ok, "missing key %q", h)
		}
	}
	assert.Equal(t, "10", ds.Records[0].Text("Retail Target"))
	assert.Equal(t, "", ds.Records[1].Text("Retial Ach"))
}

func TestParse_MissingTrailingValuesAndExtras(t *testing.T) {
	ds := Parse("Branch Name,A,B\nX,1\nY,1,2,3", Options{})

	require.Len(t, ds.Records, 2)
	assert.Equal(t, "", ds.Records[0].Text("B"))
	assert.Equal(t, "2", ds.Records[1].Text("B"))
	assert.Len(t, ds.Records[1], 3)
}

func TestParse_EmptyInput(t *testing.T) {
	ds := Parse("   \n  ", Options{})

	assert.Empty(t, ds.Headers)
	assert.Empty(t, ds.Records)
	assert.Equal(t, 0, ds.Len())
}

func TestParse_HeaderOnly(t *testing.T) {
	ds := Parse("Branch Name,Total Target", Options{})

	assert.Equal(t, []string{"Branch Name", "Total Target"}, ds.Headers)
	assert.Empty(t, ds.Records)
}

func TestParse_CustomIdentityKey(t *testing.T) {
	ds := Parse("Walton Plaza,Dealer Qty\nGulshan,4\n,5", Options{IdentityKey: "Walton Plaza"})

	require.Len(t, ds.Records, 1)
	assert.Equal(t, "Gulshan", ds.Records[0].Identity())
	assert.Equal(t, "Walton Plaza", ds.IdentityKey)
}

func TestParseLine_QuotedCommaIsOneToken(t *testing.T) {
	fields := ParseLine(`A,"1,234",B`, Options{})

	assert.Equal(t, []string{"A", "1,234", "B"}, fields)
}

func TestParseLine_DoubledQuoteToggles(t *testing.T) {
	fields := ParseLine(`"say ""hi""",x`, Options{})

	assert.Equal(t, []string{"say hi", "x"}, fields)
}

func TestParseLine_DoubledQuoteEscape(t *testing.T) {
	fields := ParseLine(`"say ""hi""",x`, Options{DoubledQuoteEscape: true})

	assert.Equal(t, []string{`say "hi"`, "x"}, fields)
}

func TestParseLine_TrailingComma(t *testing.T) {
	assert.Equal(t, []string{"a", ""}, ParseLine("a,", Options{}))
	assert.Equal(t, []string{""}, ParseLine("", Options{}))
}

func TestExtractUpdateDate(t *testing.T) {
	headers := make([]string, 41)
	for i := range headers {
		headers[i] = fmt.Sprintf("H%d", i)
	}
	headers[0] = "Branch Name"
	headers[39] = "Updated: 12 Oct 2025"
	text := strings.Join(headers, ",") + "\nA"

	marker, ok := ExtractUpdateDate(text)
	require.True(t, ok)
	assert.Equal(t, "Updated: 12 Oct 2025", marker)

	ds := Parse(text, Options{})
	assert.Equal(t, "Updated: 12 Oct 2025", ds.UpdatedAt)
}

func TestExtractUpdateDate_KeepsCellText(t *testing.T) {
	headers := make([]string, 40)
	for i := range headers {
		headers[i] = fmt.Sprintf("H%d", i)
	}
	headers[0] = "Branch Name"
	headers[39] = " Updated: 12 Oct 2025 "
	text := strings.Join(headers, ",") + ",H40\nA"

	marker, ok := ExtractUpdateDate(text)
	require.True(t, ok)
	assert.Equal(t, " Updated: 12 Oct 2025 ", marker)

	ds := Parse(text, Options{})
	assert.Equal(t, " Updated: 12 Oct 2025 ", ds.UpdatedAt)
	assert.Equal(t, "Updated: 12 Oct 2025", ds.Headers[39])
}

func TestExtractUpdateDate_ShortHeader(t *testing.T) {
	_, ok := ExtractUpdateDate("Branch Name,Total Target\nA,1")
	assert.False(t, ok)

	_, ok = ExtractUpdateDate("")
	assert.False(t, ok)
}

func TestResolveIdentityKey(t *testing.T) {
	assert.Equal(t, "Walton Plaza", ResolveIdentityKey([]string{"S/N", "Walton Plaza", "Dealer Qty"}))
	assert.Equal(t, "Branch Name", ResolveIdentityKey([]string{"Branch", "Branch Name"}))
	assert.Equal(t, "Branch", ResolveIdentityKey([]string{"Branch"}))
	assert.Equal(t, DefaultIdentityKey, ResolveIdentityKey([]string{"X"}))
}

func TestDataAccessHelpers(t *testing.T) {
	ds := Parse("Branch Name,Plaza Name,Dealer Qty\nA,North,1\nB,South,2\nC,North,3", Options{})

	assert.Equal(t, []string{"1", "2", "3"}, GetColumnByHeader(ds, "Dealer Qty"))
	assert.Equal(t, []string{"North", "South"}, GetUniqueValues(ds, "Plaza Name"))

	north := FilterRows(ds, func(r types.Record) bool { return r.Text("Plaza Name") == "North" })
	require.Len(t, north, 2)
	assert.Equal(t, "C", north[1].Identity())
}
