package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234.50", 1234.5},
		{"", 0},
		{"N/A", 0},
		{"  42 ", 42},
		{"-12", -12},
		{"৳ 1,00,000", 100000},
		{"1.2.3", 1.2},
		{"-", 0},
		{".5", 0.5},
		{"85%", 85},
		{"৳ -500", -500},
		{"৳-1,250.5", -1250.5},
		{"Tk -3,000", -3000},
		{"12-5", 12},
		{"--5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.in))
		})
	}
}

func TestParseQuantity_Truncates(t *testing.T) {
	assert.Equal(t, int64(12), ParseQuantity("12.9"))
	assert.Equal(t, int64(-3), ParseQuantity("-3.7"))
	assert.Equal(t, int64(1500), ParseQuantity("1,500"))
	assert.Equal(t, int64(0), ParseQuantity("none"))
}

func TestParseDecimal(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1234.5").Equal(ParseDecimal("1,234.50")))
	assert.True(t, decimal.Zero.Equal(ParseDecimal("N/A")))
	assert.True(t, decimal.RequireFromString("-0.25").Equal(ParseDecimal("-.25")))
	assert.True(t, decimal.RequireFromString("-3000").Equal(ParseDecimal("৳ -3,000")))
}

func TestParsePercentage(t *testing.T) {
	assert.Equal(t, 85.5, ParsePercentage("85.5%"))
	assert.Equal(t, 12.0, ParsePercentage(" 12 %"))
	assert.Equal(t, 0.0, ParsePercentage(""))
	assert.Equal(t, 0.0, ParsePercentage("n/a"))
}

func TestCalculatePercentage(t *testing.T) {
	assert.Equal(t, 85, CalculatePercentage("1000", "850"))
	assert.Equal(t, 0, CalculatePercentage("0", "500"))
	assert.Equal(t, 100, CalculatePercentage("1000", "1000"))
	assert.Equal(t, 100, CalculatePercentage("1,000", "1000"))
	assert.Equal(t, 0, CalculatePercentage("", ""))
}

func TestPercentage_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, 50, Percentage(1010, 510))
	assert.Equal(t, 13, Percentage(8, 1))
	assert.Equal(t, -50, Percentage(100, -50))
}

func TestRatioPercent(t *testing.T) {
	assert.Equal(t, "25.00%", RatioPercent(1, 4, 2))
	assert.Equal(t, "33.3%", RatioPercent(1, 3, 1))
	assert.Equal(t, "0%", RatioPercent(5, 0, 2))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234.5", FormatNumber(1234.5))
	assert.Equal(t, "12", FormatNumber(12))
	assert.Equal(t, "৳ 999", FormatAmount(999))
}

func TestCroreAndLakh(t *testing.T) {
	assert.Equal(t, "৳ 1.2 Cr", Crore(decimal.NewFromInt(12_345_678), 1))
	assert.Equal(t, "৳ 0.50 Cr", Crore(decimal.NewFromInt(5_000_000), 2))
	assert.Equal(t, "৳ 3.40 L", Lakh(decimal.NewFromInt(340_000), 2))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("1,200"))
	assert.False(t, IsNumeric("Closed"))
	assert.False(t, IsNumeric(""))
}
