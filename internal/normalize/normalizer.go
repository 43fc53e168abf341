// =============================================================================
// Branch Dashboard - Value Normalizer
// =============================================================================
//
// This module converts the human-formatted cell text found in the reporting
// sheets ("1,234.50", "85%", "", "N/A") into numbers, and formats numbers back
// for display.
//
// NORMALIZATION RULES:
//   - Thousands separators are removed
//   - Everything except digits, minus signs and the decimal point is
//     stripped, so currency glyphs before a sign do not hide it
//   - The longest numeric prefix is parsed; a minus only counts as the
//     first remaining character; anything unparseable is 0
//   - Quantities are truncated toward zero
//   - Percentages drop the "%" sign and default to 0
//
// DISPLAY RULES:
//   - Numbers use en-IN grouping (12,34,567)
//   - Amounts are prefixed with the taka sign
//   - Crore (10,000,000) and lakh (100,000) scaling is display-only
//
// =============================================================================

package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol prefixes every displayed amount.
const CurrencySymbol = "৳"

var (
	crore = decimal.NewFromInt(10_000_000)
	lakh  = decimal.NewFromInt(100_000)

	nonNumeric    = regexp.MustCompile(`[^\d.\-]`)
	numericPrefix = regexp.MustCompile(`^-?\d*(\.\d*)?`)

	printer = message.NewPrinter(language.MustParse("en-IN"))
)

// =============================================================================
// PARSING
// =============================================================================

// ParseValue converts cell text to a float. Unparseable text yields 0.
//
// EXAMPLES:
//   "1,234.50" -> 1234.5
//   "-12"      -> -12
//   ""         -> 0
//   "N/A"      -> 0
func ParseValue(s string) float64 {
	cleaned := cleanNumeric(s)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseQuantity converts cell text to an integer count, truncating any
// fractional part toward zero.
func ParseQuantity(s string) int64 {
	return int64(ParseValue(s))
}

// ParseDecimal converts cell text to an exact decimal. Unparseable text
// yields zero.
func ParseDecimal(s string) decimal.Decimal {
	cleaned := cleanNumeric(s)
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParsePercentage converts "85.5%" style text to 85.5. Unparseable text
// yields 0.
func ParsePercentage(s string) float64 {
	return ParseValue(strings.Replace(s, "%", "", 1))
}

// cleanNumeric reduces cell text to a canonical numeric literal, or "" when
// nothing numeric is left.
func cleanNumeric(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = nonNumeric.ReplaceAllString(s, "")

	s = numericPrefix.FindString(s)
	s = strings.TrimSuffix(s, ".")

	negative := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	if digits == "" || digits == "." {
		return ""
	}
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	if negative {
		return "-" + digits
	}
	return digits
}

// =============================================================================
// PERCENTAGES
// =============================================================================

// Percentage returns achievement/target*100 rounded to the nearest integer,
// halves rounding up. A zero target yields 0.
func Percentage(target, achievement float64) int {
	if target == 0 {
		return 0
	}
	return int(math.Floor(achievement/target*100 + 0.5))
}

// CalculatePercentage normalizes both cells and returns Percentage.
//
// EXAMPLES:
//   ("1000", "850")   -> 85
//   ("0", "500")      -> 0
//   ("1,000", "1000") -> 100
func CalculatePercentage(target, achievement string) int {
	return Percentage(ParseValue(target), ParseValue(achievement))
}

// RatioPercent formats numerator/denominator*100 with a fixed number of
// decimals and a "%" suffix. A zero denominator yields "0%".
func RatioPercent(numerator, denominator float64, decimals int) string {
	if denominator == 0 {
		return "0%"
	}
	return strconv.FormatFloat(numerator/denominator*100, 'f', decimals, 64) + "%"
}

// =============================================================================
// DISPLAY FORMATTING
// =============================================================================

// FormatNumber renders a number with en-IN grouping and at most three
// fraction digits.
func FormatNumber(v float64) string {
	return printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatAmount renders an amount with the currency symbol.
func FormatAmount(v float64) string {
	return CurrencySymbol + " " + FormatNumber(v)
}

// Crore renders an amount in crore with a fixed number of decimals,
// e.g. "৳ 1.2 Cr".
func Crore(d decimal.Decimal, places int32) string {
	return CurrencySymbol + " " + d.Div(crore).StringFixed(places) + " Cr"
}

// Lakh renders an amount in lakh with a fixed number of decimals,
// e.g. "৳ 3.40 L".
func Lakh(d decimal.Decimal, places int32) string {
	return CurrencySymbol + " " + d.Div(lakh).StringFixed(places) + " L"
}

// IsNumeric reports whether the cell text carries a number at all. Corporate
// cards show non-numeric cells verbatim.
func IsNumeric(s string) bool {
	return cleanNumeric(s) != ""
}
