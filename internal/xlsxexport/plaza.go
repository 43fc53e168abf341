// =============================================================================
// Branch Dashboard - Plaza Workbook Export
// =============================================================================
//
// This module writes the dealer dataset as an Excel workbook with one sheet
// per plaza and a summary sheet.
//
// SHEET LAYOUT (one per plaza, in order of first appearance):
//
//   | A1: "<Plaza> - Dealer Overview"                           |
//   | (blank)                                                   |
//   | Branch Name | Dealer Qty | Dealer Due | ... (header row)  |
//   | Dhaka       | 12         | 40000      | ...               |
//   | TOTAL       | 30         | 95000      | ...               |
//
// SUMMARY SHEET:
//   Plaza Name | Total Branches | Total Dealers
//
// RULES:
//   - Records without a plaza go to "Unknown Plaza", which comes last
//   - The area summary row is not exported
//   - Sheet names are cut to Excel's 31 character limit
//   - Totals are exact decimal sums of the normalized values
//
// =============================================================================

package xlsxexport

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/branch-dashboard/internal/csvparser"
	"github.com/ginjaninja78/branch-dashboard/internal/normalize"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// PlazaColumn groups records into sheets.
	PlazaColumn = "Plaza Name"

	// UnknownPlaza collects records without a plaza.
	UnknownPlaza = "Unknown Plaza"

	// SummarySheet is the name of the summary sheet.
	SummarySheet = "Summary"

	// DealerQtyColumn is summed on the summary sheet.
	DealerQtyColumn = "Dealer Qty"

	maxSheetName = 31
	headerRow    = 3
)

var skippedColumns = map[string]bool{
	"Branch Name":  true,
	"Walton Plaza": true,
	"Branch":       true,
	PlazaColumn:    true,
	"S/N":          true,
	"":             true,
}

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// PlazaGroup holds the records of one plaza.
type PlazaGroup struct {
	Name    string
	Records []types.Record
	Totals  map[string]decimal.Decimal
	Dealers decimal.Decimal
}

// PlazaReport is the dealer dataset grouped by plaza.
type PlazaReport struct {
	Title       string
	Columns     []string
	Plazas      []*PlazaGroup
	GeneratedAt time.Time
}

// BuildPlazaReport groups a dataset by plaza and computes per-plaza totals.
func BuildPlazaReport(ds *types.Dataset, title string) *PlazaReport {
	report := &PlazaReport{Title: title, GeneratedAt: time.Now()}
	if ds == nil {
		return report
	}

	for _, h := range ds.Headers {
		if !skippedColumns[h] {
			report.Columns = append(report.Columns, h)
		}
	}

	names := csvparser.GetUniqueValues(ds, PlazaColumn)
	if !slices.Contains(names, UnknownPlaza) {
		names = append(names, UnknownPlaza)
	}
	for _, name := range names {
		plaza := name
		records := csvparser.FilterRows(ds, func(r types.Record) bool {
			return !r.IsArea() && plazaOf(r) == plaza
		})
		if len(records) == 0 {
			continue
		}

		g := &PlazaGroup{Name: plaza, Records: records, Totals: make(map[string]decimal.Decimal)}
		for _, r := range records {
			for _, col := range report.Columns {
				g.Totals[col] = g.Totals[col].Add(normalize.ParseDecimal(r.Text(col)))
			}
			g.Dealers = g.Dealers.Add(normalize.ParseDecimal(r.Text(DealerQtyColumn)))
		}
		report.Plazas = append(report.Plazas, g)
	}

	return report
}

func plazaOf(r types.Record) string {
	if name := strings.TrimSpace(r.Text(PlazaColumn)); name != "" {
		return name
	}
	return UnknownPlaza
}

// =============================================================================
// WORKBOOK GENERATION
// =============================================================================

// Workbook renders the report as an excelize workbook.
func (r *PlazaReport) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()

	styles, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	used := make(map[string]bool)
	for _, g := range r.Plazas {
		name := sheetName(g.Name, used)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := r.writePlazaSheet(f, name, g, styles); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %q: %w", name, err)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := r.writeSummarySheet(f, styles); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write summary sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	return f, nil
}

// WriteTo writes the workbook to w.
func (r *PlazaReport) WriteTo(w io.Writer) (int64, error) {
	f, err := r.Workbook()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteTo(w)
}

// Save writes the workbook to a file.
func (r *PlazaReport) Save(path string) error {
	f, err := r.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

type sheetStyles struct {
	title  int
	header int
	totals int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, fmt.Errorf("failed to create title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2C3E50"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.totals, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"F5F5F5"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return s, fmt.Errorf("failed to create totals style: %w", err)
	}
	return s, nil
}

func (r *PlazaReport) writePlazaSheet(f *excelize.File, sheet string, g *PlazaGroup, styles sheetStyles) error {
	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", g.Name, r.Title)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", styles.title); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(r.Columns)+1)
	header = append(header, "Branch Name")
	for _, col := range r.Columns {
		header = append(header, col)
	}
	if err := setRow(f, sheet, headerRow, header); err != nil {
		return err
	}

	row := headerRow + 1
	for _, rec := range g.Records {
		identity := rec.Identity()
		if identity == "" {
			identity = "N/A"
		}
		values := []interface{}{identity}
		for _, col := range r.Columns {
			values = append(values, cellValue(rec.Text(col)))
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []interface{}{"TOTAL"}
	for _, col := range r.Columns {
		totals = append(totals, g.Totals[col].InexactFloat64())
	}
	if err := setRow(f, sheet, row, totals); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), styles.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), styles.totals); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return err
	}
	if len(header) > 1 {
		if err := f.SetColWidth(sheet, "B", lastCol, 15); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlazaReport) writeSummarySheet(f *excelize.File, styles sheetStyles) error {
	if err := f.SetCellValue(SummarySheet, "A1", "Plaza Name wise "+r.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "A1", styles.title); err != nil {
		return err
	}
	if err := f.SetCellValue(SummarySheet, "A2", "Generated on "+r.GeneratedAt.Format("2006-01-02")); err != nil {
		return err
	}
	if err := setRow(f, SummarySheet, 4, []interface{}{"Plaza Name", "Total Branches", "Total Dealers"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A4", "C4", styles.header); err != nil {
		return err
	}

	for i, g := range r.Plazas {
		values := []interface{}{g.Name, len(g.Records), g.Dealers.InexactFloat64()}
		if err := setRow(f, SummarySheet, 5+i, values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 30); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "C", 15)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cellValue writes numbers as numbers and anything else verbatim. Empty
// cells become 0.
func cellValue(raw string) interface{} {
	if raw == "" {
		return 0
	}
	if normalize.IsNumeric(raw) && !strings.Contains(raw, "%") {
		return normalize.ParseValue(raw)
	}
	return raw
}

// sheetName makes a valid, unique Excel sheet name.
func sheetName(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, name)

	base := truncate(name, maxSheetName)
	candidate := base
	for i := 2; used[strings.ToLower(candidate)] || strings.EqualFold(candidate, SummarySheet); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncate(name, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
