// =============================================================================
// Branch Dashboard - Terminal Rendering
// =============================================================================
//
// This module lays cards, KPI bundles and refresh outcomes out for a
// terminal. It only formats values the metrics layer already computed.
//
// COLOURS:
//   good  green
//   warn  yellow
//   bad   red
//   Highlighted cards get a red border. The neutral palette follows the
//   configured theme.
//
// =============================================================================

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
)

// CardsPerRow is how many cards are placed side by side.
const CardsPerRow = 3

const cardWidth = 38

// Palette is the set of colours for one theme.
type Palette struct {
	Text   lipgloss.Color
	Subtle lipgloss.Color
	Accent lipgloss.Color
	Border lipgloss.Color
	Good   lipgloss.Color
	Warn   lipgloss.Color
	Bad    lipgloss.Color
}

// PaletteFor returns the palette of a theme. Unknown themes use light.
func PaletteFor(theme config.Theme) Palette {
	if theme == config.ThemeDark {
		return Palette{
			Text:   lipgloss.Color("252"),
			Subtle: lipgloss.Color("244"),
			Accent: lipgloss.Color("111"),
			Border: lipgloss.Color("240"),
			Good:   lipgloss.Color("42"),
			Warn:   lipgloss.Color("220"),
			Bad:    lipgloss.Color("203"),
		}
	}
	return Palette{
		Text:   lipgloss.Color("235"),
		Subtle: lipgloss.Color("242"),
		Accent: lipgloss.Color("25"),
		Border: lipgloss.Color("250"),
		Good:   lipgloss.Color("28"),
		Warn:   lipgloss.Color("136"),
		Bad:    lipgloss.Color("160"),
	}
}

// Renderer renders dashboard values with one palette.
type Renderer struct {
	palette Palette

	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	subtle lipgloss.Style
	card   lipgloss.Style
}

// New creates a Renderer for a theme.
func New(theme config.Theme) *Renderer {
	p := PaletteFor(theme)
	return &Renderer{
		palette: p,
		title:   lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		label:   lipgloss.NewStyle().Foreground(p.Subtle),
		value:   lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		subtle:  lipgloss.NewStyle().Foreground(p.Subtle).Italic(true),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1).
			Width(cardWidth),
	}
}

// TierStyle returns the text style of a classification tier.
func (r *Renderer) TierStyle(t metrics.Tier) lipgloss.Style {
	switch t {
	case metrics.TierGood:
		return lipgloss.NewStyle().Foreground(r.palette.Good).Bold(true)
	case metrics.TierWarn:
		return lipgloss.NewStyle().Foreground(r.palette.Warn).Bold(true)
	case metrics.TierBad:
		return lipgloss.NewStyle().Foreground(r.palette.Bad).Bold(true)
	default:
		return r.value
	}
}

// =============================================================================
// CARDS
// =============================================================================

// Card renders one card.
func (r *Renderer) Card(c metrics.Card) string {
	lines := []string{r.title.Render(c.Title)}
	for _, f := range c.Fields {
		lines = append(lines, r.field(f))
	}

	style := r.card
	if c.Highlighted {
		style = style.BorderForeground(r.palette.Bad)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) field(f metrics.CardField) string {
	value := f.Display
	if !f.Present {
		value = r.subtle.Render(value)
	} else {
		value = r.TierStyle(f.Tier).Render(value)
	}

	if f.Percent == nil {
		return fmt.Sprintf("%s %s", r.label.Render(f.Label+":"), value)
	}
	pct := r.TierStyle(f.Tier).Render(fmt.Sprintf("%d%%", *f.Percent))
	return fmt.Sprintf("%s %s\n%s %s  %s",
		r.label.Render("Target:"), r.value.Render(f.TargetDisplay),
		r.label.Render("Achievement:"), value, pct)
}

// Cards renders a heading and the cards in rows of CardsPerRow.
func (r *Renderer) Cards(heading string, cards []metrics.Card) string {
	blocks := []string{r.title.Render(heading)}
	if len(cards) == 0 {
		blocks = append(blocks, r.subtle.Render("No data available"))
		return lipgloss.JoinVertical(lipgloss.Left, blocks...)
	}

	for start := 0; start < len(cards); start += CardsPerRow {
		end := start + CardsPerRow
		if end > len(cards) {
			end = len(cards)
		}
		row := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			row = append(row, r.Card(c))
		}
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// =============================================================================
// KPI BUNDLES
// =============================================================================

// SalesKPIs renders the sales headline bundle.
func (r *Renderer) SalesKPIs(k metrics.SalesKPIs) string {
	lines := []string{
		r.title.Render("Sales"),
		r.kv("Total Target", k.TotalTargetDisplay),
		r.kv("Total Achievement", k.TotalAchievementDisplay),
		fmt.Sprintf("%s %s", r.label.Render("Total:"), r.TierStyle(k.TotalTier).Render(fmt.Sprintf("%d%%", k.TotalPct))),
		fmt.Sprintf("%s %s",
			r.label.Render("Retail / Hire / Profit:"),
			r.TierStyle(k.SubtitleTier).Render(fmt.Sprintf("%d%% / %d%% / %d%%", k.RetailPct, k.HirePct, k.ProfitPct))),
	}
	return r.card.Render(strings.Join(lines, "\n"))
}

// CollectionKPIs renders the collection headline bundle.
func (r *Renderer) CollectionKPIs(k metrics.CollectionKPIs) string {
	lines := []string{
		r.title.Render("Collection"),
		r.kv("Hire Outstanding", k.HireOutstandingDisplay),
		r.kv("Overdue (Running)", k.OverdueRunningDisplay),
		r.kv("Matured Overdue", k.MaturedOverdueAmountDisplay),
		fmt.Sprintf("%s %s", r.label.Render("Collection:"), r.TierStyle(k.CollectionTier).Render(k.CollectionPct)),
		fmt.Sprintf("%s %s", r.label.Render("Overdue:"), r.TierStyle(k.OverdueTier).Render(k.OverduePct)),
	}
	return r.card.Render(strings.Join(lines, "\n"))
}

// Spreads renders per-record percentage spreads as a table.
func (r *Renderer) Spreads(spreads []metrics.Spread) string {
	if len(spreads) == 0 {
		return ""
	}
	head := fmt.Sprintf("%-20s %8s %8s %8s %8s %8s", "Metric", "Combined", "Mean", "Median", "Min", "Max")
	lines := []string{r.title.Render("Achievement spread"), r.label.Render(head)}
	for _, s := range spreads {
		lines = append(lines, fmt.Sprintf("%-20s %7d%% %7.1f%% %7.1f%% %7.0f%% %7.0f%%",
			s.Field, s.Combined, s.Mean, s.Median, s.Min, s.Max))
	}
	return strings.Join(lines, "\n")
}

// Status renders a one-line refresh outcome.
func (r *Renderer) Status(ok bool, code, detail string) string {
	if ok {
		return fmt.Sprintf("%s %s %s", r.TierStyle(metrics.TierGood).Render("✓"), code, r.label.Render(detail))
	}
	return fmt.Sprintf("%s %s %s", r.TierStyle(metrics.TierBad).Render("✗"), code, r.label.Render(detail))
}

func (r *Renderer) kv(label, value string) string {
	return fmt.Sprintf("%s %s", r.label.Render(label+":"), r.value.Render(value))
}
