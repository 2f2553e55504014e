// Package report renders the run result into the HTML payload delivered
// over Telegram. One run produces exactly one payload: either a report or a
// failure notification, never both.
package report

import (
	"fmt"
	"strings"
	"time"

	"sectorpulse/internal/flow"
	"sectorpulse/internal/listing"
	"sectorpulse/internal/sector"
)

// Indicator glyphs. The sentinel glyph is distinct from the non-positive
// glyph so readers can tell "no signal" apart from "negative/flat signal".
const (
	glyphForeignPositive     = "🔵"
	glyphInstitutionPositive = "🟠"
	glyphNonPositive         = "⚪"
	glyphUnknown             = "❓"

	divider = "--------------------------------"
)

// StockEntry pairs one selected stock with its reconciled flow outcome.
type StockEntry struct {
	Record listing.StockRecord
	Flow   flow.Outcome
}

// TopSector renders the single-top-sector report: the winning sector with
// its mean rate, the selected stocks with their confirmed flow figures, and
// the runner-up sectors when the ranking is deep enough.
func TopSector(ranking sector.Ranking, stocks []StockEntry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚀 <b>Top Sector: [%s]</b>\n", ranking[0].Label)
	fmt.Fprintf(&b, "Avg change: %.2f%%\n", ranking[0].MeanRate)
	b.WriteString(divider + "\n")

	for _, entry := range stocks {
		writeStockFlowLines(&b, entry)
	}

	b.WriteString(divider + "\n")
	if len(ranking) > 2 {
		fmt.Fprintf(&b, "🥈 2nd: %s | 🥉 3rd: %s", ranking[1].Label, ranking[2].Label)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Watchlist renders the fixed keyword watch-list report: one section per
// non-empty group with valuation figures per stock.
func Watchlist(selections []sector.GroupSelection, now time.Time) string {
	var b strings.Builder

	b.WriteString("🎯 <b>Sector Watchlist Report</b>\n")
	fmt.Fprintf(&b, "As of: %s\n\n", now.Format("01/02 15:04"))

	for _, sel := range selections {
		fmt.Fprintf(&b, "<b>[ %s ]</b>\n", sel.Label)
		for _, rec := range sel.Stocks {
			fmt.Fprintf(&b, "• <b>%s</b>\n", rec.DisplayName)
			fmt.Fprintf(&b, "  %s (%s%%) | MCap %.1f조\n",
				groupDigits(int64(rec.ClosePrice)), formatRate(rec), sector.ScaleTrillion(rec.MarketCap))
			fmt.Fprintf(&b, "  PER: %s | PBR: %s\n", formatRatio(rec.PER, 1), formatRatio(rec.PBR, 2))
		}
		b.WriteString(divider + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// Failure renders the single run-level failure notification.
func Failure(err error) string {
	return fmt.Sprintf("❌ Run failed: %v", err)
}

// writeStockFlowLines renders one stock of the top-sector report:
//
//	<b>Name</b> (06/19 flow)
//	71,500(2.15%) | 12억
//	🔵F:150 / ⚪I:-40
func writeStockFlowLines(b *strings.Builder, entry StockEntry) {
	rec := entry.Record

	fmt.Fprintf(b, "<b>%s</b> (%s flow)\n", rec.DisplayName, flowDate(entry.Flow))
	fmt.Fprintf(b, "%s(%s%%) | %d억\n",
		groupDigits(int64(rec.ClosePrice)), formatRate(rec), sector.ScaleHundredMillion(rec.TradedValue))

	if entry.Flow.Resolved() {
		obs := entry.Flow.Observation
		fmt.Fprintf(b, "%sF:%s / %sI:%s\n\n",
			foreignGlyph(entry.Flow), groupDigits(obs.ForeignNet),
			institutionGlyph(entry.Flow), groupDigits(obs.InstitutionNet))
	} else {
		fmt.Fprintf(b, "%sF:N/A / %sI:N/A\n\n", glyphUnknown, glyphUnknown)
	}
}

// flowDate renders the resolved observation date, or the sentinel for
// unavailable/failed outcomes.
func flowDate(o flow.Outcome) string {
	if !o.Resolved() {
		return "N/A"
	}
	return o.Observation.Date.Format("01/02")
}

func foreignGlyph(o flow.Outcome) string {
	if o.ForeignPositive() {
		return glyphForeignPositive
	}
	return glyphNonPositive
}

func institutionGlyph(o flow.Outcome) string {
	if o.InstitutionPositive() {
		return glyphInstitutionPositive
	}
	return glyphNonPositive
}

// formatRate renders the change rate, or the sentinel when the rate column
// was missing for this record.
func formatRate(rec listing.StockRecord) string {
	if !rec.RateValid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", rec.ChangeRate)
}

// formatRatio renders PER/PBR figures, showing N/A for non-positive values
// the provider uses as placeholders.
func formatRatio(v float64, decimals int) string {
	if v <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// groupDigits formats an integer with thousand separators.
func groupDigits(v int64) string {
	s := fmt.Sprintf("%d", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
