package tui

import (
	"strings"

	"github.com/unowned-ai/learnlog/pkg/journal"
)

const (
	heatGlyph    = "■"
	paddingGlyph = " "
)

var weekdayLabels = [7]string{"Mon", "   ", "Wed", "   ", "Fri", "   ", "Sun"}

// RenderHeatmap draws h as seven weekday rows with one column per week and a
// month label row on top, followed by a legend. Cells outside the range are
// blank.
func RenderHeatmap(h journal.Heatmap) string {
	if len(h.Weeks) == 0 {
		return "No days in range.\n"
	}

	var b strings.Builder

	// Month labels above the first week of each month.
	header := make([]rune, 0, len(h.Weeks)*2)
	lastMonth := 0
	skip := 0
	for _, week := range h.Weeks {
		if skip > 0 {
			skip--
			continue
		}
		cell := week[0]
		for _, c := range week {
			if c.InRange {
				cell = c
				break
			}
		}
		if month := int(cell.Date.Month()); month != lastMonth {
			// A three-letter label plus a space covers two columns.
			header = append(header, []rune(cell.Date.Format("Jan"))...)
			header = append(header, ' ')
			skip = 1
			lastMonth = month
			continue
		}
		header = append(header, ' ', ' ')
	}
	b.WriteString("    " + strings.TrimRight(string(header), " ") + "\n")

	for day := 0; day < 7; day++ {
		b.WriteString(weekdayLabels[day] + " ")
		for _, week := range h.Weeks {
			cell := week[day]
			if !cell.InRange {
				b.WriteString(paddingGlyph + " ")
				continue
			}
			b.WriteString(heatStyles[cell.Level].Render(heatGlyph) + " ")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n    Less ")
	for _, lvl := range []journal.Level{journal.LevelNone, journal.LevelLow, journal.LevelMedium, journal.LevelHigh} {
		b.WriteString(heatStyles[lvl].Render(heatGlyph) + " ")
	}
	b.WriteString("More\n")

	return b.String()
}
