package tui

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/fuzzpanel/pkg/results"
)

// maxCellWidth caps a column so one long value cannot push the rest of the
// grid off screen.
const maxCellWidth = 40

// gridColumns returns the union of the row labels in first-seen order.
func gridColumns(rows []results.Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for _, label := range r.Labels() {
			if !seen[label] {
				seen[label] = true
				cols = append(cols, label)
			}
		}
	}
	return cols
}

// renderGrid lays rows out as an aligned text table with a leading row
// number column. Widths are measured in terminal cells.
func renderGrid(rows []results.Row) string {
	if len(rows) == 0 {
		return gridEmptyStyle.Render("no rows in this category")
	}

	cols := gridColumns(rows)
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, r := range rows {
		for i, c := range cols {
			text, _ := r.Get(c)
			if w := runewidth.StringWidth(text); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}
	numW := len(strconv.Itoa(len(rows)))

	var b strings.Builder
	header := []string{runewidth.FillRight("#", numW)}
	rule := []string{strings.Repeat("─", numW)}
	for i, c := range cols {
		header = append(header, fitCell(c, widths[i]))
		rule = append(rule, strings.Repeat("─", widths[i]))
	}
	b.WriteString(gridHeaderStyle.Render(strings.Join(header, "  ")))
	b.WriteString("\n")
	b.WriteString(keyDescStyle.Render(strings.Join(rule, "  ")))

	for n, r := range rows {
		line := []string{runewidth.FillLeft(strconv.Itoa(n+1), numW)}
		for i, c := range cols {
			text, _ := r.Get(c)
			line = append(line, fitCell(text, widths[i]))
		}
		b.WriteString("\n")
		b.WriteString(gridCellStyle.Render(strings.Join(line, "  ")))
	}
	return b.String()
}

// fitCell truncates or pads s to exactly w cells.
func fitCell(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}
