package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/fuzzpanel/pkg/results"
)

// summaryMarkdown describes the loaded results as a markdown document.
func summaryMarkdown(source, where string, all, shown *results.Grids) string {
	var b strings.Builder
	b.WriteString("# Fuzz results\n\n")
	if source != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", source)
	}
	if where != "" {
		fmt.Fprintf(&b, "Filter: `%s`\n\n", where)
	}

	b.WriteString("| Category | Rows | Shown |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, c := range results.Categories {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", c, len(all.Rows(c)), len(shown.Rows(c)))
	}
	fmt.Fprintf(&b, "| **total** | **%d** | **%d** |\n", all.Len(), shown.Len())

	var rows []results.Row
	for _, c := range results.Categories {
		rows = append(rows, all.Rows(c)...)
	}
	if cols := gridColumns(rows); len(cols) > 0 {
		b.WriteString("\nColumns: ")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "`%s`", c)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderSummary renders the summary as a centered overlay.
func (m Model) renderSummary() string {
	contentW := m.width - 8
	if contentW < 50 {
		contentW = 50
	}
	md := renderMarkdownWidth(summaryMarkdown(m.source, m.where, m.all, m.shown), contentW-4)
	box := overlayBorder.Width(contentW).Render(md)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
