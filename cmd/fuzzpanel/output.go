package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/fuzzpanel/pkg/results"
)

const maxColumnWidth = 48

var categoryColors = map[results.Category]*color.Color{
	results.Timeout:   color.New(color.FgYellow, color.Bold),
	results.Exception: color.New(color.FgRed, color.Bold),
	results.BadOutput: color.New(color.FgMagenta, color.Bold),
	results.Passed:    color.New(color.FgGreen, color.Bold),
}

var (
	headerColor = color.New(color.FgWhite, color.Underline)
	dimColor    = color.New(color.FgHiBlack)
)

func postedLabel(command string) string {
	return color.New(color.FgCyan, color.Bold).Sprintf("→ %s", command)
}

// printGrids writes every non-empty category as an aligned table.
func printGrids(w io.Writer, g *results.Grids) {
	counts := g.Counts()
	var summary []string
	for _, c := range results.Categories {
		summary = append(summary, categoryColors[c].Sprintf("%s %d", c, counts[c]))
	}
	fmt.Fprintln(w, strings.Join(summary, "  "))

	for _, c := range results.Categories {
		rows := g.Rows(c)
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, categoryColors[c].Sprint(string(c)))
		printTable(w, rows)
	}
}

func printTable(w io.Writer, rows []results.Row) {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range rows {
		for _, label := range r.Labels() {
			if !seen[label] {
				seen[label] = true
				cols = append(cols, label)
			}
		}
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
		for _, r := range rows {
			text, _ := r.Get(c)
			if n := runewidth.StringWidth(text); n > widths[i] {
				widths[i] = n
			}
		}
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = runewidth.FillRight(c, widths[i])
	}
	fmt.Fprintln(w, headerColor.Sprint(strings.Join(header, "  ")))

	for _, r := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			text, ok := r.Get(c)
			if !ok {
				text = "-"
			}
			text = runewidth.Truncate(strings.ReplaceAll(text, "\n", " "), widths[i], "…")
			cell := runewidth.FillRight(text, widths[i])
			if !ok || text == results.NoInput || text == results.UndefinedOutput {
				cell = dimColor.Sprint(cell)
			}
			line[i] = cell
		}
		fmt.Fprintln(w, strings.Join(line, "  "))
	}
}
