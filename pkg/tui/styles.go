// Package tui implements a terminal viewer for classified fuzz results.
// It shows one tab per outcome category, renders the rows of the selected
// category as a scrollable grid and can narrow them with a filter expression.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/fuzzpanel/pkg/results"
)

// Category glyphs convey the outcome without relying on color alone.
const (
	GlyphTimeout   = "⧗"
	GlyphException = "✗"
	GlyphBadOutput = "≠"
	GlyphPassed    = "✓"
)

var (
	colorGreen   = lipgloss.Color("42")
	colorRed     = lipgloss.Color("196")
	colorYellow  = lipgloss.Color("214")
	colorBlue    = lipgloss.Color("39")
	colorCyan    = lipgloss.Color("51")
	colorDim     = lipgloss.Color("240")
	colorWhite   = lipgloss.Color("255")
	colorMagenta = lipgloss.Color("201")
)

// --- Header styles ---

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan).
	Padding(0, 1)

var sourceStyle = lipgloss.NewStyle().
	Foreground(colorWhite)

// --- Tab styles ---

var (
	tabStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Padding(0, 1)
)

// categoryColor is the accent of each category's tab and summary line.
var categoryColor = map[results.Category]lipgloss.Color{
	results.Timeout:   colorYellow,
	results.Exception: colorRed,
	results.BadOutput: colorMagenta,
	results.Passed:    colorGreen,
}

var categoryGlyph = map[results.Category]string{
	results.Timeout:   GlyphTimeout,
	results.Exception: GlyphException,
	results.BadOutput: GlyphBadOutput,
	results.Passed:    GlyphPassed,
}

// --- Grid styles ---

var (
	gridBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)

	gridHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	gridCellStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	gridEmptyStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true)
)

// --- Key bar styles ---

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	keyBarStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// --- Overlay ---

var overlayBorder = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorCyan).
	Padding(1, 2)

var errorStyle = lipgloss.NewStyle().
	Foreground(colorRed).
	Bold(true)
