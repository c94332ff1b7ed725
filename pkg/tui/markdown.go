package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdownWidth renders markdown constrained to a specific column
// width. Falls back to the raw input if rendering fails.
func renderMarkdownWidth(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// Glamour adds trailing newlines; trim for inline use
	return strings.TrimRight(out, "\n")
}
