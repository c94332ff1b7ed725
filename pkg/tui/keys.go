package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all TUI key bindings.
type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Up      key.Binding
	Down    key.Binding
	PgUp    key.Binding
	PgDown  key.Binding
	Filter  key.Binding
	Reset   key.Binding
	Summary key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	NextTab: key.NewBinding(
		key.WithKeys("tab", "right", "l"),
		key.WithHelp("tab/→", "next category"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab", "left", "h"),
		key.WithHelp("shift+tab/←", "previous category"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	PgUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp", "page up"),
	),
	PgDown: key.NewBinding(
		key.WithKeys("pgdown", " "),
		key.WithHelp("PgDn", "page down"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Reset: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filter"),
	),
	Summary: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "summary"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// keyBarText renders the context-sensitive key hint string.
func keyBarText(filtering, summary, filtered bool) string {
	switch {
	case filtering:
		return keyStyle.Render("Enter") + keyDescStyle.Render(":apply") + "  " +
			keyStyle.Render("Esc") + keyDescStyle.Render(":cancel")
	case summary:
		return keyStyle.Render("Esc/s") + keyDescStyle.Render(":close") + "  " +
			keyStyle.Render("q") + keyDescStyle.Render(":quit")
	}

	text := keyStyle.Render("tab/←→") + keyDescStyle.Render(":category") + "  " +
		keyStyle.Render("↑↓") + keyDescStyle.Render(":scroll") + "  " +
		keyStyle.Render("/") + keyDescStyle.Render(":filter") + "  "
	if filtered {
		text += keyStyle.Render("x") + keyDescStyle.Render(":clear filter") + "  "
	}
	return text +
		keyStyle.Render("s") + keyDescStyle.Render(":summary") + "  " +
		keyStyle.Render("q") + keyDescStyle.Render(":quit")
}
