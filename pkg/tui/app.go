package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/fuzzpanel/pkg/results"
)

// Config holds the parameters needed to launch the TUI.
type Config struct {
	// Source names where the results came from, shown in the header.
	Source string
	Grids  *results.Grids
	// Where is an optional initial filter expression.
	Where string
}

// Model is the top-level Bubble Tea model of the results viewer.
type Model struct {
	source string
	all    *results.Grids
	shown  *results.Grids

	tab      int
	viewport viewport.Model
	filter   filterBar
	where    string
	errText  string
	summary  bool

	width  int
	height int
}

// New builds the model. An invalid initial filter is an error.
func New(cfg Config) (Model, error) {
	all := cfg.Grids
	if all == nil {
		all = &results.Grids{}
	}
	m := Model{
		source:   cfg.Source,
		all:      all,
		shown:    all,
		filter:   newFilterBar(),
		viewport: viewport.New(76, 17),
	}
	if cfg.Where != "" {
		if err := m.applyFilter(cfg.Where); err != nil {
			return Model{}, err
		}
	}
	for i, c := range results.Categories {
		if len(m.shown.Rows(c)) > 0 {
			m.tab = i
			break
		}
	}
	m.layout(80, 24)
	return m, nil
}

// Run starts the TUI on the alternate screen.
func Run(cfg Config) error {
	m, err := New(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Category is the category of the selected tab.
func (m Model) Category() results.Category {
	return results.Categories[m.tab]
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filter.active {
		closed, committed, cmd := m.filter.Update(msg)
		if closed && committed {
			if err := m.applyFilter(m.filter.Value()); err != nil {
				m.errText = err.Error()
			} else {
				m.errText = ""
				m.refresh()
			}
		}
		return m, cmd
	}

	if m.summary {
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case msg.String() == "esc", key.Matches(msg, keys.Summary):
			m.summary = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.NextTab):
		m.tab = (m.tab + 1) % len(results.Categories)
		m.refresh()
	case key.Matches(msg, keys.PrevTab):
		m.tab = (m.tab + len(results.Categories) - 1) % len(results.Categories)
		m.refresh()
	case key.Matches(msg, keys.Up):
		m.viewport.SetYOffset(m.viewport.YOffset - 1)
	case key.Matches(msg, keys.Down):
		m.viewport.SetYOffset(m.viewport.YOffset + 1)
	case key.Matches(msg, keys.PgUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, keys.PgDown):
		m.viewport.HalfViewDown()
	case key.Matches(msg, keys.Filter):
		m.filter.Open(m.where)
		return m, nil
	case key.Matches(msg, keys.Reset):
		_ = m.applyFilter("")
		m.errText = ""
		m.refresh()
	case key.Matches(msg, keys.Summary):
		m.summary = true
	}
	return m, nil
}

// applyFilter narrows the shown rows to those matching expr. An empty
// expression shows everything.
func (m *Model) applyFilter(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		m.where = ""
		m.shown = m.all
		return nil
	}
	g, err := results.Filter(m.all, expr)
	if err != nil {
		return err
	}
	m.where = expr
	m.shown = g
	return nil
}

// layout resizes the grid viewport to the terminal.
func (m *Model) layout(width, height int) {
	m.width = width
	m.height = height

	// header, tabs, grid border, filter line, key bar
	contentW := width - 4
	contentH := height - 7
	if contentW < 1 {
		contentW = 1
	}
	if contentH < 1 {
		contentH = 1
	}
	m.viewport.Width = contentW
	m.viewport.Height = contentH
	m.refresh()
}

// refresh re-renders the selected category into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(renderGrid(m.shown.Rows(m.Category())))
	m.viewport.GotoTop()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.summary {
		return m.renderSummary()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(gridBorder.Width(m.viewport.Width + 2).Render(m.viewport.View()))
	b.WriteString("\n")
	switch {
	case m.filter.active:
		b.WriteString(m.filter.View())
	case m.errText != "":
		b.WriteString(errorStyle.Render("filter: " + m.errText))
	case m.where != "":
		b.WriteString(keyDescStyle.Render("filter: " + m.where))
	}
	b.WriteString("\n")
	b.WriteString(keyBarStyle.Render(keyBarText(m.filter.active, m.summary, m.where != "")))
	return b.String()
}

// renderHeader builds the top header line.
func (m Model) renderHeader() string {
	left := headerStyle.Render("fuzzpanel") + " " + sourceStyle.Render(m.source)
	right := fmt.Sprintf("%d/%d rows", m.shown.Len(), m.all.Len())

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}

// renderTabs builds the category tab strip.
func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(results.Categories))
	for i, c := range results.Categories {
		label := fmt.Sprintf("%s %s (%d)", categoryGlyph[c], c, len(m.shown.Rows(c)))
		if i == m.tab {
			tabs = append(tabs, activeTabStyle.Foreground(categoryColor[c]).Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
