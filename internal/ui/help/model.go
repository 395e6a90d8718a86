package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0097eo/chama-web/internal/keys"
	"github.com/0097eo/chama-web/internal/theme"
)

// section is a titled group of key/description pairs. Global bindings
// come from the key map; per-view action keys are listed literally
// since the views match them by rune.
type section struct {
	title   string
	entries [][2]string
}

// Model is the help overlay view.
type Model struct {
	sections []section
	width    int
	height   int
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		sections: buildSections(k),
		width:    width,
		height:   height,
	}
}

func buildSections(k *keys.KeyMap) []section {
	return []section{
		{"Navigation", entries(k.Up, k.Down, k.Select, k.Back, k.Quit)},
		{"Views", entries(
			k.Dashboard, k.Contributions, k.Loans, k.Meetings,
			k.Notifications, k.Chamas,
		)},
		{"Notifications", entries(
			k.MarkRead, k.MarkAllRead, k.Delete, k.ToggleUnread, k.Broadcast,
		)},
		{"Contributions", [][2]string{
			{"a", "record payment (officials)"},
			{"p", "pay via M-Pesa"},
			{"f", "defaulters report (officials)"},
			{"s", "send SMS reminder"},
		}},
		{"Loans", [][2]string{
			{"a", "apply for a loan"},
			{"p", "make a payment"},
			{"s", "repayment schedule"},
			{"y/n", "approve/reject (officials)"},
			{"x", "disburse (treasurer)"},
		}},
		{"Meetings", [][2]string{
			{"a", "schedule (officials)"},
			{"c", "check in"},
			{"v", "attendance"},
			{"n", "minutes (officials)"},
			{"x", "cancel (officials)"},
		}},
		{"General", entries(k.Command, k.Help, k.Refresh)},
	}
}

func entries(bindings ...key.Binding) [][2]string {
	out := make([][2]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, [2]string{h.Key, h.Desc})
	}
	return out
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay as a two-column grid of sections.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	cols := 2
	if m.width < 70 {
		cols = 1
	}
	colWidth := (m.width - 8) / cols

	rendered := make([]string, len(m.sections))
	for i, s := range m.sections {
		rendered[i] = m.renderSection(s, colWidth)
	}

	var rows []string
	for i := 0; i < len(rendered); i += cols {
		end := i + cols
		if end > len(rendered) {
			end = len(rendered)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered[i:end]...))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	content := lipgloss.JoinVertical(lipgloss.Left, title, body)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

func (m Model) renderSection(s section, width int) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue)
	keyStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	descStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var b strings.Builder
	b.WriteString(headerStyle.Render(s.title))
	b.WriteString("\n")
	for _, e := range s.entries {
		b.WriteString("  ")
		b.WriteString(keyStyle.Render(padKey(e[0])))
		b.WriteString("  ")
		b.WriteString(descStyle.Render(e[1]))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Width(width).
		MarginBottom(1).
		Render(b.String())
}

func padKey(k string) string {
	const keyCol = 6
	if len(k) >= keyCol {
		return k
	}
	return k + strings.Repeat(" ", keyCol-len(k))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
