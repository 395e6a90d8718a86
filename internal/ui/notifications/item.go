package notifications

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/0097eo/chama-web/internal/model"
	"github.com/0097eo/chama-web/internal/theme"
	"github.com/0097eo/chama-web/internal/ui"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Delegate renders notification rows.
type Delegate struct{}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification row: type badge, title, relative
// time on the first line, message preview on the second. Unread rows
// get a marker and bold title.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	n := it.Notification
	isSelected := index == m.Index()

	marker := " "
	if !n.Read {
		marker = theme.UnreadStyle.Render("●")
	}

	typeBadge := theme.NotificationTypeStyle(n.Type).Render(string(n.Type))
	when := theme.HelpStyle.Render(ui.RelativeTime(n.CreatedAt, time.Now()))

	title := n.Title
	if !n.Read {
		title = theme.UnreadStyle.Render(title)
	}

	width := m.Width() - 6
	if width < 10 {
		width = 10
	}
	preview := ui.Truncate(n.Message, width)

	line := fmt.Sprintf("%s %s %s  %s\n   %s", marker, typeBadge, title, when, preview)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
