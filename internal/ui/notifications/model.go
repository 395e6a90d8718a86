package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/keys"
	"github.com/0097eo/chama-web/internal/notify"
	"github.com/0097eo/chama-web/internal/theme"
)

// OpenBroadcastMsg asks the app to open the broadcast composer.
type OpenBroadcastMsg struct{}

// mutationDoneMsg carries the outcome of a mark-read/delete request.
type mutationDoneMsg struct {
	err error
}

const mutationTimeout = 30 * time.Second

// Model is the notifications view. It renders whatever the cache holds
// for the active chama; the app model calls Reload whenever the cached
// list changes, so push events and optimistic mutations show up without
// any fetch from here.
type Model struct {
	list    list.Model
	store   *cache.Store
	service *notify.Service
	keys    *keys.KeyMap

	chamaID    string
	canManage  bool
	unreadOnly bool
	result     cache.Result
	statusMsg  string

	width, height int
}

// New creates a notifications view over the given store and service.
func New(store *cache.Store, service *notify.Service, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:    l,
		store:   store,
		service: service,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetChama switches the view to a different chama and reloads.
func (m *Model) SetChama(chamaID string, canManage bool) tea.Cmd {
	m.chamaID = chamaID
	m.canManage = canManage
	m.unreadOnly = false
	m.statusMsg = ""
	return m.Reload()
}

// Reload re-reads the cached list for the active chama. Reading may
// kick off a background fetch if the entry is missing or stale.
func (m *Model) Reload() tea.Cmd {
	if m.chamaID == "" {
		return nil
	}
	m.result = m.store.List(m.chamaID)

	items := make([]list.Item, 0, len(m.result.Notifications))
	for _, n := range m.result.Notifications {
		if m.unreadOnly && n.Read {
			continue
		}
		items = append(items, Item{Notification: n})
	}
	return m.list.SetItems(items)
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mutationDoneMsg:
		if msg.err != nil {
			if notify.IsValidationError(msg.err) {
				m.statusMsg = msg.err.Error()
			} else {
				m.statusMsg = fmt.Sprintf("Request failed: %v", msg.err)
			}
		} else {
			m.statusMsg = ""
		}
		return m, m.Reload()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.MarkRead):
		item, ok := m.list.SelectedItem().(Item)
		if !ok || item.Notification.Read {
			return m, nil
		}
		cmd := m.markRead(item.Notification.ID)
		return m, tea.Batch(m.Reload(), cmd)

	case key.Matches(msg, m.keys.MarkAllRead):
		cmd := m.markAllRead()
		return m, tea.Batch(m.Reload(), cmd)

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(Item)
		if !ok {
			return m, nil
		}
		cmd := m.deleteOne(item.Notification.ID)
		return m, tea.Batch(m.Reload(), cmd)

	case key.Matches(msg, m.keys.ToggleUnread):
		m.unreadOnly = !m.unreadOnly
		return m, m.Reload()

	case key.Matches(msg, m.keys.Broadcast):
		if !m.canManage {
			m.statusMsg = "Only officials can send broadcasts."
			return m, nil
		}
		return m, func() tea.Msg { return OpenBroadcastMsg{} }

	case key.Matches(msg, m.keys.Refresh):
		m.store.Refetch(m.chamaID)
		return m, m.Reload()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// markRead applies optimistically via the service; the cache change is
// visible on the very next Reload, before the request returns.
func (m Model) markRead(id string) tea.Cmd {
	service := m.service
	chamaID := m.chamaID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationDoneMsg{err: service.MarkRead(ctx, chamaID, id)}
	}
}

func (m Model) markAllRead() tea.Cmd {
	service := m.service
	chamaID := m.chamaID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationDoneMsg{err: service.MarkAllRead(ctx, chamaID)}
	}
}

func (m Model) deleteOne(id string) tea.Cmd {
	service := m.service
	chamaID := m.chamaID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationDoneMsg{err: service.Delete(ctx, chamaID, id)}
	}
}

// View renders the notifications view.
func (m Model) View() string {
	if m.result.Loading && len(m.result.Notifications) == 0 {
		return m.centered("Loading notifications...")
	}

	if m.result.Err != nil && len(m.result.Notifications) == 0 {
		return m.centered(
			theme.ErrorStyle.Render("Could not load notifications.") +
				"\n" + m.result.Err.Error() +
				"\n\n" + theme.HelpStyle.Render("Press r to retry."),
		)
	}

	if len(m.list.Items()) == 0 {
		if m.unreadOnly {
			return m.centered("No unread notifications.\nPress u to show all.")
		}
		return m.centered("No notifications yet.")
	}

	view := m.list.View()

	var footer string
	if m.result.Err != nil {
		footer = theme.ErrorStyle.Render("Showing cached data; last refresh failed.")
	}
	if m.statusMsg != "" {
		if footer != "" {
			footer += "  "
		}
		footer += lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true).
			Render(m.statusMsg)
	}
	if footer != "" {
		return lipgloss.JoinVertical(lipgloss.Left, view, footer)
	}
	return view
}

func (m Model) centered(text string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
