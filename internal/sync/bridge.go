// Package sync bridges the background notification machinery (cache
// refreshes and the push channel) into the Bubble Tea runtime as
// messages.
package sync

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/realtime"
)

// CacheUpdatedMsg is a tea.Msg sent whenever a chama's cached
// notification list changes for any reason: fetch completion, a push
// event, or an optimistic mutation.
type CacheUpdatedMsg struct {
	ChamaID string
}

// PushStatusMsg is a tea.Msg carrying a push-channel lifecycle change.
type PushStatusMsg struct {
	Status realtime.Status
}

// PushAlertMsg is a tea.Msg for a newly arrived notification, used to
// flash a transient alert in the UI.
type PushAlertMsg struct {
	Alert realtime.Alert
}

// Bridge subscribes to the store and manager channels and re-emits
// them as Bubble Tea messages. Each Wait command delivers one message;
// the app model re-issues the command after handling it to keep
// listening, same as any other Bubble Tea subscription.
type Bridge struct {
	store *cache.Store
	mgr   *realtime.Manager
}

// NewBridge creates a bridge over the given store and manager.
func NewBridge(store *cache.Store, mgr *realtime.Manager) *Bridge {
	return &Bridge{store: store, mgr: mgr}
}

// Start returns the initial batch of subscription commands.
func (b *Bridge) Start() tea.Cmd {
	return tea.Batch(
		b.WaitForCacheUpdate(),
		b.WaitForPushStatus(),
		b.WaitForPushAlert(),
	)
}

// WaitForCacheUpdate returns a tea.Cmd that blocks until the next
// cache change notification.
func (b *Bridge) WaitForCacheUpdate() tea.Cmd {
	return func() tea.Msg {
		chamaID, ok := <-b.store.Updates()
		if !ok {
			return nil
		}
		return CacheUpdatedMsg{ChamaID: chamaID}
	}
}

// WaitForPushStatus returns a tea.Cmd that blocks until the next
// push-channel state transition.
func (b *Bridge) WaitForPushStatus() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-b.mgr.StatusUpdates()
		if !ok {
			return nil
		}
		return PushStatusMsg{Status: s}
	}
}

// WaitForPushAlert returns a tea.Cmd that blocks until the next
// created or broadcast notification arrives.
func (b *Bridge) WaitForPushAlert() tea.Cmd {
	return func() tea.Msg {
		a, ok := <-b.mgr.Alerts()
		if !ok {
			return nil
		}
		return PushAlertMsg{Alert: a}
	}
}
