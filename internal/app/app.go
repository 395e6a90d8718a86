// Package app hosts the root Bubble Tea model: view routing, the
// global key handling, and the lifecycle of the per-chama push
// subscription.
package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/credential"
	"github.com/0097eo/chama-web/internal/keys"
	"github.com/0097eo/chama-web/internal/logging"
	"github.com/0097eo/chama-web/internal/model"
	"github.com/0097eo/chama-web/internal/notify"
	"github.com/0097eo/chama-web/internal/realtime"
	appsync "github.com/0097eo/chama-web/internal/sync"
	"github.com/0097eo/chama-web/internal/theme"
	"github.com/0097eo/chama-web/internal/ui"
	"github.com/0097eo/chama-web/internal/ui/broadcast"
	"github.com/0097eo/chama-web/internal/ui/chamalist"
	"github.com/0097eo/chama-web/internal/ui/command"
	"github.com/0097eo/chama-web/internal/ui/contributions"
	"github.com/0097eo/chama-web/internal/ui/dashboard"
	helpview "github.com/0097eo/chama-web/internal/ui/help"
	"github.com/0097eo/chama-web/internal/ui/loans"
	"github.com/0097eo/chama-web/internal/ui/login"
	"github.com/0097eo/chama-web/internal/ui/meetings"
	"github.com/0097eo/chama-web/internal/ui/notifications"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewChamas
	ViewDashboard
	ViewContributions
	ViewLoans
	ViewMeetings
	ViewNotifications
	ViewBroadcast
	ViewHelp
	ViewCommand
)

// clearAlertMsg dismisses the transient notification toast.
type clearAlertMsg struct{}

const alertDuration = 5 * time.Second

// Model is the root Bubble Tea model.
type Model struct {
	cfg     *model.AppConfig
	client  *api.Client
	store   *cache.Store
	manager *realtime.Manager
	service *notify.Service
	bridge  *appsync.Bridge
	keys    *keys.KeyMap
	layout  ui.Layout

	currentView  ViewState
	previousView ViewState

	user        *model.User
	token       string
	activeChama *model.Chama
	membership  model.Membership

	pushStatus       realtime.Status
	alertText        string
	authErrorMessage string

	loginView         login.Model
	chamaView         chamalist.Model
	dashboardView     dashboard.Model
	contributionsView contributions.Model
	loansView         loans.Model
	meetingsView      meetings.Model
	notificationsView notifications.Model
	broadcastView     broadcast.Model
	helpView          helpview.Model
	commandView       command.Model

	ready bool
}

// New creates the root model. user and token are non-empty when a
// stored session was validated at startup; otherwise the app starts at
// the login screen.
func New(cfg *model.AppConfig, client *api.Client, store *cache.Store, manager *realtime.Manager, user *model.User, token string) Model {
	k := keys.DefaultKeyMap()
	service := notify.NewService(client, store)

	initial := ViewLogin
	if user != nil {
		initial = ViewChamas
	}

	return Model{
		cfg:     cfg,
		client:  client,
		store:   store,
		manager: manager,
		service: service,
		bridge:  appsync.NewBridge(store, manager),
		keys:    k,

		currentView: initial,
		user:        user,
		token:       token,
		pushStatus:  realtime.StatusIdle,

		loginView:         login.New(client, 80, 24),
		chamaView:         chamalist.New(client, k, cfg.ActiveChamaID, 80, 24),
		dashboardView:     dashboard.New(client, k, 80, 24),
		contributionsView: contributions.New(client, k, 80, 24),
		loansView:         loans.New(client, k, 80, 24),
		meetingsView:      meetings.New(client, k, 80, 24),
		notificationsView: notifications.New(store, service, k, 80, 24),
		helpView:          helpview.New(k, 80, 24),
		commandView:       command.New(80, 24),
	}
}

// Init starts the subscription bridge and the initial view.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.bridge.Start()}
	if m.currentView == ViewLogin {
		cmds = append(cmds, m.loginView.Init())
	} else {
		cmds = append(cmds, m.chamaView.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.chamaView.SetSize(w, h)
		m.dashboardView.SetSize(w, h)
		m.contributionsView.SetSize(w, h)
		m.loansView.SetSize(w, h)
		m.meetingsView.SetSize(w, h)
		m.notificationsView.SetSize(w, h)
		m.broadcastView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to the active view so huh forms can lay out.
		return m.updateActiveView(msg)

	case tea.FocusMsg:
		// The terminal regained focus; cached data may be arbitrarily
		// old, so mark the active chama stale. The next read refetches.
		if m.activeChama != nil {
			m.store.Invalidate(m.activeChama.ID)
			return m, m.notificationsView.Reload()
		}
		return m, nil

	case login.LoggedInMsg:
		m.user = &msg.User
		m.token = msg.Token
		if err := credential.Set(credential.KeySessionToken, msg.Token); err != nil {
			logging.Warn().Err(err).Msg("could not persist session token")
		}
		m.currentView = ViewChamas
		return m, m.chamaView.Init()

	case chamalist.ChamaSelectedMsg:
		return m.selectChama(msg.Chama)

	case appsync.CacheUpdatedMsg:
		var cmd tea.Cmd
		if m.activeChama != nil && msg.ChamaID == m.activeChama.ID {
			cmd = m.notificationsView.Reload()
		}
		return m, tea.Batch(cmd, m.bridge.WaitForCacheUpdate())

	case appsync.PushStatusMsg:
		m.pushStatus = msg.Status
		switch msg.Status {
		case realtime.StatusAuthError:
			m.authErrorMessage = "Realtime authentication failed. Log in again to restore live updates."
		case realtime.StatusConnected:
			m.authErrorMessage = ""
		}
		return m, m.bridge.WaitForPushStatus()

	case appsync.PushAlertMsg:
		n := msg.Alert.Notification
		if msg.Alert.Broadcast {
			m.alertText = fmt.Sprintf("Announcement: %s", n.Title)
		} else {
			m.alertText = fmt.Sprintf("New: %s", n.Title)
		}
		return m, tea.Batch(
			m.bridge.WaitForPushAlert(),
			tea.Tick(alertDuration, func(time.Time) tea.Msg { return clearAlertMsg{} }),
		)

	case clearAlertMsg:
		m.alertText = ""
		return m, nil

	case notifications.OpenBroadcastMsg:
		if m.activeChama == nil {
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewBroadcast
		m.broadcastView = broadcast.New(m.service, m.activeChama.ID,
			m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, m.broadcastView.Init()

	case broadcast.DoneMsg:
		m.currentView = ViewNotifications
		return m, m.notificationsView.Reload()

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case tea.KeyMsg:
		if handled, mm, cmd := m.handleGlobalKeys(msg); handled {
			return mm, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of the active
// view. Views with focused text inputs (login, broadcast, command)
// only see ctrl+c and esc here.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.manager.Release()
		return true, m, tea.Quit
	}

	if m.inputFocused() {
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		if m.currentView != ViewCommand {
			m.manager.Release()
			return true, m, tea.Quit
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case ":":
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return true, m, m.commandView.Focus()

	case "esc":
		switch m.currentView {
		case ViewHelp, ViewCommand:
			m.currentView = m.previousView
			return true, m, nil
		}

	case "g":
		if m.user != nil && m.currentView != ViewChamas {
			m.previousView = m.currentView
			m.currentView = ViewChamas
			return true, m, m.chamaView.Init()
		}
	}

	if m.activeChama != nil {
		switch msg.String() {
		case "1":
			m.currentView = ViewDashboard
			return true, m, m.dashboardView.SetChama(m.activeChama.ID)
		case "2":
			m.currentView = ViewContributions
			return true, m, m.contributionsView.SetChama(m.activeChama.ID, m.membership)
		case "3":
			m.currentView = ViewLoans
			return true, m, m.loansView.SetChama(m.activeChama.ID, m.membership)
		case "4":
			m.currentView = ViewMeetings
			return true, m, m.meetingsView.SetChama(m.activeChama.ID, m.membership)
		case "5":
			m.currentView = ViewNotifications
			return true, m, m.notificationsView.Reload()
		}
	}

	return false, m, nil
}

// inputFocused reports whether the active view owns a text input that
// should receive digits and letters instead of the global keymap.
func (m Model) inputFocused() bool {
	switch m.currentView {
	case ViewLogin, ViewBroadcast, ViewCommand:
		return true
	case ViewContributions, ViewLoans, ViewMeetings, ViewChamas:
		// These views open huh forms; while a form is up they consume
		// all keys via updateActiveView, but their list modes rely on
		// the same letters the global map skips, so they handle their
		// own keys first and anything unhandled falls through here.
		return false
	}
	return false
}

// selectChama makes a chama active: resolves the caller's membership,
// rebinds the push subscription, persists the selection, and loads the
// per-chama views.
func (m Model) selectChama(chama model.Chama) (tea.Model, tea.Cmd) {
	c := chama
	m.activeChama = &c

	membership, ok := c.MembershipFor(m.user.ID)
	if !ok {
		logging.Warn().Str("chama", c.ID).Msg("no membership in selected chama")
	}
	m.membership = membership

	m.cfg.ActiveChamaID = c.ID
	if err := model.SaveConfig(model.DefaultConfigPath(), m.cfg); err != nil {
		logging.Warn().Err(err).Msg("could not persist active chama")
	}

	// The previous chama's connection (if any) is replaced wholesale;
	// events for the old room can no longer reach the cache.
	m.manager.Acquire(c.ID, m.token)

	m.currentView = ViewDashboard
	return m, tea.Batch(
		m.dashboardView.SetChama(c.ID),
		m.notificationsView.SetChama(c.ID, membership.CanManage()),
		m.contributionsView.SetChama(c.ID, membership),
		m.loansView.SetChama(c.ID, membership),
		m.meetingsView.SetChama(c.ID, membership),
	)
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "quit", "q":
		m.manager.Release()
		return m, tea.Quit
	case "chamas":
		m.currentView = ViewChamas
		return m, m.chamaView.Init()
	case "logout":
		return m.logout()
	}

	if m.activeChama == nil {
		return m, nil
	}

	switch cmd {
	case "dashboard":
		m.currentView = ViewDashboard
		return m, m.dashboardView.SetChama(m.activeChama.ID)
	case "contributions":
		m.currentView = ViewContributions
		return m, m.contributionsView.SetChama(m.activeChama.ID, m.membership)
	case "loans":
		m.currentView = ViewLoans
		return m, m.loansView.SetChama(m.activeChama.ID, m.membership)
	case "meetings":
		m.currentView = ViewMeetings
		return m, m.meetingsView.SetChama(m.activeChama.ID, m.membership)
	case "notifications":
		m.currentView = ViewNotifications
		return m, m.notificationsView.Reload()
	case "broadcast":
		if m.membership.CanManage() {
			m.previousView = m.currentView
			m.currentView = ViewBroadcast
			m.broadcastView = broadcast.New(m.service, m.activeChama.ID,
				m.layout.ContentWidth(), m.layout.ContentHeight())
			return m, m.broadcastView.Init()
		}
	case "refresh":
		m.store.Refetch(m.activeChama.ID)
		return m, m.notificationsView.Reload()
	}
	return m, nil
}

// logout drops the session and returns to the login screen.
func (m Model) logout() (tea.Model, tea.Cmd) {
	if err := credential.Delete(credential.KeySessionToken); err != nil {
		logging.Debug().Err(err).Msg("could not delete stored token")
	}
	m.manager.Release()
	if m.activeChama != nil {
		m.store.Evict(m.activeChama.ID)
	}
	m.user = nil
	m.token = ""
	m.activeChama = nil
	m.membership = model.Membership{}
	m.client.SetToken("")
	m.authErrorMessage = ""

	m.currentView = ViewLogin
	m.loginView = login.New(m.client, m.layout.ContentWidth(), m.layout.ContentHeight())
	return m, m.loginView.Init()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewChamas:
		m.chamaView, cmd = m.chamaView.Update(msg)
	case ViewDashboard:
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	case ViewContributions:
		m.contributionsView, cmd = m.contributionsView.Update(msg)
	case ViewLoans:
		m.loansView, cmd = m.loansView.Update(msg)
	case ViewMeetings:
		m.meetingsView, cmd = m.meetingsView.Update(msg)
	case ViewNotifications:
		m.notificationsView, cmd = m.notificationsView.Update(msg)
	case ViewBroadcast:
		m.broadcastView, cmd = m.broadcastView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Chama"
	if m.activeChama != nil {
		title = "Chama · " + m.activeChama.Name
	}

	unread := 0
	if m.activeChama != nil {
		unread = m.store.UnreadCount(m.activeChama.ID)
	}

	header := m.layout.RenderHeader(title, unread, m.connLabel())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// connLabel is the push-channel indicator for the header.
func (m Model) connLabel() string {
	if m.user == nil || m.activeChama == nil {
		return ""
	}
	switch m.pushStatus {
	case realtime.StatusConnected:
		return theme.ConnectionStyle(true).Render("● live")
	case realtime.StatusConnecting:
		return theme.ConnectionStyle(false).Render("○ connecting")
	case realtime.StatusAuthError:
		return theme.ConnectionStyle(false).Render("✗ auth")
	default:
		return theme.ConnectionStyle(false).Render("○ offline")
	}
}

// renderContent returns the rendered string for the active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewChamas:
		return m.chamaView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewContributions:
		return m.contributionsView.View()
	case ViewLoans:
		return m.loansView.View()
	case ViewMeetings:
		return m.meetingsView.View()
	case ViewNotifications:
		return m.notificationsView.View()
	case ViewBroadcast:
		return m.broadcastView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// statusLine returns the status bar content: a pending alert or auth
// problem takes precedence over key hints.
func (m Model) statusLine() string {
	if m.alertText != "" {
		return m.alertText
	}
	if m.authErrorMessage != "" {
		return m.authErrorMessage
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+c quit"
	case ViewChamas:
		return "enter select | a create | r refresh | ? help"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close | enter execute | tab complete"
	case ViewBroadcast:
		return "enter send | esc cancel"
	case ViewNotifications:
		return "m read | M all read | d delete | u unread only | b broadcast | 1-5 views"
	default:
		return "q quit | ? help | : command | g chamas | 1-5 views"
	}
}
