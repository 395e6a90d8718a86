package realtime

import (
	"sync"

	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/logging"
	"github.com/0097eo/chama-web/internal/model"
)

// Alert is a transient signal for a newly arrived notification, used to
// surface toast-style messages in the UI.
type Alert struct {
	Notification model.Notification
	Broadcast    bool
}

// Manager owns at most one push connection at a time, scoped to the
// active chama and the credential in use at subscribe time. Switching
// chamas or re-authenticating replaces the connection wholesale.
type Manager struct {
	cache *cache.Store
	wsURL string

	mu      sync.Mutex
	conn    *Conn
	chamaID string
	token   string
	status  Status

	statusCh chan Status
	alertCh  chan Alert
}

// NewManager creates a manager that reconciles events into store.
func NewManager(store *cache.Store, wsURL string) *Manager {
	return &Manager{
		cache:    store,
		wsURL:    wsURL,
		status:   StatusIdle,
		statusCh: make(chan Status, 8),
		alertCh:  make(chan Alert, 16),
	}
}

// StatusUpdates delivers lifecycle transitions for the active
// connection. The channel is buffered; stale transitions are dropped
// rather than blocking the connection goroutines.
func (m *Manager) StatusUpdates() <-chan Status {
	return m.statusCh
}

// Alerts delivers created and broadcast notifications as they arrive.
func (m *Manager) Alerts() <-chan Alert {
	return m.alertCh
}

// Status reports the current connection state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Acquire subscribes to chamaID's push channel with the given token.
// A connection already serving the same chama and token is kept; any
// other existing connection is torn down first so no events from the
// previous chama can reach the cache afterwards.
func (m *Manager) Acquire(chamaID, token string) {
	m.mu.Lock()
	if m.conn != nil && m.chamaID == chamaID && m.token == token {
		m.mu.Unlock()
		return
	}
	old := m.conn
	m.conn = nil
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if chamaID == "" || token == "" {
		m.setStatus(StatusIdle)
		return
	}

	// The chama scope is fixed at subscribe time: the handlers below
	// close over it, so events from this connection can only ever touch
	// this chama's entry even if the selection changes later.
	conn := NewConn(m.wsURL, token, chamaID,
		func(ev Event) { m.handleEvent(chamaID, ev) },
		func(s Status) { m.handleState(chamaID, s) },
	)

	m.mu.Lock()
	m.conn = conn
	m.chamaID = chamaID
	m.token = token
	m.mu.Unlock()

	conn.Start()
}

// Release drops the active connection, if any, and returns to idle.
func (m *Manager) Release() {
	m.mu.Lock()
	old := m.conn
	m.conn = nil
	m.chamaID = ""
	m.token = ""
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	m.setStatus(StatusIdle)
}

func (m *Manager) handleEvent(chamaID string, ev Event) {
	m.cache.Reconcile(chamaID, func(list []model.Notification) []model.Notification {
		return Apply(list, ev)
	})

	switch ev.Kind {
	case EventCreated:
		m.sendAlert(Alert{Notification: ev.Notification})
	case EventBroadcast:
		m.sendAlert(Alert{Notification: ev.Notification, Broadcast: true})
	}
}

func (m *Manager) handleState(chamaID string, s Status) {
	m.mu.Lock()
	stale := m.chamaID != chamaID
	if !stale {
		m.status = s
	}
	m.mu.Unlock()
	if stale {
		return
	}

	// Events may have been missed while disconnected, so the cached
	// list is suspect after every successful (re)connect. Marking it
	// stale forces a refetch on next read while events stream in on
	// top of whatever is already held.
	if s == StatusConnected {
		m.cache.Invalidate(chamaID)
	}

	select {
	case m.statusCh <- s:
	default:
		logging.Debug().Str("status", s.String()).Msg("dropping push status update")
	}
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()

	select {
	case m.statusCh <- s:
	default:
	}
}

func (m *Manager) sendAlert(a Alert) {
	select {
	case m.alertCh <- a:
	default:
		logging.Debug().Str("id", a.Notification.ID).Msg("dropping push alert")
	}
}
