package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/model"
)

func note(id string, read bool) model.Notification {
	return model.Notification{ID: id, Title: "Notification " + id, Read: read, CreatedAt: time.Now()}
}

func TestHandleEventReconcilesIntoSubscribedChama(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-1", []model.Notification{note("n-1", false)})
	store.SetList("chama-2", []model.Notification{note("n-9", false)})

	m := NewManager(store, "ws://localhost:3000/socket")

	m.handleEvent("chama-1", Event{Kind: EventCreated, Notification: note("n-2", false)})

	res := store.List("chama-1")
	require.Len(t, res.Notifications, 2)
	assert.Equal(t, "n-2", res.Notifications[0].ID)

	// The other chama's entry is untouched.
	other := store.List("chama-2")
	require.Len(t, other.Notifications, 1)
	assert.Equal(t, "n-9", other.Notifications[0].ID)
}

func TestHandleEventEmitsAlerts(t *testing.T) {
	store := cache.New(cache.Config{})
	m := NewManager(store, "ws://localhost:3000/socket")

	m.handleEvent("chama-1", Event{Kind: EventCreated, Notification: note("n-1", false)})
	m.handleEvent("chama-1", Event{Kind: EventBroadcast, Notification: note("b-1", false)})
	m.handleEvent("chama-1", Event{Kind: EventRead, NotificationID: "n-1"})

	a := <-m.Alerts()
	assert.Equal(t, "n-1", a.Notification.ID)
	assert.False(t, a.Broadcast)

	a = <-m.Alerts()
	assert.Equal(t, "b-1", a.Notification.ID)
	assert.True(t, a.Broadcast)

	// Read events carry no alert.
	select {
	case a = <-m.Alerts():
		t.Fatalf("unexpected alert for %s", a.Notification.ID)
	default:
	}
}

func TestHandleStateIgnoresStaleChama(t *testing.T) {
	store := cache.New(cache.Config{})
	m := NewManager(store, "ws://localhost:3000/socket")

	m.mu.Lock()
	m.chamaID = "chama-2"
	m.mu.Unlock()

	m.handleState("chama-1", StatusConnected)
	assert.Equal(t, StatusIdle, m.Status())

	select {
	case s := <-m.StatusUpdates():
		t.Fatalf("unexpected status update %v", s)
	default:
	}

	m.handleState("chama-2", StatusConnected)
	assert.Equal(t, StatusConnected, m.Status())
	assert.Equal(t, StatusConnected, <-m.StatusUpdates())
}

func TestHandleStateInvalidatesOnConnect(t *testing.T) {
	fetched := make(chan string, 1)
	store := cache.New(cache.Config{
		Fetch: func(ctx context.Context, chamaID string) ([]model.Notification, error) {
			fetched <- chamaID
			return []model.Notification{note("n-1", false)}, nil
		},
	})
	store.SetList("chama-1", []model.Notification{note("n-0", false)})

	m := NewManager(store, "ws://localhost:3000/socket")
	m.mu.Lock()
	m.chamaID = "chama-1"
	m.mu.Unlock()

	// Fresh entry: a read before the reconnect does not refetch.
	store.List("chama-1")
	select {
	case id := <-fetched:
		t.Fatalf("unexpected fetch for %s", id)
	default:
	}

	m.handleState("chama-1", StatusConnected)

	// The reconnect marked the entry stale, so the next read revalidates.
	store.List("chama-1")
	select {
	case id := <-fetched:
		assert.Equal(t, "chama-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a refetch after reconnect")
	}
}

func TestAcquireIsIdempotentForSameScope(t *testing.T) {
	store := cache.New(cache.Config{})
	m := NewManager(store, "ws://localhost:1/socket")

	m.Acquire("chama-1", "token-a")
	m.mu.Lock()
	first := m.conn
	m.mu.Unlock()
	require.NotNil(t, first)

	m.Acquire("chama-1", "token-a")
	m.mu.Lock()
	second := m.conn
	m.mu.Unlock()
	assert.Same(t, first, second)

	m.Release()
}

func TestAcquireReplacesConnOnScopeChange(t *testing.T) {
	store := cache.New(cache.Config{})
	m := NewManager(store, "ws://localhost:1/socket")

	m.Acquire("chama-1", "token-a")
	m.mu.Lock()
	first := m.conn
	m.mu.Unlock()

	m.Acquire("chama-2", "token-a")
	m.mu.Lock()
	second := m.conn
	chamaID := m.chamaID
	m.mu.Unlock()

	assert.NotSame(t, first, second)
	assert.Equal(t, "chama-2", chamaID)

	m.Release()
	assert.Equal(t, StatusIdle, m.Status())
}

func TestAcquireWithoutCredentialsStaysIdle(t *testing.T) {
	store := cache.New(cache.Config{})
	m := NewManager(store, "ws://localhost:1/socket")

	m.Acquire("chama-1", "")
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	assert.Nil(t, conn)
	assert.Equal(t, StatusIdle, m.Status())
}
