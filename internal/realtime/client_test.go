package realtime_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket"
}

// collectConn wires a Conn to channels and cleans it up with the test.
func collectConn(t *testing.T, url, token, chamaID string) (*realtime.Conn, chan realtime.Event, chan realtime.Status) {
	t.Helper()
	events := make(chan realtime.Event, 16)
	states := make(chan realtime.Status, 16)
	conn := realtime.NewConn(url, token, chamaID,
		func(ev realtime.Event) { events <- ev },
		func(s realtime.Status) { states <- s },
	)
	t.Cleanup(conn.Close)
	return conn, events, states
}

func waitStatus(t *testing.T, states chan realtime.Status, want realtime.Status) {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case s := <-states:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("never reached status %v", want)
		}
	}
}

func TestConnDeliversEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-a", r.Header.Get("Authorization"))
		assert.Equal(t, "chama-1", r.URL.Query().Get("chamaId"))

		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()

		frame := `{"event":"new_notification","data":{"id":"n-1","title":"Loan approved","message":"Your loan request was approved.","type":"LOAN"}}`
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(frame)))

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	conn, events, states := collectConn(t, wsURL(srv), "token-a", "chama-1")
	conn.Start()

	waitStatus(t, states, realtime.StatusConnected)

	select {
	case ev := <-events:
		assert.Equal(t, realtime.EventCreated, ev.Kind)
		assert.Equal(t, "n-1", ev.Notification.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestConnReconnectsAfterDrop(t *testing.T) {
	var dials atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := dials.Add(1)
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()

		if n == 1 {
			frame := `{"event":"new_notification","data":{"id":"n-1","title":"First","message":"first"}}`
			_ = ws.WriteMessage(websocket.TextMessage, []byte(frame))
			return // drop the connection
		}

		frame := `{"event":"new_notification","data":{"id":"n-2","title":"Second","message":"second"}}`
		_ = ws.WriteMessage(websocket.TextMessage, []byte(frame))
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	conn, events, states := collectConn(t, wsURL(srv), "token-a", "chama-1")
	conn.Start()

	waitStatus(t, states, realtime.StatusConnected)
	waitStatus(t, states, realtime.StatusDisconnected)
	waitStatus(t, states, realtime.StatusConnected)

	var ids []string
	deadline := time.After(10 * time.Second)
	for len(ids) < 2 {
		select {
		case ev := <-events:
			ids = append(ids, ev.Notification.ID)
		case <-deadline:
			t.Fatalf("only received %v", ids)
		}
	}
	assert.Equal(t, []string{"n-1", "n-2"}, ids)
	assert.GreaterOrEqual(t, dials.Load(), int32(2))
}

func TestConnReportsAuthRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	conn, _, states := collectConn(t, wsURL(srv), "bad-token", "chama-1")
	conn.Start()

	waitStatus(t, states, realtime.StatusAuthError)
}

func TestConnDropsMalformedFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()

		_ = ws.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"event":"member_joined","data":{}}`))
		frame := `{"event":"notification_deleted","data":{"notificationId":"n-1"}}`
		_ = ws.WriteMessage(websocket.TextMessage, []byte(frame))
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	conn, events, states := collectConn(t, wsURL(srv), "token-a", "chama-1")
	conn.Start()

	waitStatus(t, states, realtime.StatusConnected)

	select {
	case ev := <-events:
		assert.Equal(t, realtime.EventDeleted, ev.Kind)
		assert.Equal(t, "n-1", ev.NotificationID)
	case <-time.After(5 * time.Second):
		t.Fatal("valid frame never delivered")
	}
}
