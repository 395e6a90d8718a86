package realtime

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/0097eo/chama-web/internal/logging"
)

// Status is the lifecycle state of a push connection.
type Status int

const (
	// StatusIdle means no chama is selected or no credential is
	// available; no connection is attempted.
	StatusIdle Status = iota

	// StatusConnecting means a connection attempt is in flight.
	StatusConnecting

	// StatusConnected means the handshake succeeded and events are
	// flowing for the subscribed chama.
	StatusConnected

	// StatusDisconnected means the transport dropped; reconnection is
	// being attempted with backoff.
	StatusDisconnected

	// StatusAuthError means the far end rejected the credential. It is
	// surfaced distinctly from a transient drop and persists until a
	// reconnect succeeds, though retries continue.
	StatusAuthError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusAuthError:
		return "auth error"
	default:
		return "unknown"
	}
}

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
	pingInterval     = 30 * time.Second
	writeTimeout     = 5 * time.Second
)

// Conn is a single push-channel connection scoped to one chama. It
// authenticates with a bearer token at handshake time, decodes inbound
// frames, and reconnects with exponential backoff until closed.
type Conn struct {
	wsURL   string
	token   string
	chamaID string

	onEvent func(Event)
	onState func(Status)

	conn   *websocket.Conn
	connMu sync.RWMutex

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewConn creates a connection for one chama. onEvent receives every
// decoded event; onState receives lifecycle transitions. Neither
// callback may block for long. Call Start to begin connecting.
func NewConn(wsURL, token, chamaID string, onEvent func(Event), onState func(Status)) *Conn {
	return &Conn{
		wsURL:   wsURL,
		token:   token,
		chamaID: chamaID,
		onEvent: onEvent,
		onState: onState,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the connection loop in the background.
func (c *Conn) Start() {
	c.wg.Add(1)
	go c.run()
}

// Close tears the connection down and waits for its goroutines. Safe to
// call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCh)
	})
	c.closeConnection()
	c.wg.Wait()
}

// run is the connect/read/reconnect loop.
func (c *Conn) run() {
	defer c.wg.Done()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 32 * time.Second
	bo.MaxElapsedTime = 0

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.setState(StatusConnecting)

		conn, err := c.dial()
		if err != nil {
			if isAuthRejection(err) {
				c.setState(StatusAuthError)
				logging.Warn().Str("chama", c.chamaID).Msg("push handshake rejected")
			} else {
				c.setState(StatusDisconnected)
				logging.Info().Err(err).Str("chama", c.chamaID).Msg("push dial failed")
			}

			select {
			case <-c.stopCh:
				return
			case <-time.After(bo.NextBackOff()):
			}
			continue
		}

		c.setConn(conn)
		bo.Reset()
		c.setState(StatusConnected)
		logging.Info().Str("chama", c.chamaID).Msg("push channel connected")

		pingDone := make(chan struct{})
		c.wg.Add(1)
		go c.pingLoop(pingDone)

		c.readLoop(conn)

		close(pingDone)
		c.closeConnection()

		select {
		case <-c.stopCh:
			return
		default:
			c.setState(StatusDisconnected)
		}
	}
}

// authRejectionError marks a dial failure caused by a 401/403 response.
type authRejectionError struct{ err error }

func (e *authRejectionError) Error() string { return e.err.Error() }
func (e *authRejectionError) Unwrap() error { return e.err }

func isAuthRejection(err error) bool {
	_, ok := err.(*authRejectionError)
	return ok
}

// dial performs the handshake. The bearer token travels in the
// Authorization header and the chama scope in the query string; the
// server subscribes the connection to that chama's room implicitly.
func (c *Conn) dial() (*websocket.Conn, error) {
	u := c.wsURL
	q := url.Values{}
	q.Set("chamaId", c.chamaID)
	u += "?" + q.Encode()

	dialer := websocket.Dialer{
		HandshakeTimeout:  handshakeTimeout,
		EnableCompression: true,
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, resp, err := dialer.Dial(u, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, &authRejectionError{err: err}
			}
		}
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, nil
}

// readLoop decodes frames until the connection errors or is closed.
// Events are applied in arrival order; there is no reordering buffer.
func (c *Conn) readLoop(conn *websocket.Conn) {
	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info().Str("chama", c.chamaID).Msg("push channel closed by server")
			}
			return
		}

		ev, err := DecodeEvent(message)
		if err != nil {
			logging.Warn().Err(err).Msg("dropping malformed push frame")
			continue
		}
		c.onEvent(ev)
	}
}

// pingLoop keeps the connection alive with periodic control pings.
func (c *Conn) pingLoop(done chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()
			if conn == nil {
				continue
			}

			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logging.Info().Err(err).Msg("push keep-alive failed")
				c.closeConnection()
			}
		}
	}
}

func (c *Conn) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

// closeConnection safely closes the underlying socket.
func (c *Conn) closeConnection() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Conn) setState(s Status) {
	if c.onState != nil {
		c.onState(s)
	}
}
