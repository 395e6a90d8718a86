package login_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/ui/login"
)

// typedReader feeds input one byte at a time so each keystroke arrives
// as its own key event, the way interactive typing does.
type typedReader struct {
	data []byte
	pos  int
}

func (r *typedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	time.Sleep(20 * time.Millisecond)
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

// harness adapts the view to tea.Model and stops the program once
// authentication succeeds.
type harness struct {
	m    login.Model
	done chan login.LoggedInMsg
}

func (h harness) Init() tea.Cmd { return h.m.Init() }

func (h harness) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if logged, ok := msg.(login.LoggedInMsg); ok {
		h.done <- logged
		return h, tea.Quit
	}
	var cmd tea.Cmd
	h.m, cmd = h.m.Update(msg)
	return h, cmd
}

func (h harness) View() string { return h.m.View() }

// Bubble Tea copies the model on every Update, so the form must write
// typed values somewhere the submitting copy can see them. This drives
// the real form headlessly and checks the credentials that reach the
// backend.
func TestTypedCredentialsReachBackend(t *testing.T) {
	type credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var got atomic.Pointer[credentials]

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		got.Store(&creds)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"accessToken": "tok-1", "user": {"id": "u-1"}}}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, "", 5*time.Second)
	h := harness{
		m:    login.New(client, 80, 24),
		done: make(chan login.LoggedInMsg, 1),
	}

	input := &typedReader{data: []byte("user@example.com\rsecret-password\r")}
	p := tea.NewProgram(h, tea.WithInput(input), tea.WithOutput(io.Discard), tea.WithoutRenderer())

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errCh <- err
	}()

	select {
	case logged := <-h.done:
		assert.Equal(t, "tok-1", logged.Token)
	case <-time.After(15 * time.Second):
		p.Quit()
		t.Fatal("login flow never completed")
	}
	require.NoError(t, <-errCh)

	creds := got.Load()
	require.NotNil(t, creds, "no login request reached the backend")
	assert.Equal(t, "user@example.com", creds.Email)
	assert.Equal(t, "secret-password", creds.Password)
}
