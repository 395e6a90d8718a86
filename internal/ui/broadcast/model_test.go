package broadcast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendFailureKeepsDraft(t *testing.T) {
	m := New(nil, "c-1", 80, 24)
	m.fb.title = "Meeting moved"
	m.fb.message = "This month's meeting moves to Saturday."
	m.sending = true

	m, _ = m.Update(sendResultMsg{err: errors.New("boom")})

	assert.False(t, m.sending)
	assert.Contains(t, m.errMsg, "Broadcast failed")
	require.NotNil(t, m.form)
	assert.Equal(t, "Meeting moved", m.fb.title)
	assert.Equal(t, "This month's meeting moves to Saturday.", m.fb.message)
}

func TestFormBindingsSharedAcrossModelCopies(t *testing.T) {
	m := New(nil, "c-1", 80, 24)

	// Bubble Tea hands Update a fresh copy of the model each message;
	// huh writes keystrokes through pointers captured at build time.
	runtime := m
	m.fb.title = "Welfare drive"
	m.fb.message = "Contributions close on Friday."

	assert.Equal(t, "Welfare drive", runtime.fb.title)
	assert.Equal(t, "Contributions close on Friday.", runtime.fb.message)
}
