package loans

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0097eo/chama-web/internal/keys"
)

func TestFormBindingsSharedAcrossModelCopies(t *testing.T) {
	m := New(nil, keys.DefaultKeyMap(), 80, 24)

	// Bubble Tea hands Update a fresh copy of the model each message;
	// huh writes keystrokes through pointers captured at build time.
	runtime := m
	m.fb.amount = "25000"
	m.fb.duration = "6"
	m.fb.purpose = "School fees"
	m.fb.method = "MPESA"

	assert.Equal(t, "25000", runtime.fb.amount)
	assert.Equal(t, "6", runtime.fb.duration)
	assert.Equal(t, "School fees", runtime.fb.purpose)
	assert.Equal(t, "MPESA", runtime.fb.method)
}
