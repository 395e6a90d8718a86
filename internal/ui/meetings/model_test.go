package meetings

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
	m.fb.title = "Monthly general meeting"
	m.fb.when = "2026-04-04 14:00"
	m.fb.location = "Community hall"
	m.fb.minutes = "Resolved to raise the welfare fund."

	assert.Equal(t, "Monthly general meeting", runtime.fb.title)
	assert.Equal(t, "2026-04-04 14:00", runtime.fb.when)
	assert.Equal(t, "Community hall", runtime.fb.location)
	assert.Equal(t, "Resolved to raise the welfare fund.", runtime.fb.minutes)
}
