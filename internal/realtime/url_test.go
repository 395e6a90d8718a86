package realtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/realtime"
)

func TestResolveWSURLOverrideWins(t *testing.T) {
	got, err := realtime.ResolveWSURL("wss://push.chama.example.com/socket", "https://api.chama.example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "wss://push.chama.example.com/socket", got)
}

func TestResolveWSURLOverrideUpgradesHTTP(t *testing.T) {
	cases := map[string]string{
		"http://push.example.com":         "ws://push.example.com/socket",
		"https://push.example.com":        "wss://push.example.com/socket",
		"https://push.example.com/stream": "wss://push.example.com/stream",
		"ws://push.example.com:3000":      "ws://push.example.com:3000/socket",
	}
	for in, want := range cases {
		got, err := realtime.ResolveWSURL(in, "")
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestResolveWSURLDerivedFromAPIBase(t *testing.T) {
	got, err := realtime.ResolveWSURL("", "https://api.chama.example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.chama.example.com/socket", got)

	got, err = realtime.ResolveWSURL("", "http://localhost:3000/api")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3000/socket", got)
}

func TestResolveWSURLDefault(t *testing.T) {
	got, err := realtime.ResolveWSURL("", "")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3000/socket", got)
}

func TestResolveWSURLRejectsBadInput(t *testing.T) {
	_, err := realtime.ResolveWSURL("ftp://push.example.com", "")
	assert.Error(t, err)

	// A hostless base parses fine, so the error must stand on its own
	// rather than wrapping a nil parse error.
	_, err = realtime.ResolveWSURL("", "not-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing host")
	assert.NotContains(t, err.Error(), "%!w")
}
