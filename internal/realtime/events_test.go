package realtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/realtime"
)

func TestDecodeEventCreated(t *testing.T) {
	raw := []byte(`{
		"event": "new_notification",
		"data": {
			"id": "n-1",
			"title": "Contribution received",
			"message": "Your March contribution has been recorded.",
			"type": "CONTRIBUTION",
			"read": false,
			"createdAt": "2026-03-14T09:30:00Z",
			"userId": "user-1"
		}
	}`)

	ev, err := realtime.DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, realtime.EventCreated, ev.Kind)
	assert.Equal(t, "n-1", ev.Notification.ID)
	assert.Equal(t, "Contribution received", ev.Notification.Title)
	assert.False(t, ev.Notification.Read)
}

func TestDecodeEventBroadcast(t *testing.T) {
	raw := []byte(`{
		"event": "new_broadcast_notification",
		"data": {"id": "b-1", "title": "AGM", "message": "Annual meeting moved to Saturday.", "type": "GENERAL"}
	}`)

	ev, err := realtime.DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, realtime.EventBroadcast, ev.Kind)
	assert.Equal(t, "b-1", ev.Notification.ID)
}

func TestDecodeEventRead(t *testing.T) {
	raw := []byte(`{"event": "notification_marked_read", "data": {"notificationId": "n-3"}}`)

	ev, err := realtime.DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, realtime.EventRead, ev.Kind)
	assert.Equal(t, "n-3", ev.NotificationID)
}

func TestDecodeEventDeleted(t *testing.T) {
	raw := []byte(`{"event": "notification_deleted", "data": {"notificationId": "n-4"}}`)

	ev, err := realtime.DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, realtime.EventDeleted, ev.Kind)
	assert.Equal(t, "n-4", ev.NotificationID)
}

func TestDecodeEventUnknownKind(t *testing.T) {
	_, err := realtime.DecodeEvent([]byte(`{"event": "member_joined", "data": {}}`))
	assert.Error(t, err)
}

func TestDecodeEventMalformed(t *testing.T) {
	for _, raw := range []string{
		"not json",
		`{"event": "new_notification", "data": "not an object"}`,
		`{"event": "notification_deleted", "data": 42}`,
	} {
		_, err := realtime.DecodeEvent([]byte(raw))
		assert.Error(t, err, "input: %s", raw)
	}
}
