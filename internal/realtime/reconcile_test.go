package realtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/model"
	"github.com/0097eo/chama-web/internal/realtime"
	"github.com/0097eo/chama-web/tests/testutil"
)

func TestApplyCreatedPrepends(t *testing.T) {
	list := testutil.Notifications(2)
	ev := realtime.Event{
		Kind:         realtime.EventCreated,
		Notification: testutil.Notification("n-9", false, 0),
	}

	out := realtime.Apply(list, ev)
	require.Len(t, out, 3)
	assert.Equal(t, "n-9", out[0].ID)
	assert.Equal(t, "n-1", out[1].ID)
}

func TestApplyCreatedDuplicateIsNoop(t *testing.T) {
	list := testutil.Notifications(2)
	ev := realtime.Event{
		Kind:         realtime.EventCreated,
		Notification: testutil.Notification("n-1", false, 0),
	}

	out := realtime.Apply(list, ev)
	require.Len(t, out, 2)
	assert.Equal(t, "n-1", out[0].ID)
}

func TestApplyBroadcastPrepends(t *testing.T) {
	ev := realtime.Event{
		Kind:         realtime.EventBroadcast,
		Notification: testutil.Notification("b-1", false, 0),
	}

	out := realtime.Apply(nil, ev)
	require.Len(t, out, 1)
	assert.Equal(t, "b-1", out[0].ID)
}

func TestApplyReadPatchesInPlace(t *testing.T) {
	list := testutil.Notifications(3)
	ev := realtime.Event{Kind: realtime.EventRead, NotificationID: "n-2"}

	out := realtime.Apply(list, ev)
	require.Len(t, out, 3)
	assert.True(t, out[1].Read)
	assert.Equal(t, []string{"n-1", "n-2", "n-3"}, ids(out))

	// The input list is left untouched.
	assert.False(t, list[1].Read)
}

func TestApplyReadUnknownIDIsNoop(t *testing.T) {
	list := testutil.Notifications(2)
	ev := realtime.Event{Kind: realtime.EventRead, NotificationID: "n-99"}

	out := realtime.Apply(list, ev)
	assert.Equal(t, list, out)
}

func TestApplyDeletedRemoves(t *testing.T) {
	list := testutil.Notifications(3)
	ev := realtime.Event{Kind: realtime.EventDeleted, NotificationID: "n-2"}

	out := realtime.Apply(list, ev)
	assert.Equal(t, []string{"n-1", "n-3"}, ids(out))
	require.Len(t, list, 3)
}

func TestApplyDeletedUnknownIDIsNoop(t *testing.T) {
	list := testutil.Notifications(2)
	ev := realtime.Event{Kind: realtime.EventDeleted, NotificationID: "n-99"}

	out := realtime.Apply(list, ev)
	assert.Equal(t, list, out)
}

func TestApplySequenceConverges(t *testing.T) {
	var list []model.Notification
	events := []realtime.Event{
		{Kind: realtime.EventCreated, Notification: testutil.Notification("n-1", false, 2*time.Minute)},
		{Kind: realtime.EventCreated, Notification: testutil.Notification("n-2", false, time.Minute)},
		{Kind: realtime.EventRead, NotificationID: "n-1"},
		{Kind: realtime.EventCreated, Notification: testutil.Notification("n-2", false, time.Minute)}, // replay
		{Kind: realtime.EventDeleted, NotificationID: "n-1"},
	}

	for _, ev := range events {
		list = realtime.Apply(list, ev)
	}

	require.Len(t, list, 1)
	assert.Equal(t, "n-2", list[0].ID)
	assert.False(t, list[0].Read)
}

func ids(list []model.Notification) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}
