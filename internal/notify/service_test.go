package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/model"
	"github.com/0097eo/chama-web/internal/notify"
	"github.com/0097eo/chama-web/tests/testutil"
)

// fakeRemote records calls and fails on demand.
type fakeRemote struct {
	markReadIDs  []string
	failReadID   string
	deletedIDs   []string
	deleteErr    error
	broadcasts   []api.BroadcastRequest
	broadcastErr error
}

func (f *fakeRemote) MarkNotificationRead(ctx context.Context, id string) error {
	f.markReadIDs = append(f.markReadIDs, id)
	if id == f.failReadID {
		return errors.New("server rejected mark-read")
	}
	return nil
}

func (f *fakeRemote) DeleteNotification(ctx context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteErr
}

func (f *fakeRemote) Broadcast(ctx context.Context, req api.BroadcastRequest) error {
	f.broadcasts = append(f.broadcasts, req)
	return f.broadcastErr
}

func newService(t *testing.T, remote *fakeRemote, count int) (*notify.Service, *cache.Store) {
	t.Helper()
	store := cache.New(cache.Config{})
	store.SetList("chama-1", testutil.Notifications(count))
	return notify.NewService(remote, store), store
}

func TestMarkRead(t *testing.T) {
	remote := &fakeRemote{}
	svc, store := newService(t, remote, 3)

	require.NoError(t, svc.MarkRead(context.Background(), "chama-1", "n-2"))

	assert.Equal(t, []string{"n-2"}, remote.markReadIDs)
	assert.Equal(t, 2, store.UnreadCount("chama-1"))
}

func TestMarkReadRollsBackOnFailure(t *testing.T) {
	remote := &fakeRemote{failReadID: "n-2"}
	svc, store := newService(t, remote, 3)
	before := store.Snapshot("chama-1")

	err := svc.MarkRead(context.Background(), "chama-1", "n-2")
	assert.Error(t, err)

	// The optimistic flip was undone exactly.
	assert.Equal(t, before, store.Snapshot("chama-1"))
	assert.Equal(t, 3, store.UnreadCount("chama-1"))
}

func TestMarkReadAlreadyReadStillCallsServer(t *testing.T) {
	remote := &fakeRemote{}
	store := cache.New(cache.Config{})
	store.SetList("chama-1", []model.Notification{
		testutil.Notification("n-1", true, 0),
	})
	svc := notify.NewService(remote, store)

	require.NoError(t, svc.MarkRead(context.Background(), "chama-1", "n-1"))

	// The server stays authoritative even when the local flip is a no-op.
	assert.Equal(t, []string{"n-1"}, remote.markReadIDs)
	assert.Zero(t, store.UnreadCount("chama-1"))
}

func TestMarkAllRead(t *testing.T) {
	remote := &fakeRemote{}
	svc, store := newService(t, remote, 3)

	require.NoError(t, svc.MarkAllRead(context.Background(), "chama-1"))

	assert.ElementsMatch(t, []string{"n-1", "n-2", "n-3"}, remote.markReadIDs)
	assert.Zero(t, store.UnreadCount("chama-1"))
}

func TestMarkAllReadSkipsAlreadyRead(t *testing.T) {
	remote := &fakeRemote{}
	store := cache.New(cache.Config{})
	store.SetList("chama-1", []model.Notification{
		testutil.Notification("n-1", false, 0),
		testutil.Notification("n-2", true, time.Minute),
		testutil.Notification("n-3", false, 2*time.Minute),
	})
	svc := notify.NewService(remote, store)

	require.NoError(t, svc.MarkAllRead(context.Background(), "chama-1"))

	assert.ElementsMatch(t, []string{"n-1", "n-3"}, remote.markReadIDs)
	assert.Zero(t, store.UnreadCount("chama-1"))
}

func TestMarkAllReadNothingUnread(t *testing.T) {
	remote := &fakeRemote{}
	store := cache.New(cache.Config{})
	store.SetList("chama-1", nil)
	svc := notify.NewService(remote, store)

	require.NoError(t, svc.MarkAllRead(context.Background(), "chama-1"))
	assert.Empty(t, remote.markReadIDs)
}

func TestMarkAllReadRollsBackWholeBatch(t *testing.T) {
	remote := &fakeRemote{failReadID: "n-2"}
	svc, store := newService(t, remote, 3)
	before := store.Snapshot("chama-1")

	err := svc.MarkAllRead(context.Background(), "chama-1")
	assert.Error(t, err)

	assert.Equal(t, before, store.Snapshot("chama-1"))
	assert.Equal(t, 3, store.UnreadCount("chama-1"))
}

func TestDelete(t *testing.T) {
	remote := &fakeRemote{}
	svc, store := newService(t, remote, 3)

	require.NoError(t, svc.Delete(context.Background(), "chama-1", "n-2"))

	assert.Equal(t, []string{"n-2"}, remote.deletedIDs)
	res := store.List("chama-1")
	require.Len(t, res.Notifications, 2)
}

func TestDeleteRestoresOriginalPosition(t *testing.T) {
	remote := &fakeRemote{deleteErr: errors.New("server rejected delete")}
	svc, store := newService(t, remote, 3)
	before := store.Snapshot("chama-1")

	err := svc.Delete(context.Background(), "chama-1", "n-2")
	assert.Error(t, err)

	after := store.Snapshot("chama-1")
	assert.Equal(t, before, after)
}

func TestBroadcastSends(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := newService(t, remote, 0)

	req := api.BroadcastRequest{
		ChamaID: "chama-1",
		Title:   "AGM moved",
		Message: "The annual meeting now starts at 2pm on Saturday.",
	}
	require.NoError(t, svc.Broadcast(context.Background(), req))
	require.Len(t, remote.broadcasts, 1)
	assert.Equal(t, req, remote.broadcasts[0])
}

func TestBroadcastValidationSendsNothing(t *testing.T) {
	cases := []struct {
		name string
		req  api.BroadcastRequest
	}{
		{"no chama", api.BroadcastRequest{Title: "AGM moved", Message: "Long enough message body."}},
		{"short title", api.BroadcastRequest{ChamaID: "chama-1", Title: "Hi", Message: "Long enough message body."}},
		{"short message", api.BroadcastRequest{ChamaID: "chama-1", Title: "AGM moved", Message: "Too short"}},
		{"whitespace padding", api.BroadcastRequest{ChamaID: "chama-1", Title: "  a  ", Message: "         x         "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remote := &fakeRemote{}
			svc, _ := newService(t, remote, 0)

			err := svc.Broadcast(context.Background(), tc.req)
			assert.True(t, notify.IsValidationError(err))
			assert.Empty(t, remote.broadcasts)
		})
	}
}

func TestValidateBroadcastCountsRunes(t *testing.T) {
	// Multi-byte characters count as single characters.
	req := api.BroadcastRequest{
		ChamaID: "chama-1",
		Title:   "héllo",
		Message: "mañana työ ña ok", // 16 runes
	}
	assert.NoError(t, notify.ValidateBroadcast(req))
}
