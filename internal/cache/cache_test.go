package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/model"
	"github.com/0097eo/chama-web/tests/testutil"
)

// fetcher is a controllable FetchFunc. When gate is non-nil the fetch
// blocks until the gate is closed, which lets tests hold a fetch in
// flight.
type fetcher struct {
	mu    sync.Mutex
	calls int
	list  []model.Notification
	err   error
	gate  chan struct{}
}

func (f *fetcher) fetch(ctx context.Context, chamaID string) ([]model.Notification, error) {
	f.mu.Lock()
	f.calls++
	list, err, gate := f.list, f.err, f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return list, err
}

func (f *fetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fetcher) set(list []model.Notification, err error) {
	f.mu.Lock()
	f.list, f.err = list, err
	f.mu.Unlock()
}

// waitUpdate blocks until the store reports a change for chamaID.
func waitUpdate(t *testing.T, store *cache.Store, chamaID string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case id := <-store.Updates():
			if id == chamaID {
				return
			}
		case <-deadline:
			t.Fatalf("no update for chama %s", chamaID)
		}
	}
}

func newStore(t *testing.T, f *fetcher) (*cache.Store, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock()
	store := cache.New(cache.Config{
		Fetch: f.fetch,
		Now:   clock.Now,
	})
	return store, clock
}

func TestListMissingEntryFetches(t *testing.T) {
	f := &fetcher{list: testutil.Notifications(3)}
	store, _ := newStore(t, f)

	res := store.List("chama-1")
	assert.True(t, res.Loading)
	assert.Empty(t, res.Notifications)

	waitUpdate(t, store, "chama-1")

	res = store.List("chama-1")
	assert.False(t, res.Loading)
	require.NoError(t, res.Err)
	require.Len(t, res.Notifications, 3)
	assert.Equal(t, "n-1", res.Notifications[0].ID)
	assert.Equal(t, 1, f.callCount())
}

func TestListFreshEntryServesWithoutFetch(t *testing.T) {
	f := &fetcher{list: testutil.Notifications(2)}
	store, clock := newStore(t, f)

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	clock.Advance(30 * time.Second)
	for i := 0; i < 5; i++ {
		res := store.List("chama-1")
		require.Len(t, res.Notifications, 2)
	}
	assert.Equal(t, 1, f.callCount())
}

func TestListStaleEntryServesWhileRevalidating(t *testing.T) {
	f := &fetcher{list: testutil.Notifications(2)}
	store, clock := newStore(t, f)

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	f.set(testutil.Notifications(4), nil)
	clock.Advance(cache.DefaultTTL + time.Second)

	// The stale read still serves the old list immediately.
	res := store.List("chama-1")
	assert.False(t, res.Loading)
	require.Len(t, res.Notifications, 2)

	waitUpdate(t, store, "chama-1")

	res = store.List("chama-1")
	require.Len(t, res.Notifications, 4)
	assert.Equal(t, 2, f.callCount())
}

func TestListSingleFlight(t *testing.T) {
	gate := make(chan struct{})
	f := &fetcher{list: testutil.Notifications(1), gate: gate}
	store, _ := newStore(t, f)

	for i := 0; i < 10; i++ {
		res := store.List("chama-1")
		assert.True(t, res.Loading)
	}
	close(gate)
	waitUpdate(t, store, "chama-1")

	assert.Equal(t, 1, f.callCount())
}

func TestListFetchErrorWithoutData(t *testing.T) {
	f := &fetcher{err: errors.New("backend down")}
	store, _ := newStore(t, f)

	res := store.List("chama-1")
	assert.True(t, res.Loading)

	waitUpdate(t, store, "chama-1")

	res = store.List("chama-1")
	assert.False(t, res.Loading)
	assert.Error(t, res.Err)
	assert.Empty(t, res.Notifications)
	// The error sticks; reads do not hammer the backend.
	store.List("chama-1")
	assert.Equal(t, 1, f.callCount())
}

func TestListFetchErrorKeepsLastKnownGood(t *testing.T) {
	f := &fetcher{list: testutil.Notifications(3)}
	store, clock := newStore(t, f)

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	f.set(nil, errors.New("backend down"))
	clock.Advance(cache.DefaultTTL + time.Second)

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	res := store.List("chama-1")
	assert.Error(t, res.Err)
	require.Len(t, res.Notifications, 3)
}

func TestInvalidateForcesRevalidation(t *testing.T) {
	f := &fetcher{list: testutil.Notifications(1)}
	store, _ := newStore(t, f)

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	f.set(testutil.Notifications(2), nil)
	store.Invalidate("chama-1")

	res := store.List("chama-1")
	require.Len(t, res.Notifications, 1)
	waitUpdate(t, store, "chama-1")

	res = store.List("chama-1")
	require.Len(t, res.Notifications, 2)
}

func TestInvalidateClearsStickyError(t *testing.T) {
	f := &fetcher{err: errors.New("backend down")}
	store, _ := newStore(t, f)

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	f.set(testutil.Notifications(1), nil)
	store.Invalidate("chama-1")

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	res := store.List("chama-1")
	require.NoError(t, res.Err)
	require.Len(t, res.Notifications, 1)
}

func TestEvictDropsEntry(t *testing.T) {
	f := &fetcher{list: testutil.Notifications(2)}
	store, _ := newStore(t, f)

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	store.Evict("chama-1")
	assert.Zero(t, store.UnreadCount("chama-1"))

	res := store.List("chama-1")
	assert.True(t, res.Loading)
}

func TestPatchOne(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-1", testutil.Notifications(3))

	store.PatchOne("chama-1", "n-2", func(n *model.Notification) {
		n.Read = true
	})

	res := store.List("chama-1")
	assert.False(t, res.Notifications[0].Read)
	assert.True(t, res.Notifications[1].Read)
	assert.False(t, res.Notifications[2].Read)
}

func TestPatchOneUnknownIDIsNoop(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-1", testutil.Notifications(2))

	store.PatchOne("chama-1", "n-99", func(n *model.Notification) {
		n.Read = true
	})

	assert.Equal(t, 2, store.UnreadCount("chama-1"))
}

func TestRemoveOne(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-1", testutil.Notifications(3))

	store.RemoveOne("chama-1", "n-2")

	res := store.List("chama-1")
	require.Len(t, res.Notifications, 2)
	assert.Equal(t, "n-1", res.Notifications[0].ID)
	assert.Equal(t, "n-3", res.Notifications[1].ID)

	store.RemoveOne("chama-1", "n-99")
	require.Len(t, store.List("chama-1").Notifications, 2)
}

func TestPrependDeduplicates(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-1", testutil.Notifications(2))

	store.Prepend("chama-1", testutil.Notification("n-9", false, 0))
	store.Prepend("chama-1", testutil.Notification("n-9", false, 0))
	store.Prepend("chama-1", testutil.Notification("n-1", false, 0))

	res := store.List("chama-1")
	require.Len(t, res.Notifications, 3)
	assert.Equal(t, "n-9", res.Notifications[0].ID)
}

func TestReconcileTransformsList(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-1", testutil.Notifications(3))

	store.Reconcile("chama-1", func(list []model.Notification) []model.Notification {
		for i := range list {
			list[i].Read = true
		}
		return list
	})

	assert.Zero(t, store.UnreadCount("chama-1"))
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-1", testutil.Notifications(3))

	snapshot := store.Snapshot("chama-1")
	require.Len(t, snapshot, 3)

	// A snapshot is a copy; mutating it must not leak into the store.
	snapshot[0].Read = true
	assert.Equal(t, 3, store.UnreadCount("chama-1"))
	snapshot[0].Read = false

	store.RemoveOne("chama-1", "n-1")
	store.PatchOne("chama-1", "n-2", func(n *model.Notification) { n.Read = true })

	store.Restore("chama-1", snapshot)

	res := store.List("chama-1")
	require.Len(t, res.Notifications, 3)
	assert.Equal(t, "n-1", res.Notifications[0].ID)
	assert.Equal(t, 3, store.UnreadCount("chama-1"))
}

func TestSnapshotMissingChama(t *testing.T) {
	store := cache.New(cache.Config{})
	assert.Nil(t, store.Snapshot("chama-1"))
}

func TestUnreadCount(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-1", []model.Notification{
		testutil.Notification("n-1", false, 0),
		testutil.Notification("n-2", true, time.Minute),
		testutil.Notification("n-3", false, 2*time.Minute),
	})

	assert.Equal(t, 2, store.UnreadCount("chama-1"))
	assert.Zero(t, store.UnreadCount("chama-2"))
}

func TestUpdatesCarryChamaID(t *testing.T) {
	store := cache.New(cache.Config{})
	store.SetList("chama-7", testutil.Notifications(1))

	select {
	case id := <-store.Updates():
		assert.Equal(t, "chama-7", id)
	case <-time.After(time.Second):
		t.Fatal("expected an update event")
	}
}

func TestRefetchForcesFetchWhileFresh(t *testing.T) {
	f := &fetcher{list: testutil.Notifications(1)}
	store, _ := newStore(t, f)

	store.List("chama-1")
	waitUpdate(t, store, "chama-1")

	f.set(testutil.Notifications(3), nil)
	store.Refetch("chama-1")
	waitUpdate(t, store, "chama-1")

	res := store.List("chama-1")
	require.Len(t, res.Notifications, 3)
	assert.Equal(t, 2, f.callCount())
}
