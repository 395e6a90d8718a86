// Package cache holds per-chama notification lists with a bounded
// freshness window and stale-while-revalidate reads. It is the single
// process-wide store the UI, the optimistic mutation layer, and the
// push reconciler all write into; components reading the same chama key
// observe the same data and the same loading/error state.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/0097eo/chama-web/internal/logging"
	"github.com/0097eo/chama-web/internal/model"
)

// DefaultTTL is how long a fetched list is considered fresh.
const DefaultTTL = time.Minute

// fetchTimeout bounds a single background list fetch.
const fetchTimeout = 30 * time.Second

// FetchFunc retrieves the full notification list for a chama from the
// backend. The cache calls it at most once per key at a time.
type FetchFunc func(ctx context.Context, chamaID string) ([]model.Notification, error)

// Result is the outcome of a cache read.
type Result struct {
	// Notifications is the cached list, newest first. It is a copy;
	// callers may not mutate cache state through it.
	Notifications []model.Notification

	// Loading is true when no data has arrived yet and a fetch is in
	// flight. A stale entry being revalidated is NOT loading: its data
	// is still served.
	Loading bool

	// Err is the most recent fetch error. Previously cached data is
	// preserved alongside it (last-known-good).
	Err error
}

// Config configures a Store.
type Config struct {
	// Fetch loads a chama's list from the backend. Required.
	Fetch FetchFunc

	// TTL is the freshness window. Zero means DefaultTTL.
	TTL time.Duration

	// Now is the clock, overridable in tests. Nil means time.Now.
	Now func() time.Time
}

type entry struct {
	list      []model.Notification
	fetchedAt time.Time
	hasData   bool
	err       error
	inflight  bool
}

// Store is a keyed, invalidatable notification cache.
type Store struct {
	mu      sync.Mutex
	fetch   FetchFunc
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry
	updates chan string
}

// New creates a Store from cfg.
func New(cfg Config) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		fetch:   cfg.Fetch,
		ttl:     ttl,
		now:     now,
		entries: make(map[string]*entry),
		updates: make(chan string, 16),
	}
}

// Updates delivers the chama id of every entry that changes (fetch
// completion, push reconciliation, optimistic mutation). The channel is
// never closed; sends are dropped rather than blocked when full.
func (s *Store) Updates() <-chan string {
	return s.updates
}

// List returns the cached list for a chama. A missing entry starts a
// fetch and reports Loading; a stale entry starts a background
// revalidation while still serving the stale data immediately.
func (s *Store) List(chamaID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensureLocked(chamaID)

	if !e.hasData {
		if !e.inflight && e.err == nil {
			s.startFetchLocked(chamaID, e)
		}
		return Result{Loading: e.inflight, Err: e.err}
	}

	if s.staleLocked(e) && !e.inflight {
		s.startFetchLocked(chamaID, e)
	}

	return Result{Notifications: copyList(e.list), Err: e.err}
}

// Refetch forces a background revalidation for a chama regardless of
// freshness. The current data keeps being served meanwhile.
func (s *Store) Refetch(chamaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensureLocked(chamaID)
	if !e.inflight {
		s.startFetchLocked(chamaID, e)
	}
}

// Invalidate marks a chama's entry stale so the next read revalidates.
// Used on focus regain and on push-channel reconnection.
func (s *Store) Invalidate(chamaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[chamaID]; ok {
		e.fetchedAt = time.Time{}
		e.err = nil
	}
}

// Evict drops a chama's entry entirely, e.g. when the chama context is
// switched away for good.
func (s *Store) Evict(chamaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, chamaID)
}

// SetList replaces a chama's list wholesale with server ground truth.
func (s *Store) SetList(chamaID string, list []model.Notification) {
	s.mu.Lock()
	e := s.ensureLocked(chamaID)
	e.list = copyList(list)
	e.hasData = true
	e.fetchedAt = s.now()
	e.err = nil
	s.mu.Unlock()

	s.notify(chamaID)
}

// PatchOne applies fn to the entry matching id. A miss is a no-op: a
// patch for an id not yet reconciled is simply dropped and closed by
// the next full refetch.
func (s *Store) PatchOne(chamaID, id string, fn func(*model.Notification)) {
	s.mu.Lock()
	e, ok := s.entries[chamaID]
	changed := false
	if ok {
		for i := range e.list {
			if e.list[i].ID == id {
				fn(&e.list[i])
				changed = true
				break
			}
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify(chamaID)
	}
}

// RemoveOne removes the entry matching id. A miss is a no-op.
func (s *Store) RemoveOne(chamaID, id string) {
	s.mu.Lock()
	e, ok := s.entries[chamaID]
	changed := false
	if ok {
		for i := range e.list {
			if e.list[i].ID == id {
				e.list = append(e.list[:i], e.list[i+1:]...)
				changed = true
				break
			}
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify(chamaID)
	}
}

// Prepend inserts a notification at the head of a chama's list. Ids are
// unique within a list, so an id already present is a no-op; this is
// what keeps replayed push events after a reconnect from duplicating.
func (s *Store) Prepend(chamaID string, n model.Notification) {
	s.mu.Lock()
	e := s.ensureLocked(chamaID)
	for i := range e.list {
		if e.list[i].ID == n.ID {
			s.mu.Unlock()
			return
		}
	}
	e.list = append([]model.Notification{n}, e.list...)
	e.hasData = true
	s.mu.Unlock()

	s.notify(chamaID)
}

// Reconcile applies a pure list transformation to a chama's entry,
// leaving freshness metadata untouched. This is the write path for
// push-delivered events: the transform runs against the key captured at
// subscribe time, so events can never land in another chama's entry.
func (s *Store) Reconcile(chamaID string, fn func([]model.Notification) []model.Notification) {
	s.mu.Lock()
	e := s.ensureLocked(chamaID)
	e.list = fn(e.list)
	e.hasData = true
	s.mu.Unlock()

	s.notify(chamaID)
}

// Snapshot returns a deep copy of a chama's current list for the
// optimistic mutation layer to restore on failure.
func (s *Store) Snapshot(chamaID string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[chamaID]
	if !ok {
		return nil
	}
	return copyList(e.list)
}

// Restore replaces a chama's list with a previously taken snapshot,
// verbatim. Freshness metadata is left untouched.
func (s *Store) Restore(chamaID string, snapshot []model.Notification) {
	s.mu.Lock()
	e := s.ensureLocked(chamaID)
	e.list = copyList(snapshot)
	e.hasData = true
	s.mu.Unlock()

	s.notify(chamaID)
}

// UnreadCount returns how many cached notifications are unread.
func (s *Store) UnreadCount(chamaID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[chamaID]
	if !ok {
		return 0
	}
	count := 0
	for i := range e.list {
		if !e.list[i].Read {
			count++
		}
	}
	return count
}

func (s *Store) ensureLocked(chamaID string) *entry {
	e, ok := s.entries[chamaID]
	if !ok {
		e = &entry{}
		s.entries[chamaID] = e
	}
	return e
}

func (s *Store) staleLocked(e *entry) bool {
	return s.now().Sub(e.fetchedAt) > s.ttl
}

// startFetchLocked launches a single background fetch for chamaID.
// Callers must hold s.mu.
func (s *Store) startFetchLocked(chamaID string, e *entry) {
	if s.fetch == nil {
		return
	}
	e.inflight = true

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		list, err := s.fetch(ctx, chamaID)

		s.mu.Lock()
		// The entry may have been evicted while the fetch was in
		// flight; writing into a fresh entry under the same key is
		// harmless since nothing reads it until the key is active again.
		e := s.ensureLocked(chamaID)
		if err != nil {
			e.err = err
			logging.Error().Err(err).Str("chama", chamaID).Msg("notification fetch failed")
		} else {
			e.list = list
			e.hasData = true
			e.fetchedAt = s.now()
			e.err = nil
		}
		e.inflight = false
		s.mu.Unlock()

		s.notify(chamaID)
	}()
}

// notify signals an entry change without blocking.
func (s *Store) notify(chamaID string) {
	select {
	case s.updates <- chamaID:
	default:
	}
}

func copyList(list []model.Notification) []model.Notification {
	if list == nil {
		return nil
	}
	out := make([]model.Notification, len(list))
	copy(out, list)
	return out
}
