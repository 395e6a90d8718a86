// Package notify layers user-initiated notification mutations on top of
// the local cache. Mutations apply optimistically: the cached list is
// updated before the request is sent, and rolled back to a snapshot if
// the request fails, so the interface never shows a state the user did
// not ask for.
package notify

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/logging"
	"github.com/0097eo/chama-web/internal/model"
)

// remote is the slice of the API surface the service depends on.
type remote interface {
	MarkNotificationRead(ctx context.Context, notificationID string) error
	DeleteNotification(ctx context.Context, notificationID string) error
	Broadcast(ctx context.Context, req api.BroadcastRequest) error
}

// Service performs notification mutations against one cache store.
type Service struct {
	client remote
	cache  *cache.Store
}

// NewService creates a mutation service backed by client and store.
func NewService(client remote, store *cache.Store) *Service {
	return &Service{client: client, cache: store}
}

// MarkRead marks one notification as read. The cached entry flips
// immediately; on request failure the list is restored byte for byte.
// Marking an already-read notification is a harmless no-op locally and
// the request is still sent so the server stays authoritative.
func (s *Service) MarkRead(ctx context.Context, chamaID, notificationID string) error {
	snapshot := s.cache.Snapshot(chamaID)

	s.cache.PatchOne(chamaID, notificationID, func(n *model.Notification) {
		n.Read = true
	})

	if err := s.client.MarkNotificationRead(ctx, notificationID); err != nil {
		s.cache.Restore(chamaID, snapshot)
		logging.Warn().Err(err).Str("id", notificationID).Msg("mark-read rolled back")
		return err
	}
	return nil
}

// MarkAllRead marks every unread notification in the chama as read.
// The whole batch applies optimistically up front; if any request
// fails the full pre-batch state is restored and the first error is
// returned.
func (s *Service) MarkAllRead(ctx context.Context, chamaID string) error {
	snapshot := s.cache.Snapshot(chamaID)

	var unread []string
	for _, n := range snapshot {
		if !n.Read {
			unread = append(unread, n.ID)
		}
	}
	if len(unread) == 0 {
		return nil
	}

	s.cache.Reconcile(chamaID, func(list []model.Notification) []model.Notification {
		for i := range list {
			list[i].Read = true
		}
		return list
	})

	for _, id := range unread {
		if err := s.client.MarkNotificationRead(ctx, id); err != nil {
			s.cache.Restore(chamaID, snapshot)
			logging.Warn().Err(err).Str("id", id).Msg("mark-all-read rolled back")
			return err
		}
	}
	return nil
}

// Delete removes one notification. The entry disappears from the cache
// immediately and reappears in its original position if the request
// fails.
func (s *Service) Delete(ctx context.Context, chamaID, notificationID string) error {
	snapshot := s.cache.Snapshot(chamaID)

	s.cache.RemoveOne(chamaID, notificationID)

	if err := s.client.DeleteNotification(ctx, notificationID); err != nil {
		s.cache.Restore(chamaID, snapshot)
		logging.Warn().Err(err).Str("id", notificationID).Msg("delete rolled back")
		return err
	}
	return nil
}

// ValidationError reports a broadcast rejected before any request was
// sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// IsValidationError reports whether err is a client-side validation
// failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const (
	minBroadcastTitle   = 3
	minBroadcastMessage = 10
)

// ValidateBroadcast checks an announcement against the same rules the
// server enforces, so obviously bad input never leaves the client.
func ValidateBroadcast(req api.BroadcastRequest) error {
	if req.ChamaID == "" {
		return &ValidationError{Field: "chama", Reason: "no chama selected"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Title)) < minBroadcastTitle {
		return &ValidationError{Field: "title", Reason: "must be at least 3 characters"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Message)) < minBroadcastMessage {
		return &ValidationError{Field: "message", Reason: "must be at least 10 characters"}
	}
	return nil
}

// Broadcast validates and sends a group-wide announcement. The sender's
// own copy arrives back through the push channel like any other
// broadcast, so nothing is written to the cache here.
func (s *Service) Broadcast(ctx context.Context, req api.BroadcastRequest) error {
	if err := ValidateBroadcast(req); err != nil {
		return err
	}
	return s.client.Broadcast(ctx, req)
}
