// Package realtime maintains the live push channel to the chama
// platform and reconciles its events into the notification cache. One
// connection is held per active chama; switching chamas replaces the
// connection rather than multiplexing.
package realtime

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/0097eo/chama-web/internal/model"
)

// EventKind names a push event as it appears on the wire.
type EventKind string

const (
	// EventCreated delivers a new notification for the subscribed chama.
	EventCreated EventKind = "new_notification"

	// EventBroadcast delivers a group-wide announcement. Handled like
	// EventCreated but displayed as an announcement.
	EventBroadcast EventKind = "new_broadcast_notification"

	// EventRead reports a notification was marked read elsewhere.
	EventRead EventKind = "notification_marked_read"

	// EventDeleted reports a notification was deleted elsewhere.
	EventDeleted EventKind = "notification_deleted"
)

// Event is a decoded push event.
type Event struct {
	Kind EventKind

	// Notification is set for EventCreated and EventBroadcast.
	Notification model.Notification

	// NotificationID is set for EventRead and EventDeleted.
	NotificationID string
}

// wireMessage is the envelope every push frame arrives in.
type wireMessage struct {
	Event EventKind       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// refMessage is the payload of read/deleted events.
type refMessage struct {
	NotificationID string `json:"notificationId"`
}

// DecodeEvent parses a raw push frame into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Event{}, fmt.Errorf("parsing push frame: %w", err)
	}

	ev := Event{Kind: msg.Event}

	switch msg.Event {
	case EventCreated, EventBroadcast:
		if err := json.Unmarshal(msg.Data, &ev.Notification); err != nil {
			return Event{}, fmt.Errorf("parsing %s payload: %w", msg.Event, err)
		}
	case EventRead, EventDeleted:
		var ref refMessage
		if err := json.Unmarshal(msg.Data, &ref); err != nil {
			return Event{}, fmt.Errorf("parsing %s payload: %w", msg.Event, err)
		}
		ev.NotificationID = ref.NotificationID
	default:
		return Event{}, fmt.Errorf("unknown push event %q", msg.Event)
	}

	return ev, nil
}
