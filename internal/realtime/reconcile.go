package realtime

import "github.com/0097eo/chama-web/internal/model"

// Apply merges one push event into a notification list and returns the
// new list. It is a pure function of (event, prior list):
//
//   - created/broadcast prepend the notification (lists are newest
//     first and push arrivals are monotonically recent); an id already
//     present is left alone, which makes replays after a reconnect
//     harmless.
//   - read patches the matching entry to read=true. A miss is a no-op:
//     a read arriving before its created has been reconciled is an
//     accepted gap closed by the next full refetch, not queued.
//   - deleted removes the matching entry; a miss is likewise a no-op.
func Apply(list []model.Notification, ev Event) []model.Notification {
	switch ev.Kind {
	case EventCreated, EventBroadcast:
		for i := range list {
			if list[i].ID == ev.Notification.ID {
				return list
			}
		}
		return append([]model.Notification{ev.Notification}, list...)

	case EventRead:
		for i := range list {
			if list[i].ID == ev.NotificationID {
				out := make([]model.Notification, len(list))
				copy(out, list)
				out[i].Read = true
				return out
			}
		}
		return list

	case EventDeleted:
		for i := range list {
			if list[i].ID == ev.NotificationID {
				out := make([]model.Notification, 0, len(list)-1)
				out = append(out, list[:i]...)
				return append(out, list[i+1:]...)
			}
		}
		return list
	}

	return list
}
