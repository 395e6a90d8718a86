package model

import "time"

// NotificationType categorizes a notification. It affects display only;
// the server decides which type each event produces.
type NotificationType string

const (
	NotificationContribution NotificationType = "CONTRIBUTION"
	NotificationLoan         NotificationType = "LOAN"
	NotificationMeeting      NotificationType = "MEETING"
	NotificationGeneral      NotificationType = "GENERAL"
	NotificationReminder     NotificationType = "REMINDER"
)

// Notification is an in-app notification delivered to a chama member.
// Lists are always fetched per chama; UserID identifies the recipient.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Title is the short headline shown in lists.
	Title string `json:"title"`

	// Message is the full notification body.
	Message string `json:"message"`

	Type NotificationType `json:"type"`

	// Read flips false to true exactly once; there is no un-reading.
	Read bool `json:"read"`

	// CreatedAt orders lists newest-first and drives relative-time display.
	CreatedAt time.Time `json:"createdAt"`

	// UserID is the owning recipient.
	UserID string `json:"userId"`
}
