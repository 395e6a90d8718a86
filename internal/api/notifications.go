package api

import (
	"context"
	"fmt"

	"github.com/0097eo/chama-web/internal/model"
)

// ListNotifications returns the caller's notifications for a chama,
// newest first.
func (c *Client) ListNotifications(ctx context.Context, chamaID string) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := c.Get(ctx, "/notifications/chama/"+chamaID, &notifications); err != nil {
		return nil, fmt.Errorf("listing notifications for chama %s: %w", chamaID, err)
	}
	return notifications, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	if err := c.Put(ctx, "/notifications/"+notificationID+"/read", nil, nil); err != nil {
		return fmt.Errorf("marking notification %s as read: %w", notificationID, err)
	}
	return nil
}

// DeleteNotification deletes a notification.
func (c *Client) DeleteNotification(ctx context.Context, notificationID string) error {
	if err := c.Delete(ctx, "/notifications/"+notificationID); err != nil {
		return fmt.Errorf("deleting notification %s: %w", notificationID, err)
	}
	return nil
}

// BroadcastRequest is the payload for a group-wide announcement.
type BroadcastRequest struct {
	ChamaID string `json:"chamaId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Broadcast sends an announcement to all active members of a chama.
// Delivery to recipients happens via the push channel; the response
// carries no body.
func (c *Client) Broadcast(ctx context.Context, req BroadcastRequest) error {
	if err := c.Post(ctx, "/notifications/broadcast", req, nil); err != nil {
		return fmt.Errorf("broadcasting to chama %s: %w", req.ChamaID, err)
	}
	return nil
}

// ContributionReminderRequest asks the server to SMS a contribution
// reminder to one member.
type ContributionReminderRequest struct {
	ChamaID     string `json:"chamaId"`
	UserID      string `json:"userId"`
	MemberName  string `json:"memberName"`
	PhoneNumber string `json:"phoneNumber"`
}

// SendContributionReminder sends an SMS contribution reminder.
func (c *Client) SendContributionReminder(ctx context.Context, req ContributionReminderRequest) error {
	if err := c.Post(ctx, "/notifications/reminders/contribution", req, nil); err != nil {
		return fmt.Errorf("sending contribution reminder: %w", err)
	}
	return nil
}

// LoanReminderRequest asks the server to SMS a loan payment reminder.
type LoanReminderRequest struct {
	ChamaID     string `json:"chamaId"`
	LoanID      string `json:"loanId"`
	MemberName  string `json:"memberName"`
	PhoneNumber string `json:"phoneNumber"`
}

// SendLoanReminder sends an SMS loan payment reminder.
func (c *Client) SendLoanReminder(ctx context.Context, req LoanReminderRequest) error {
	if err := c.Post(ctx, "/notifications/reminders/loan", req, nil); err != nil {
		return fmt.Errorf("sending loan reminder: %w", err)
	}
	return nil
}
