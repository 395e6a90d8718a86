package api

import (
	"context"
	"fmt"
	"time"

	"github.com/0097eo/chama-web/internal/model"
)

// ListMeetings returns all meetings for a chama.
func (c *Client) ListMeetings(ctx context.Context, chamaID string) ([]model.Meeting, error) {
	var meetings []model.Meeting
	if err := c.Get(ctx, "/meetings/chama/"+chamaID, &meetings); err != nil {
		return nil, fmt.Errorf("listing meetings for chama %s: %w", chamaID, err)
	}
	return meetings, nil
}

// GetMeeting returns a single meeting with its attendance records.
func (c *Client) GetMeeting(ctx context.Context, meetingID string) (*model.Meeting, error) {
	var meeting model.Meeting
	if err := c.Get(ctx, "/meetings/"+meetingID, &meeting); err != nil {
		return nil, fmt.Errorf("getting meeting %s: %w", meetingID, err)
	}
	return &meeting, nil
}

// ScheduleMeetingRequest is the payload for scheduling a meeting.
type ScheduleMeetingRequest struct {
	ChamaID      string    `json:"chamaId"`
	Title        string    `json:"title"`
	Agenda       string    `json:"agenda,omitempty"`
	Location     string    `json:"location,omitempty"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

// ScheduleMeeting creates a new meeting.
func (c *Client) ScheduleMeeting(ctx context.Context, req ScheduleMeetingRequest) (*model.Meeting, error) {
	var meeting model.Meeting
	if err := c.Post(ctx, "/meetings", req, &meeting); err != nil {
		return nil, fmt.Errorf("scheduling meeting: %w", err)
	}
	return &meeting, nil
}

// UpdateMeetingRequest carries editable meeting fields; zero values are
// omitted so partial updates work.
type UpdateMeetingRequest struct {
	Title        string     `json:"title,omitempty"`
	Agenda       string     `json:"agenda,omitempty"`
	Location     string     `json:"location,omitempty"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

// UpdateMeeting updates a scheduled meeting.
func (c *Client) UpdateMeeting(ctx context.Context, meetingID string, req UpdateMeetingRequest) (*model.Meeting, error) {
	var meeting model.Meeting
	if err := c.Put(ctx, "/meetings/"+meetingID, req, &meeting); err != nil {
		return nil, fmt.Errorf("updating meeting %s: %w", meetingID, err)
	}
	return &meeting, nil
}

// CancelMeeting deletes (cancels) a meeting.
func (c *Client) CancelMeeting(ctx context.Context, meetingID string) error {
	if err := c.Delete(ctx, "/meetings/"+meetingID); err != nil {
		return fmt.Errorf("cancelling meeting %s: %w", meetingID, err)
	}
	return nil
}

// MarkAttendance records the caller's attendance for a meeting.
func (c *Client) MarkAttendance(ctx context.Context, meetingID string) error {
	if err := c.Post(ctx, "/meetings/"+meetingID+"/attendance", nil, nil); err != nil {
		return fmt.Errorf("marking attendance for meeting %s: %w", meetingID, err)
	}
	return nil
}

// ListAttendance returns the attendance records for a meeting.
func (c *Client) ListAttendance(ctx context.Context, meetingID string) ([]model.MeetingAttendance, error) {
	var attendance []model.MeetingAttendance
	if err := c.Get(ctx, "/meetings/"+meetingID+"/attendance", &attendance); err != nil {
		return nil, fmt.Errorf("listing attendance for meeting %s: %w", meetingID, err)
	}
	return attendance, nil
}

// SaveMinutes records the minutes for a completed meeting.
func (c *Client) SaveMinutes(ctx context.Context, meetingID, minutes string) error {
	body := map[string]string{"minutes": minutes}
	if err := c.Post(ctx, "/meetings/"+meetingID+"/minutes", body, nil); err != nil {
		return fmt.Errorf("saving minutes for meeting %s: %w", meetingID, err)
	}
	return nil
}
