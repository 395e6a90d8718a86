package model

import "time"

// MeetingStatus tracks a meeting through scheduling and completion.
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "SCHEDULED"
	MeetingCompleted MeetingStatus = "COMPLETED"
	MeetingCancelled MeetingStatus = "CANCELLED"
)

// MeetingAttendance is one member's check-in record for a meeting.
type MeetingAttendance struct {
	ID         string    `json:"id"`
	AttendedAt time.Time `json:"attendedAt"`
	Membership struct {
		User struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"user"`
	} `json:"membership"`
}

// MemberName returns the attending member's display name.
func (a MeetingAttendance) MemberName() string {
	return a.Membership.User.FirstName + " " + a.Membership.User.LastName
}

// Meeting is a scheduled chama meeting.
type Meeting struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Agenda       string              `json:"agenda"`
	ScheduledFor time.Time           `json:"scheduledFor"`
	Location     string              `json:"location"`
	Status       MeetingStatus       `json:"status"`
	Minutes      *string             `json:"minutes"`
	ChamaID      string              `json:"chamaId"`
	Attendance   []MeetingAttendance `json:"attendance"`
}

// IsUpcoming reports whether the meeting is still scheduled and in the future.
func (m Meeting) IsUpcoming() bool {
	return m.Status == MeetingScheduled && m.ScheduledFor.After(time.Now())
}
