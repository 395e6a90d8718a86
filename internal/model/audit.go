package model

import "time"

// AuditLog is a server-recorded audit event. Nested actors are trimmed to
// the display fields the backend returns.
type AuditLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"createdAt"`

	User struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"user"`

	Target *struct {
		Email string `json:"email"`
	} `json:"target"`

	Chama *struct {
		Name string `json:"name"`
	} `json:"chama"`
}

// ActorName returns the acting user's display name.
func (a AuditLog) ActorName() string {
	return a.User.FirstName + " " + a.User.LastName
}
