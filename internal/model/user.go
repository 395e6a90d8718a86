package model

import "time"

// Role is a platform-level user role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a registered platform account.
type User struct {
	// ID is the unique identifier for this user.
	ID string `json:"id"`

	// Email is the login identifier.
	Email string `json:"email"`

	// Phone is the mobile number used for SMS and M-Pesa flows.
	Phone string `json:"phone"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// IDNumber is the national ID used during registration.
	IDNumber string `json:"idNumber"`

	// Role is the platform-level role (distinct from chama membership roles).
	Role Role `json:"role"`

	CreatedAt time.Time `json:"createdAt"`
}

// FullName returns the user's display name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
