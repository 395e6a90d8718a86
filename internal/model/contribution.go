package model

import "time"

// ContributionStatus tracks the payment state of a monthly contribution.
type ContributionStatus string

const (
	ContributionPending ContributionStatus = "PENDING"
	ContributionPaid    ContributionStatus = "PAID"
	ContributionOverdue ContributionStatus = "OVERDUE"
)

// Contribution is a member's monthly contribution record.
type Contribution struct {
	ID     string             `json:"id"`
	Amount float64            `json:"amount"`
	Month  int                `json:"month"`
	Year   int                `json:"year"`
	Status ContributionStatus `json:"status"`

	// PaidAt is nil while the contribution is pending or overdue.
	PaidAt *time.Time `json:"paidAt"`

	MembershipID string `json:"membershipId"`

	// Membership carries only the member's name for display.
	Membership struct {
		User struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"user"`
	} `json:"membership"`
}

// MemberName returns the contributing member's display name.
func (c Contribution) MemberName() string {
	return c.Membership.User.FirstName + " " + c.Membership.User.LastName
}

// Defaulter is a member behind on contributions, as computed server-side.
type Defaulter struct {
	MembershipID string  `json:"membershipId"`
	MemberName   string  `json:"memberName"`
	PhoneNumber  string  `json:"phoneNumber"`
	MonthsBehind int     `json:"monthsBehind"`
	AmountOwed   float64 `json:"amountOwed"`
}
