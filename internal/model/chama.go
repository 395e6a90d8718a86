package model

// MembershipRole is a member's role within a single chama.
type MembershipRole string

const (
	MembershipRoleAdmin     MembershipRole = "ADMIN"
	MembershipRoleTreasurer MembershipRole = "TREASURER"
	MembershipRoleSecretary MembershipRole = "SECRETARY"
	MembershipRoleMember    MembershipRole = "MEMBER"
)

// MemberUser is the embedded subset of User returned inside a membership.
type MemberUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FullName returns the member's display name.
func (u MemberUser) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Membership ties a user to a chama with a role.
type Membership struct {
	ID       string         `json:"id"`
	Role     MembershipRole `json:"role"`
	IsActive bool           `json:"isActive"`
	User     MemberUser     `json:"user"`
	ChamaID  string         `json:"chamaId"`
}

// CanManage reports whether this membership's role is allowed to perform
// administrative actions (approve loans, broadcast, invite members).
func (m Membership) CanManage() bool {
	switch m.Role {
	case MembershipRoleAdmin, MembershipRoleTreasurer, MembershipRoleSecretary:
		return true
	}
	return false
}

// Chama is a group-savings group. It is the tenant scope that
// contributions, loans, meetings, and notifications are partitioned by.
type Chama struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	MonthlyContribution float64      `json:"monthlyContribution"`
	TotalMembers        int          `json:"totalMembers"`
	Members             []Membership `json:"members"`
	MeetingDay          string       `json:"meetingDay"`
}

// MembershipFor returns the membership for the given user id, if any.
func (c Chama) MembershipFor(userID string) (Membership, bool) {
	for _, m := range c.Members {
		if m.User.ID == userID {
			return m, true
		}
	}
	return Membership{}, false
}
