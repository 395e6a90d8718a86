package model

import "time"

// LoanStatus tracks a loan through its lifecycle.
type LoanStatus string

const (
	LoanPending   LoanStatus = "PENDING"
	LoanApproved  LoanStatus = "APPROVED"
	LoanRejected  LoanStatus = "REJECTED"
	LoanActive    LoanStatus = "ACTIVE"
	LoanPaid      LoanStatus = "PAID"
	LoanDefaulted LoanStatus = "DEFAULTED"
)

// LoanPayment is a single repayment against a loan.
type LoanPayment struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	PaidAt        time.Time `json:"paidAt"`
	PaymentMethod string    `json:"paymentMethod"`
}

// Loan is a member loan. All amortization and eligibility math is
// computed server-side; this mirrors the response shape only.
type Loan struct {
	ID           string     `json:"id"`
	Amount       float64    `json:"amount"`
	InterestRate float64    `json:"interestRate"`
	Duration     int        `json:"duration"`
	Purpose      string     `json:"purpose"`
	Status       LoanStatus `json:"status"`

	AppliedAt   time.Time  `json:"appliedAt"`
	ApprovedAt  *time.Time `json:"approvedAt"`
	DisbursedAt *time.Time `json:"disbursedAt"`
	DueDate     *time.Time `json:"dueDate"`

	RepaymentAmount    *float64 `json:"repaymentAmount"`
	MonthlyInstallment *float64 `json:"monthlyInstallment"`

	MembershipID string        `json:"membershipId"`
	Membership   Membership    `json:"membership"`
	Payments     []LoanPayment `json:"payments"`
}

// TotalRepaid sums the recorded payments.
func (l Loan) TotalRepaid() float64 {
	var total float64
	for _, p := range l.Payments {
		total += p.Amount
	}
	return total
}

// ScheduleEntry is one installment of a loan's repayment schedule.
type ScheduleEntry struct {
	Installment int       `json:"installment"`
	DueDate     time.Time `json:"dueDate"`
	Principal   float64   `json:"principal"`
	Interest    float64   `json:"interest"`
	Total       float64   `json:"total"`
	Balance     float64   `json:"balance"`
}

// Eligibility is the server's verdict on a prospective loan.
type Eligibility struct {
	Eligible  bool    `json:"eligible"`
	MaxAmount float64 `json:"maxAmount"`
	Reason    string  `json:"reason"`
}
