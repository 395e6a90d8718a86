package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/0097eo/chama-web/internal/model"
)

// ListLoans returns all loans for a chama.
func (c *Client) ListLoans(ctx context.Context, chamaID string) ([]model.Loan, error) {
	var loans []model.Loan
	if err := c.Get(ctx, "/loans/chama/"+chamaID, &loans); err != nil {
		return nil, fmt.Errorf("listing loans for chama %s: %w", chamaID, err)
	}
	return loans, nil
}

// GetLoan returns a single loan with its payment history.
func (c *Client) GetLoan(ctx context.Context, loanID string) (*model.Loan, error) {
	var loan model.Loan
	if err := c.Get(ctx, "/loans/"+loanID, &loan); err != nil {
		return nil, fmt.Errorf("getting loan %s: %w", loanID, err)
	}
	return &loan, nil
}

// ApplyLoanRequest is the payload for a new loan application.
type ApplyLoanRequest struct {
	MembershipID string  `json:"membershipId"`
	Amount       float64 `json:"amount"`
	Duration     int     `json:"duration"`
	Purpose      string  `json:"purpose"`
}

// ApplyLoan submits a loan application.
func (c *Client) ApplyLoan(ctx context.Context, req ApplyLoanRequest) (*model.Loan, error) {
	var loan model.Loan
	if err := c.Post(ctx, "/loans", req, &loan); err != nil {
		return nil, fmt.Errorf("applying for loan: %w", err)
	}
	return &loan, nil
}

// ApproveLoan sets a pending loan's status to APPROVED or REJECTED.
func (c *Client) ApproveLoan(ctx context.Context, loanID string, status model.LoanStatus) error {
	body := map[string]string{"status": string(status)}
	if err := c.Put(ctx, "/loans/"+loanID+"/approve", body, nil); err != nil {
		return fmt.Errorf("approving loan %s: %w", loanID, err)
	}
	return nil
}

// DisburseLoan marks an approved loan as disbursed.
func (c *Client) DisburseLoan(ctx context.Context, loanID string) error {
	if err := c.Put(ctx, "/loans/"+loanID+"/disburse", nil, nil); err != nil {
		return fmt.Errorf("disbursing loan %s: %w", loanID, err)
	}
	return nil
}

// RecordLoanPaymentRequest records a repayment against a loan.
type RecordLoanPaymentRequest struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
}

// RecordLoanPayment records a repayment against an active loan.
func (c *Client) RecordLoanPayment(ctx context.Context, loanID string, req RecordLoanPaymentRequest) error {
	if err := c.Post(ctx, "/loans/"+loanID+"/payments", req, nil); err != nil {
		return fmt.Errorf("recording payment for loan %s: %w", loanID, err)
	}
	return nil
}

// GetLoanSchedule returns the server-computed repayment schedule.
func (c *Client) GetLoanSchedule(ctx context.Context, loanID string) ([]model.ScheduleEntry, error) {
	var schedule []model.ScheduleEntry
	if err := c.Get(ctx, "/loans/"+loanID+"/schedule", &schedule); err != nil {
		return nil, fmt.Errorf("getting schedule for loan %s: %w", loanID, err)
	}
	return schedule, nil
}

// CheckEligibility asks the server whether a membership qualifies for
// a loan of the given amount.
func (c *Client) CheckEligibility(ctx context.Context, membershipID string, amount float64) (*model.Eligibility, error) {
	q := url.Values{}
	q.Set("membershipId", membershipID)
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	var eligibility model.Eligibility
	if err := c.Get(ctx, "/loans/eligibility?"+q.Encode(), &eligibility); err != nil {
		return nil, fmt.Errorf("checking loan eligibility: %w", err)
	}
	return &eligibility, nil
}

// ListLoanDefaulters returns members with defaulted loans.
func (c *Client) ListLoanDefaulters(ctx context.Context, chamaID string) ([]model.Defaulter, error) {
	var defaulters []model.Defaulter
	if err := c.Get(ctx, "/loans/defaulters/"+chamaID, &defaulters); err != nil {
		return nil, fmt.Errorf("listing loan defaulters for chama %s: %w", chamaID, err)
	}
	return defaulters, nil
}
