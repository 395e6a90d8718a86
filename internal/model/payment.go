package model

import "time"

// MpesaTransactionType distinguishes money-in from money-out.
type MpesaTransactionType string

const (
	MpesaContribution MpesaTransactionType = "Contribution"
	MpesaDisbursement MpesaTransactionType = "Disbursement"
)

// MpesaTransaction is one row of a chama's mobile-money history,
// flattened server-side for display.
type MpesaTransaction struct {
	ID         string               `json:"id"`
	Type       MpesaTransactionType `json:"type"`
	Amount     float64              `json:"amount"`
	Status     string               `json:"status"`
	MpesaCode  *string              `json:"mpesaCode"`
	Date       time.Time            `json:"date"`
	MemberName string               `json:"memberName"`

	// Contribution-only fields.
	Month          *int     `json:"month,omitempty"`
	Year           *int     `json:"year,omitempty"`
	PenaltyApplied *float64 `json:"penaltyApplied,omitempty"`

	// Disbursement-only fields.
	Purpose      *string  `json:"purpose,omitempty"`
	InterestRate *float64 `json:"interestRate,omitempty"`
	Duration     *int     `json:"duration,omitempty"`
}

// StkPushResult is the gateway's acknowledgement of a payment request.
// The checkout id is then polled for the final status.
type StkPushResult struct {
	CheckoutRequestID string `json:"checkoutRequestId"`
	ResponseCode      string `json:"responseCode"`
	CustomerMessage   string `json:"customerMessage"`
}

// PaymentStatus is the polled state of an STK push request.
type PaymentStatus struct {
	CheckoutRequestID string  `json:"checkoutRequestId"`
	Status            string  `json:"status"`
	MpesaCode         *string `json:"mpesaCode"`
	ResultDesc        string  `json:"resultDesc"`
}
