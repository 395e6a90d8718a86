package api

import (
	"context"
	"fmt"

	"github.com/0097eo/chama-web/internal/model"
)

// StkPushRequest initiates an M-Pesa STK push for a contribution.
// Only the request/poll contract is consumed; the gateway itself is
// entirely server-side.
type StkPushRequest struct {
	Amount         float64 `json:"amount"`
	Phone          string  `json:"phone"`
	ContributionID string  `json:"contributionId"`
}

// InitiateStkPush asks the server to trigger an STK push on the
// member's phone. The returned checkout id is polled for completion.
func (c *Client) InitiateStkPush(ctx context.Context, req StkPushRequest) (*model.StkPushResult, error) {
	var result model.StkPushResult
	if err := c.Post(ctx, "/payments/stk-push", req, &result); err != nil {
		return nil, fmt.Errorf("initiating STK push: %w", err)
	}
	return &result, nil
}

// GetPaymentStatus polls the state of an in-flight STK push.
func (c *Client) GetPaymentStatus(ctx context.Context, checkoutRequestID string) (*model.PaymentStatus, error) {
	var status model.PaymentStatus
	if err := c.Get(ctx, "/payments/status/"+checkoutRequestID, &status); err != nil {
		return nil, fmt.Errorf("getting payment status %s: %w", checkoutRequestID, err)
	}
	return &status, nil
}

// ListTransactions returns a chama's mobile-money transaction history.
func (c *Client) ListTransactions(ctx context.Context, chamaID string) ([]model.MpesaTransaction, error) {
	var transactions []model.MpesaTransaction
	if err := c.Get(ctx, "/payments/transactions/"+chamaID, &transactions); err != nil {
		return nil, fmt.Errorf("listing transactions for chama %s: %w", chamaID, err)
	}
	return transactions, nil
}
