package api

import (
	"context"
	"fmt"

	"github.com/0097eo/chama-web/internal/model"
)

// ListContributions returns all contribution records for a chama.
func (c *Client) ListContributions(ctx context.Context, chamaID string) ([]model.Contribution, error) {
	var contributions []model.Contribution
	if err := c.Get(ctx, "/contributions/chama/"+chamaID, &contributions); err != nil {
		return nil, fmt.Errorf("listing contributions for chama %s: %w", chamaID, err)
	}
	return contributions, nil
}

// RecordContributionRequest is the payload for manually recording a
// contribution (cash or bank, as opposed to the STK push flow).
type RecordContributionRequest struct {
	MembershipID  string  `json:"membershipId"`
	Amount        float64 `json:"amount"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	PaymentMethod string  `json:"paymentMethod"`
}

// RecordContribution records a contribution payment.
func (c *Client) RecordContribution(ctx context.Context, req RecordContributionRequest) (*model.Contribution, error) {
	var contribution model.Contribution
	if err := c.Post(ctx, "/contributions", req, &contribution); err != nil {
		return nil, fmt.Errorf("recording contribution: %w", err)
	}
	return &contribution, nil
}

// ListContributionDefaulters returns members behind on contributions.
func (c *Client) ListContributionDefaulters(ctx context.Context, chamaID string) ([]model.Defaulter, error) {
	var defaulters []model.Defaulter
	if err := c.Get(ctx, "/contributions/defaulters/"+chamaID, &defaulters); err != nil {
		return nil, fmt.Errorf("listing defaulters for chama %s: %w", chamaID, err)
	}
	return defaulters, nil
}
