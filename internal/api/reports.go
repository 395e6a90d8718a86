package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/0097eo/chama-web/internal/model"
)

// GetFinancialSummary returns a chama's headline financial position.
func (c *Client) GetFinancialSummary(ctx context.Context, chamaID string) (*model.FinancialSummary, error) {
	var summary model.FinancialSummary
	if err := c.Get(ctx, "/reports/financial-summary/"+chamaID, &summary); err != nil {
		return nil, fmt.Errorf("getting financial summary for chama %s: %w", chamaID, err)
	}
	return &summary, nil
}

// GetLoanPortfolio returns the chama's lending book summary.
func (c *Client) GetLoanPortfolio(ctx context.Context, chamaID string) (*model.LoanPortfolioReport, error) {
	var report model.LoanPortfolioReport
	if err := c.Get(ctx, "/reports/loans/"+chamaID, &report); err != nil {
		return nil, fmt.Errorf("getting loan portfolio for chama %s: %w", chamaID, err)
	}
	return &report, nil
}

// ListAuditTrail returns a page of the chama's audit log.
func (c *Client) ListAuditTrail(ctx context.Context, chamaID string, page, limit int) ([]model.AuditLog, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var logs []model.AuditLog
	if err := c.Get(ctx, "/reports/audit-trail/"+chamaID+"?"+q.Encode(), &logs); err != nil {
		return nil, fmt.Errorf("listing audit trail for chama %s: %w", chamaID, err)
	}
	return logs, nil
}
