package api

import (
	"context"
	"fmt"

	"github.com/0097eo/chama-web/internal/model"
)

// ListChamas returns the chamas the authenticated user belongs to.
func (c *Client) ListChamas(ctx context.Context) ([]model.Chama, error) {
	var chamas []model.Chama
	if err := c.Get(ctx, "/chamas", &chamas); err != nil {
		return nil, fmt.Errorf("listing chamas: %w", err)
	}
	return chamas, nil
}

// GetChama returns a single chama with its member list.
func (c *Client) GetChama(ctx context.Context, chamaID string) (*model.Chama, error) {
	var chama model.Chama
	if err := c.Get(ctx, "/chamas/"+chamaID, &chama); err != nil {
		return nil, fmt.Errorf("getting chama %s: %w", chamaID, err)
	}
	return &chama, nil
}

// CreateChamaRequest is the payload for creating a new chama.
type CreateChamaRequest struct {
	Name                string  `json:"name"`
	Description         string  `json:"description,omitempty"`
	MonthlyContribution float64 `json:"monthlyContribution"`
	MeetingDay          string  `json:"meetingDay,omitempty"`
}

// CreateChama creates a new chama with the caller as its admin.
func (c *Client) CreateChama(ctx context.Context, req CreateChamaRequest) (*model.Chama, error) {
	var chama model.Chama
	if err := c.Post(ctx, "/chamas", req, &chama); err != nil {
		return nil, fmt.Errorf("creating chama: %w", err)
	}
	return &chama, nil
}

// InviteMemberRequest invites a user to a chama by email.
type InviteMemberRequest struct {
	Email string               `json:"email"`
	Role  model.MembershipRole `json:"role"`
}

// InviteMember sends a membership invite for the given chama.
func (c *Client) InviteMember(ctx context.Context, chamaID string, req InviteMemberRequest) error {
	if err := c.Post(ctx, "/chamas/"+chamaID+"/members", req, nil); err != nil {
		return fmt.Errorf("inviting member to chama %s: %w", chamaID, err)
	}
	return nil
}

// GetDashboard returns the per-chama dashboard stats block.
func (c *Client) GetDashboard(ctx context.Context, chamaID string) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	if err := c.Get(ctx, "/chamas/"+chamaID+"/dashboard", &stats); err != nil {
		return nil, fmt.Errorf("getting dashboard for chama %s: %w", chamaID, err)
	}
	return &stats, nil
}
