package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
)

var _ repositories.CampaignRepository = (*CampaignRepository)(nil)

// CampaignRepository is the in-memory campaigns collection
type CampaignRepository struct {
	s *Store
}

// Create inserts a campaign
func (r *CampaignRepository) Create(_ context.Context, campaign *models.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if campaign.ID == "" {
		campaign.ID = newID()
	}
	if _, ok := r.s.campaigns[campaign.ID]; ok {
		return fmt.Errorf("campaign %s: %w", campaign.ID, repositories.ErrDuplicate)
	}
	now := time.Now()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now
	if campaign.Rewards == nil {
		campaign.Rewards = []models.RewardDescriptor{}
	}
	r.s.campaigns[campaign.ID] = cloneCampaign(campaign)
	return nil
}

// FindByID finds a campaign by ID
func (r *CampaignRepository) FindByID(_ context.Context, id string) (*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneCampaign(c), nil
}

// FindAll lists campaigns, latest start first
func (r *CampaignRepository) FindAll(_ context.Context, pageNum, limit int) ([]*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := collect(r.s.campaigns, nil, cloneCampaign, func(a, b *models.Campaign) bool {
		return a.StartAt.After(b.StartAt)
	})
	return page(all, pageNum, limit), nil
}

// Count counts all campaigns
func (r *CampaignRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.campaigns)), nil
}

// SetActive swaps the flag and returns the previous value
func (r *CampaignRepository) SetActive(_ context.Context, id string, active bool, actorID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	previous := c.IsActive
	c.IsActive = active
	c.UpdatedBy = actorID
	c.UpdatedAt = time.Now()
	return previous, nil
}
