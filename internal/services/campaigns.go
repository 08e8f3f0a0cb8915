package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/observability"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// ActivationResult describes what one SetActive call did
type ActivationResult struct {
	CampaignID string `json:"campaignId"`
	Active     bool   `json:"isActive"`
	Previous   bool   `json:"previous"`
	// FannedOut is true only for a real inactive->active edge inside the window
	FannedOut     bool                  `json:"fannedOut"`
	EmptyAudience bool                  `json:"emptyAudience,omitempty"`
	FanOutError   string                `json:"fanOutError,omitempty"`
	Notification  models.DispatchResult `json:"notification"`
}

// CampaignActivator toggles campaigns and announces activations
type CampaignActivator struct {
	campaignRepo repositories.CampaignRepository
	resolver     *AudienceResolver
	notifier     Notifier
	metrics      *observability.EngineMetrics
	now          func() time.Time
}

// NewCampaignActivator creates a new CampaignActivator
func NewCampaignActivator(campaignRepo repositories.CampaignRepository, resolver *AudienceResolver, notifier Notifier) *CampaignActivator {
	return &CampaignActivator{
		campaignRepo: campaignRepo,
		resolver:     resolver,
		notifier:     notifier,
		metrics:      observability.Engine(),
		now:          time.Now,
	}
}

// SetActive stores the flag. The campaign segment is notified only when the
// stored flag actually flips from false to true while now lies inside the
// campaign window. The flip is detected by an atomic swap, so concurrent
// activations announce at most once.
func (a *CampaignActivator) SetActive(ctx context.Context, campaignID string, active bool, actorID string) (*ActivationResult, error) {
	campaign, err := a.campaignRepo.FindByID(ctx, campaignID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", campaignID, err)
	}

	now := a.now()
	inWindow := campaign.InWindow(now)

	// Resolve before writing so that a store failure leaves the flag untouched.
	var (
		userIDs  []string
		empty    bool
		resolved bool
	)
	if active && !campaign.IsActive && inWindow {
		userIDs, empty, err = a.resolve(ctx, campaign)
		if err != nil {
			return nil, err
		}
		resolved = true
	}

	previous, err := a.campaignRepo.SetActive(ctx, campaignID, active, actorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update campaign %s: %w", campaignID, err)
	}

	result := &ActivationResult{CampaignID: campaignID, Active: active, Previous: previous}
	if !active || previous || !inWindow {
		a.metrics.ObserveActivation(false)
		log.WithFields(log.Fields{"campaign_id": campaignID, "active": active, "previous": previous}).Info("Campaign status updated")
		return result, nil
	}

	// The flag moved under us since the read; resolve now, after the fact.
	if !resolved {
		userIDs, empty, err = a.resolve(ctx, campaign)
		if err != nil {
			log.WithError(err).WithField("campaign_id", campaignID).Error("Campaign activated but audience could not be resolved")
			result.FanOutError = err.Error()
			a.metrics.ObserveActivation(false)
			return result, nil
		}
	}
	if empty {
		result.EmptyAudience = true
		a.metrics.ObserveActivation(false)
		log.WithField("campaign_id", campaignID).Warn("Campaign activated with an empty audience")
		return result, nil
	}

	result.FannedOut = true
	result.Notification = a.notifier.Dispatch(ctx, userIDs, campaignMessage(campaign))
	a.metrics.ObserveActivation(true)
	log.WithFields(log.Fields{
		"campaign_id": campaignID,
		"segment":     campaign.AudienceSegment,
		"attempted":   result.Notification.Attempted,
		"delivered":   result.Notification.Delivered,
	}).Info("Campaign activated")
	return result, nil
}

func (a *CampaignActivator) resolve(ctx context.Context, campaign *models.Campaign) ([]string, bool, error) {
	ids, err := a.resolver.Resolve(ctx, models.SegmentAudience(campaign.AudienceSegment))
	if errors.Is(err, ErrEmptyAudience) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return ids, false, nil
}

func campaignMessage(c *models.Campaign) models.Message {
	body := c.Title
	if body == "" {
		body = "A new campaign is available"
	}
	return models.Message{
		Title: "New campaign!",
		Body:  body,
		Data: map[string]string{
			"type":        models.NotificationTypeCampaign,
			"campaignId":  c.ID,
			"title":       c.Title,
			"description": c.Description,
		},
	}
}

// CampaignInput is the data an admin supplies to create a campaign
type CampaignInput struct {
	Title           string                    `json:"title" validate:"required"`
	Description     string                    `json:"description" validate:"required"`
	AudienceSegment string                    `json:"audienceSegment" validate:"required,oneof=all premium bronze silver gold"`
	StartAt         time.Time                 `json:"startAt" validate:"required"`
	EndAt           time.Time                 `json:"endAt" validate:"required,gtefield=StartAt"`
	Rewards         []models.RewardDescriptor `json:"rewards"`
}

// CampaignService handles campaign administration other than activation
type CampaignService struct {
	campaignRepo repositories.CampaignRepository
	validate     *validator.Validate
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(campaignRepo repositories.CampaignRepository) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		validate:     validator.New(),
	}
}

// CreateCampaign stores a new, inactive campaign. Activation goes through
// CampaignActivator so that it is announced.
func (s *CampaignService) CreateCampaign(ctx context.Context, input CampaignInput, actorID string) (*models.Campaign, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	campaign := &models.Campaign{
		Title:           input.Title,
		Description:     input.Description,
		AudienceSegment: models.Segment(input.AudienceSegment),
		StartAt:         input.StartAt.UTC(),
		EndAt:           input.EndAt.UTC(),
		IsActive:        false,
		Rewards:         input.Rewards,
		CreatedBy:       actorID,
		UpdatedBy:       actorID,
	}
	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// GetCampaign retrieves a campaign by ID
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCampaignNotFound
	}
	return campaign, err
}

// GetCampaigns lists campaigns with pagination and the total count
func (s *CampaignService) GetCampaigns(ctx context.Context, page, limit int) ([]*models.Campaign, int64, error) {
	campaigns, err := s.campaignRepo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.campaignRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}
