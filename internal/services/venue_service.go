package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// DefaultBoostDays is used when a boost is requested without a duration
const DefaultBoostDays = 30

// VenueService handles venue administration
type VenueService struct {
	venueRepo repositories.VenueRepository
	now       func() time.Time
}

// NewVenueService creates a new VenueService
func NewVenueService(venueRepo repositories.VenueRepository) *VenueService {
	return &VenueService{
		venueRepo: venueRepo,
		now:       time.Now,
	}
}

// GetVenues lists venues, optionally filtered by a raw difficulty level
func (s *VenueService) GetVenues(ctx context.Context, difficulty string, page, limit int) ([]*models.Venue, int64, error) {
	var level models.DifficultyLevel
	if difficulty != "" {
		parsed, err := models.ParseDifficultyLevel(difficulty)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		level = parsed
	}
	venues, err := s.venueRepo.FindAll(ctx, level, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.venueRepo.Count(ctx, level)
	if err != nil {
		return nil, 0, err
	}
	return venues, total, nil
}

// GetVenueByID retrieves a venue by ID
func (s *VenueService) GetVenueByID(ctx context.Context, id string) (*models.Venue, error) {
	venue, err := s.venueRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrVenueNotFound
	}
	return venue, err
}

// SetDifficulty validates and stores a difficulty level
func (s *VenueService) SetDifficulty(ctx context.Context, id, raw, actorID string) error {
	level, err := models.ParseDifficultyLevel(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return venueErr(s.venueRepo.SetDifficulty(ctx, id, level, actorID))
}

// SetCertification validates and stores a certification status
func (s *VenueService) SetCertification(ctx context.Context, id, raw, actorID string) error {
	status, err := models.ParseCertificationStatus(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return venueErr(s.venueRepo.SetCertification(ctx, id, status, actorID))
}

// RecordInspection stores the latest inspection result
func (s *VenueService) RecordInspection(ctx context.Context, id string, date time.Time, status, actorID string) error {
	if date.IsZero() || status == "" {
		return fmt.Errorf("%w: inspection date and status are required", ErrInvalidArgument)
	}
	return venueErr(s.venueRepo.RecordInspection(ctx, id, date.UTC(), status, actorID))
}

// SetBoost boosts a venue for days days (DefaultBoostDays when 0) or removes the boost
func (s *VenueService) SetBoost(ctx context.Context, id string, boosted bool, days int, actorID string) (*time.Time, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: boost duration must not be negative", ErrInvalidArgument)
	}
	var expiresAt *time.Time
	if boosted {
		if days == 0 {
			days = DefaultBoostDays
		}
		t := s.now().UTC().AddDate(0, 0, days)
		expiresAt = &t
	}
	if err := venueErr(s.venueRepo.SetBoost(ctx, id, boosted, expiresAt, actorID)); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"venue_id": id, "boosted": boosted, "days": days, "actor": actorID}).Info("Venue boost updated")
	return expiresAt, nil
}

func venueErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrVenueNotFound
	}
	return err
}
