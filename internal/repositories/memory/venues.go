package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
)

var _ repositories.VenueRepository = (*VenueRepository)(nil)

// VenueRepository is the in-memory venues collection
type VenueRepository struct {
	s *Store
}

// Create inserts a venue; an existing id yields ErrDuplicate
func (r *VenueRepository) Create(_ context.Context, venue *models.Venue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if venue.ID == "" {
		venue.ID = newID()
	}
	if _, ok := r.s.venues[venue.ID]; ok {
		return fmt.Errorf("venue %s: %w", venue.ID, repositories.ErrDuplicate)
	}
	now := time.Now()
	venue.CreatedAt = now
	venue.UpdatedAt = now
	r.s.venues[venue.ID] = cloneVenue(venue)
	return nil
}

// FindByID finds a venue by ID
func (r *VenueRepository) FindByID(_ context.Context, id string) (*models.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.venues[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneVenue(v), nil
}

// FindAll lists venues, optionally filtered by difficulty
func (r *VenueRepository) FindAll(_ context.Context, difficulty models.DifficultyLevel, pageNum, limit int) ([]*models.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := collect(r.s.venues, difficultyMatch(difficulty), cloneVenue, func(a, b *models.Venue) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return page(all, pageNum, limit), nil
}

// Count counts venues at difficulty; empty counts all
func (r *VenueRepository) Count(_ context.Context, difficulty models.DifficultyLevel) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return count(r.s.venues, difficultyMatch(difficulty)), nil
}

func difficultyMatch(difficulty models.DifficultyLevel) func(*models.Venue) bool {
	return func(v *models.Venue) bool {
		return difficulty == "" || v.DifficultyLevel == difficulty
	}
}

// SetDifficulty updates the difficulty level
func (r *VenueRepository) SetDifficulty(_ context.Context, id string, level models.DifficultyLevel, actorID string) error {
	return r.update(id, actorID, func(v *models.Venue) { v.DifficultyLevel = level })
}

// SetCertification updates the certification status
func (r *VenueRepository) SetCertification(_ context.Context, id string, status models.CertificationStatus, actorID string) error {
	return r.update(id, actorID, func(v *models.Venue) { v.CertificationStatus = status })
}

// RecordInspection stores the latest inspection
func (r *VenueRepository) RecordInspection(_ context.Context, id string, date time.Time, status, actorID string) error {
	return r.update(id, actorID, func(v *models.Venue) {
		v.LastInspectionDate = &date
		v.LastInspectionStatus = status
	})
}

// SetBoost boosts or un-boosts a venue
func (r *VenueRepository) SetBoost(_ context.Context, id string, boosted bool, expiresAt *time.Time, actorID string) error {
	return r.update(id, actorID, func(v *models.Venue) {
		v.Boosted = boosted
		if boosted {
			v.BoostExpiresAt = cloneTime(expiresAt)
		} else {
			v.BoostExpiresAt = nil
		}
	})
}

// ExpireBoosts removes boosts whose expiry has passed
func (r *VenueRepository) ExpireBoosts(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, v := range r.s.venues {
		if v.Boosted && v.BoostExpiresAt != nil && v.BoostExpiresAt.Before(now) {
			v.Boosted = false
			v.BoostExpiresAt = nil
			v.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *VenueRepository) update(id, actorID string, fn func(*models.Venue)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.venues[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(v)
	v.UpdatedBy = actorID
	v.UpdatedAt = time.Now()
	return nil
}
