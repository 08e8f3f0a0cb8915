package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
)

var (
	_ repositories.ReferralRepository      = (*ReferralRepository)(nil)
	_ repositories.CertificationRepository = (*CertificationRepository)(nil)
)

// ReferralRepository is the in-memory referral requests collection
type ReferralRepository struct {
	s *Store
}

// Create inserts a referral request
func (r *ReferralRepository) Create(_ context.Context, referral *models.ReferralRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if referral.ID == "" {
		referral.ID = newID()
	}
	if _, ok := r.s.referrals[referral.ID]; ok {
		return fmt.Errorf("referral %s: %w", referral.ID, repositories.ErrDuplicate)
	}
	if referral.Status == "" {
		referral.Status = models.ReviewPending
	}
	referral.CreatedAt = time.Now()
	referral.UpdatedAt = referral.CreatedAt
	r.s.referrals[referral.ID] = cloneReferral(referral)
	return nil
}

// FindByID finds a referral request by ID
func (r *ReferralRepository) FindByID(_ context.Context, id string) (*models.ReferralRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneReferral(ref), nil
}

// FindByStatus lists referral requests in a status; empty lists all
func (r *ReferralRepository) FindByStatus(_ context.Context, status models.ReviewStatus, pageNum, limit int) ([]*models.ReferralRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := collect(r.s.referrals, referralStatus(status), cloneReferral, func(a, b *models.ReferralRequest) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return page(all, pageNum, limit), nil
}

// TransitionStatus applies change while the stored status is change.From
func (r *ReferralRepository) TransitionStatus(_ context.Context, id string, change models.StatusChange) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if ref.Status != change.From {
		return false, nil
	}
	ref.Status = change.To
	if change.Note != nil {
		ref.DecisionNote = *change.Note
	}
	at := change.At
	ref.DecidedAt = &at
	ref.DecidedBy = change.ActorID
	ref.UpdatedAt = at
	return true, nil
}

// SetDecisionNote overwrites the decision note
func (r *ReferralRepository) SetDecisionNote(_ context.Context, id string, note string, actorID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return repositories.ErrNotFound
	}
	ref.DecisionNote = note
	ref.DecidedBy = actorID
	ref.UpdatedAt = time.Now()
	return nil
}

// SetResultingVenue records venueID unless one is already recorded
func (r *ReferralRepository) SetResultingVenue(_ context.Context, id string, venueID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if ref.ResultingVenueID != "" {
		return false, nil
	}
	ref.ResultingVenueID = venueID
	ref.UpdatedAt = time.Now()
	return true, nil
}

// ClaimPointsAward flips pointsAwarded false->true
func (r *ReferralRepository) ClaimPointsAward(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if ref.PointsAwarded {
		return false, nil
	}
	ref.PointsAwarded = true
	ref.UpdatedAt = time.Now()
	return true, nil
}

// ReleasePointsAward resets pointsAwarded
func (r *ReferralRepository) ReleasePointsAward(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return repositories.ErrNotFound
	}
	ref.PointsAwarded = false
	ref.UpdatedAt = time.Now()
	return nil
}

// CertificationRepository is the in-memory certification requests collection
type CertificationRepository struct {
	s *Store
}

// Create inserts a certification request
func (r *CertificationRepository) Create(_ context.Context, request *models.CertificationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if request.ID == "" {
		request.ID = newID()
	}
	if _, ok := r.s.certifications[request.ID]; ok {
		return fmt.Errorf("certification request %s: %w", request.ID, repositories.ErrDuplicate)
	}
	if request.Status == "" {
		request.Status = models.ReviewPending
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.s.certifications[request.ID] = cloneCertification(request)
	return nil
}

// FindByID finds a certification request by ID
func (r *CertificationRepository) FindByID(_ context.Context, id string) (*models.CertificationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.certifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneCertification(req), nil
}

// FindByStatus lists certification requests in a status; empty lists all
func (r *CertificationRepository) FindByStatus(_ context.Context, status models.ReviewStatus, pageNum, limit int) ([]*models.CertificationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := collect(r.s.certifications, certificationStatus(status), cloneCertification, func(a, b *models.CertificationRequest) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return page(all, pageNum, limit), nil
}

// TransitionStatus applies change while the stored status is change.From
func (r *CertificationRepository) TransitionStatus(_ context.Context, id string, change models.StatusChange) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.certifications[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if req.Status != change.From {
		return false, nil
	}
	req.Status = change.To
	if change.Note != nil {
		req.DecisionNote = *change.Note
	}
	at := change.At
	req.DecidedAt = &at
	req.DecidedBy = change.ActorID
	req.UpdatedAt = at
	return true, nil
}

// SetDecisionNote overwrites the decision note
func (r *CertificationRepository) SetDecisionNote(_ context.Context, id string, note string, actorID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.certifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.DecisionNote = note
	req.DecidedBy = actorID
	req.UpdatedAt = time.Now()
	return nil
}

// CountByStatus counts certification requests in a status; empty counts all
func (r *CertificationRepository) CountByStatus(_ context.Context, status models.ReviewStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return count(r.s.certifications, certificationStatus(status)), nil
}

// CountByStatus counts referral requests in a status; empty counts all
func (r *ReferralRepository) CountByStatus(_ context.Context, status models.ReviewStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return count(r.s.referrals, referralStatus(status)), nil
}

func referralStatus(status models.ReviewStatus) func(*models.ReferralRequest) bool {
	return func(ref *models.ReferralRequest) bool { return status == "" || ref.Status == status }
}

func certificationStatus(status models.ReviewStatus) func(*models.CertificationRequest) bool {
	return func(req *models.CertificationRequest) bool { return status == "" || req.Status == status }
}
