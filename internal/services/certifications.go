package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/observability"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// CertificationReviewer drives the certification review state machine.
// Approving a request does not certify the venue; that is CertifyVenue.
type CertificationReviewer struct {
	certificationRepo repositories.CertificationRepository
	venueRepo         repositories.VenueRepository
	metrics           *observability.EngineMetrics
	now               func() time.Time
}

// NewCertificationReviewer creates a new CertificationReviewer
func NewCertificationReviewer(certificationRepo repositories.CertificationRepository, venueRepo repositories.VenueRepository) *CertificationReviewer {
	return &CertificationReviewer{
		certificationRepo: certificationRepo,
		venueRepo:         venueRepo,
		metrics:           observability.Engine(),
		now:               time.Now,
	}
}

// Transition moves a pending certification request to target
func (c *CertificationReviewer) Transition(ctx context.Context, requestID string, target models.ReviewStatus, note *string, actorID string) (*ReviewResult, error) {
	if err := checkTarget(target); err != nil {
		return nil, err
	}

	request, err := c.certificationRepo.FindByID(ctx, requestID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load certification request %s: %w", requestID, err)
	}

	changed := false
	if request.Status == models.ReviewPending {
		changed, err = c.certificationRepo.TransitionStatus(ctx, requestID, models.StatusChange{
			From:    models.ReviewPending,
			To:      target,
			Note:    note,
			ActorID: actorID,
			At:      c.now().UTC(),
		})
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("update certification request %s: %w", requestID, err)
		}
		if !changed {
			if request, err = c.certificationRepo.FindByID(ctx, requestID); err != nil {
				return nil, fmt.Errorf("reload certification request %s: %w", requestID, err)
			}
		}
	}

	if !changed {
		if request.Status != target {
			return nil, fmt.Errorf("certification request %s is %s: %w", requestID, request.Status, ErrAlreadyResolved)
		}
		if note != nil {
			if err := c.certificationRepo.SetDecisionNote(ctx, requestID, *note, actorID); err != nil {
				return nil, fmt.Errorf("update certification request %s note: %w", requestID, err)
			}
		}
	} else {
		c.metrics.ObserveTransition("certification", string(target))
	}

	log.WithFields(log.Fields{
		"request_id": requestID,
		"venue_id":   request.VenueID,
		"status":     target,
		"changed":    changed,
	}).Info("Certification request reviewed")
	return &ReviewResult{RequestID: requestID, Status: target, Changed: changed, VenueID: request.VenueID}, nil
}

// CertifyVenue marks a venue as certified
func (c *CertificationReviewer) CertifyVenue(ctx context.Context, venueID, actorID string) error {
	err := c.venueRepo.SetCertification(ctx, venueID, models.CertificationCertified, actorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrVenueNotFound
	}
	return err
}

// ListRequests lists certification requests by status; an empty status lists all
func (c *CertificationReviewer) ListRequests(ctx context.Context, status models.ReviewStatus, page, limit int) ([]*models.CertificationRequest, error) {
	return c.certificationRepo.FindByStatus(ctx, status, page, limit)
}
