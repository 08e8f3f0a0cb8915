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

const (
	// DefaultAdjustmentReason is recorded when an admin adjusts points without a reason
	DefaultAdjustmentReason = "admin adjustment"
	// DefaultBanReason is recorded when a user is banned without a reason
	DefaultBanReason = "no reason given"
)

// UserService handles user administration
type UserService struct {
	userRepo repositories.UserRepository
	ledger   *PointsLedger
	now      func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, ledger *PointsLedger) *UserService {
	return &UserService{
		userRepo: userRepo,
		ledger:   ledger,
		now:      time.Now,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetAllUsers retrieves a page of users and the total matching banned.
// A nil banned lists everyone.
func (s *UserService) GetAllUsers(ctx context.Context, banned *bool, page, limit int) ([]*models.User, int64, error) {
	filter := repositories.UserFilter{Banned: banned}
	users, err := s.userRepo.FindAll(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// BanUser bans a user, recording who did it and why
func (s *UserService) BanUser(ctx context.Context, id, reason, actorID string) error {
	if reason == "" {
		reason = DefaultBanReason
	}
	if err := s.setBanned(ctx, id, true, reason, actorID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": id, "actor": actorID, "reason": reason}).Info("User banned")
	return nil
}

// UnbanUser lifts a ban
func (s *UserService) UnbanUser(ctx context.Context, id, actorID string) error {
	if err := s.setBanned(ctx, id, false, "", actorID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": id, "actor": actorID}).Info("User unbanned")
	return nil
}

func (s *UserService) setBanned(ctx context.Context, id string, banned bool, reason, actorID string) error {
	err := s.userRepo.SetBanned(ctx, id, banned, reason, actorID, s.now().UTC())
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// SetPremium grants premium for months months or revokes it. Granting with
// months 0 keeps whatever expiry is stored; revoking clears it.
func (s *UserService) SetPremium(ctx context.Context, id string, premium bool, months int, actorID string) (*time.Time, error) {
	if months < 0 {
		return nil, fmt.Errorf("%w: months must not be negative", ErrInvalidArgument)
	}
	var expiresAt *time.Time
	if premium && months > 0 {
		t := s.now().UTC().AddDate(0, months, 0)
		expiresAt = &t
	}
	err := s.userRepo.SetPremium(ctx, id, premium, expiresAt, actorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": id, "premium": premium, "months": months, "actor": actorID}).Info("Premium status updated")
	return expiresAt, nil
}

// GetPoints returns a user's balance and history
func (s *UserService) GetPoints(ctx context.Context, id string) (int, []models.PointsEntry, error) {
	return s.ledger.Balance(ctx, id)
}

// AdjustPoints applies an admin adjustment through the ledger
func (s *UserService) AdjustPoints(ctx context.Context, id string, delta int, reason, actorID string) (int, error) {
	if delta == 0 {
		return 0, fmt.Errorf("%w: points delta must not be zero", ErrInvalidArgument)
	}
	if reason == "" {
		reason = DefaultAdjustmentReason
	}
	return s.ledger.Credit(ctx, id, delta, reason, actorID)
}
