package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
)

// BroadcastResult reports an ad-hoc notification
type BroadcastResult struct {
	Targeted     int                   `json:"targeted"`
	Notification models.DispatchResult `json:"notification"`
}

// NotificationService handles ad-hoc notifications and the delivery log
type NotificationService struct {
	resolver         *AudienceResolver
	notifier         Notifier
	notificationRepo repositories.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(resolver *AudienceResolver, notifier Notifier, notificationRepo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{
		resolver:         resolver,
		notifier:         notifier,
		notificationRepo: notificationRepo,
	}
}

// Broadcast resolves audience and sends msg to every member
func (s *NotificationService) Broadcast(ctx context.Context, audience models.AudienceSpec, msg models.Message) (*BroadcastResult, error) {
	if msg.Title == "" || msg.Body == "" {
		return nil, fmt.Errorf("%w: title and body are required", ErrInvalidArgument)
	}
	userIDs, err := s.resolver.Resolve(ctx, audience)
	if err != nil {
		return nil, err
	}
	return &BroadcastResult{
		Targeted:     len(userIDs),
		Notification: s.notifier.Dispatch(ctx, userIDs, msg),
	}, nil
}

// GetUserNotifications lists the delivery log of a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string, page, limit int) ([]*models.Notification, error) {
	return s.notificationRepo.FindByUserID(ctx, userID, page, limit)
}

// CouponService handles coupon queries
type CouponService struct {
	couponRepo repositories.CouponRepository
	now        func() time.Time
}

// NewCouponService creates a new CouponService
func NewCouponService(couponRepo repositories.CouponRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		now:        time.Now,
	}
}

// GetUserCoupons lists a user's coupons; activeOnly keeps unused, unexpired ones
func (s *CouponService) GetUserCoupons(ctx context.Context, userID string, activeOnly bool) ([]*models.Coupon, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidArgument)
	}
	return s.couponRepo.FindByOwner(ctx, userID, activeOnly, s.now())
}
