package services

import (
	"context"
	"fmt"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// Stats is the dashboard overview of the stored collections
type Stats struct {
	Users                 int64 `json:"users"`
	BannedUsers           int64 `json:"bannedUsers"`
	Venues                int64 `json:"venues"`
	Coupons               int64 `json:"coupons"`
	Campaigns             int64 `json:"campaigns"`
	Notifications         int64 `json:"notifications"`
	PendingReferrals      int64 `json:"pendingReferrals"`
	PendingCertifications int64 `json:"pendingCertifications"`
}

// StatsService builds the dashboard overview
type StatsService struct {
	userRepo          repositories.UserRepository
	venueRepo         repositories.VenueRepository
	couponRepo        repositories.CouponRepository
	campaignRepo      repositories.CampaignRepository
	referralRepo      repositories.ReferralRepository
	certificationRepo repositories.CertificationRepository
	notificationRepo  repositories.NotificationRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(
	userRepo repositories.UserRepository,
	venueRepo repositories.VenueRepository,
	couponRepo repositories.CouponRepository,
	campaignRepo repositories.CampaignRepository,
	referralRepo repositories.ReferralRepository,
	certificationRepo repositories.CertificationRepository,
	notificationRepo repositories.NotificationRepository,
) *StatsService {
	return &StatsService{
		userRepo:          userRepo,
		venueRepo:         venueRepo,
		couponRepo:        couponRepo,
		campaignRepo:      campaignRepo,
		referralRepo:      referralRepo,
		certificationRepo: certificationRepo,
		notificationRepo:  notificationRepo,
	}
}

// GetStats runs the counts concurrently. Any failed count fails the whole read.
func (s *StatsService) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	banned := true

	g, ctx := errgroup.WithContext(ctx)
	count := func(name string, dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}

	count("users", &stats.Users, func(ctx context.Context) (int64, error) {
		return s.userRepo.Count(ctx, repositories.UserFilter{})
	})
	count("banned users", &stats.BannedUsers, func(ctx context.Context) (int64, error) {
		return s.userRepo.Count(ctx, repositories.UserFilter{Banned: &banned})
	})
	count("venues", &stats.Venues, func(ctx context.Context) (int64, error) {
		return s.venueRepo.Count(ctx, "")
	})
	count("coupons", &stats.Coupons, s.couponRepo.Count)
	count("campaigns", &stats.Campaigns, s.campaignRepo.Count)
	count("notifications", &stats.Notifications, s.notificationRepo.Count)
	count("pending referrals", &stats.PendingReferrals, func(ctx context.Context) (int64, error) {
		return s.referralRepo.CountByStatus(ctx, models.ReviewPending)
	})
	count("pending certifications", &stats.PendingCertifications, func(ctx context.Context) (int64, error) {
		return s.certificationRepo.CountByStatus(ctx, models.ReviewPending)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
