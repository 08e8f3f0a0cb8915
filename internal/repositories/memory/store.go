// Package memory implements the repository interfaces on in-process maps.
// It backs the "memory" storage driver and the service tests.
package memory

import (
	"sort"
	"sync"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/google/uuid"
)

// Store holds all collections behind one mutex so that every repository
// method is a single atomic step, like a single-document write.
type Store struct {
	mu             sync.Mutex
	users          map[string]*models.User
	venues         map[string]*models.Venue
	coupons        map[string]*models.Coupon
	campaigns      map[string]*models.Campaign
	referrals      map[string]*models.ReferralRequest
	certifications map[string]*models.CertificationRequest
	notifications  []*models.Notification
	maintenance    *models.MaintenanceSettings
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:          make(map[string]*models.User),
		venues:         make(map[string]*models.Venue),
		coupons:        make(map[string]*models.Coupon),
		campaigns:      make(map[string]*models.Campaign),
		referrals:      make(map[string]*models.ReferralRequest),
		certifications: make(map[string]*models.CertificationRequest),
	}
}

// Repositories groups one repository per collection, all sharing a Store.
type Repositories struct {
	Users          *UserRepository
	Venues         *VenueRepository
	Coupons        *CouponRepository
	Campaigns      *CampaignRepository
	Referrals      *ReferralRepository
	Certifications *CertificationRepository
	Notifications  *NotificationRepository
	Settings       *SettingsRepository
}

// NewRepositories wires every repository to s.
func NewRepositories(s *Store) *Repositories {
	return &Repositories{
		Users:          &UserRepository{s: s},
		Venues:         &VenueRepository{s: s},
		Coupons:        &CouponRepository{s: s},
		Campaigns:      &CampaignRepository{s: s},
		Referrals:      &ReferralRepository{s: s},
		Certifications: &CertificationRepository{s: s},
		Notifications:  &NotificationRepository{s: s},
		Settings:       &SettingsRepository{s: s},
	}
}

func newID() string {
	return uuid.NewString()
}

// page applies 1-based paging to an already sorted slice. limit <= 0 returns everything.
func page[T any](items []T, pageNum, limit int) []T {
	if limit <= 0 {
		return items
	}
	if pageNum < 1 {
		pageNum = 1
	}
	start := (pageNum - 1) * limit
	if start >= len(items) {
		return items[:0]
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// collect copies matching values out of m, sorted by less.
func collect[T any](m map[string]*T, match func(*T) bool, clone func(*T) *T, less func(a, b *T) bool) []*T {
	out := []*T{}
	for _, v := range m {
		if match == nil || match(v) {
			out = append(out, clone(v))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// count counts the values of m accepted by match
func count[T any](m map[string]*T, match func(*T) bool) int64 {
	var n int64
	for _, v := range m {
		if match(v) {
			n++
		}
	}
	return n
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.PointsHistory = append([]models.PointsEntry(nil), u.PointsHistory...)
	c.PremiumExpiresAt = cloneTime(u.PremiumExpiresAt)
	c.BannedAt = cloneTime(u.BannedAt)
	return &c
}

func cloneVenue(v *models.Venue) *models.Venue {
	c := *v
	c.DietaryOptions = append([]string(nil), v.DietaryOptions...)
	c.BoostExpiresAt = cloneTime(v.BoostExpiresAt)
	c.LastInspectionDate = cloneTime(v.LastInspectionDate)
	return &c
}

func cloneCoupon(cp *models.Coupon) *models.Coupon {
	c := *cp
	c.UsedAt = cloneTime(cp.UsedAt)
	return &c
}

func cloneCampaign(cm *models.Campaign) *models.Campaign {
	c := *cm
	c.Rewards = append([]models.RewardDescriptor{}, cm.Rewards...)
	return &c
}

func cloneReferral(r *models.ReferralRequest) *models.ReferralRequest {
	c := *r
	if r.Location != nil {
		loc := *r.Location
		c.Location = &loc
	}
	c.DietaryOptions = append([]string(nil), r.DietaryOptions...)
	c.DecidedAt = cloneTime(r.DecidedAt)
	return &c
}

func cloneCertification(r *models.CertificationRequest) *models.CertificationRequest {
	c := *r
	c.DecidedAt = cloneTime(r.DecidedAt)
	return &c
}
