package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
)

var _ repositories.CouponRepository = (*CouponRepository)(nil)

// CouponRepository is the in-memory coupons collection
type CouponRepository struct {
	s *Store
}

// CreateBatch inserts coupons in order. The first coupon that collides on id
// or on (issuingBatchId, userId) stops the batch.
func (r *CouponRepository) CreateBatch(_ context.Context, coupons []*models.Coupon) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for i, c := range coupons {
		if c.ID == "" {
			c.ID = newID()
		}
		if _, ok := r.s.coupons[c.ID]; ok {
			return i, fmt.Errorf("coupon %s: %w", c.ID, repositories.ErrDuplicate)
		}
		for _, existing := range r.s.coupons {
			if existing.IssuingBatchID == c.IssuingBatchID && existing.OwnerUserID == c.OwnerUserID {
				return i, fmt.Errorf("coupon for %s in batch %s: %w", c.OwnerUserID, c.IssuingBatchID, repositories.ErrDuplicate)
			}
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		r.s.coupons[c.ID] = cloneCoupon(c)
	}
	return len(coupons), nil
}

// FindByOwner lists a user's coupons, newest first
func (r *CouponRepository) FindByOwner(_ context.Context, ownerID string, activeOnly bool, now time.Time) ([]*models.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	match := func(c *models.Coupon) bool {
		if c.OwnerUserID != ownerID {
			return false
		}
		return !activeOnly || c.Active(now)
	}
	return collect(r.s.coupons, match, cloneCoupon, func(a, b *models.Coupon) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}), nil
}

// Count counts all coupons
func (r *CouponRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.coupons)), nil
}
