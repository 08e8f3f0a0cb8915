package models

import (
	"time"
)

// Coupon is a per-user reward record created by an issuance batch.
// Only redemption mutates it after creation.
type Coupon struct {
	ID             string     `bson:"_id" json:"id"`
	OwnerUserID    string     `bson:"userId" json:"userId"`
	Code           string     `bson:"code" json:"code"`
	Description    string     `bson:"description" json:"description"`
	DiscountValue  float64    `bson:"discountValue" json:"discountValue"`
	VenueID        string     `bson:"venueId" json:"venueId"`
	VenueName      string     `bson:"venueName" json:"venueName"`
	ExpiresAt      time.Time  `bson:"expiresAt" json:"expiresAt"`
	IsUsed         bool       `bson:"isUsed" json:"isUsed"`
	UsedAt         *time.Time `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	IssuingBatchID string     `bson:"issuingBatchId" json:"issuingBatchId"`
	CreatedBy      string     `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
}

// Active reports whether the coupon can still be redeemed at t.
func (c *Coupon) Active(t time.Time) bool {
	return !c.IsUsed && c.ExpiresAt.After(t)
}

// CouponTemplate describes the coupons one issuance batch creates.
type CouponTemplate struct {
	BaseCode      string    `json:"code" validate:"required"`
	Description   string    `json:"description" validate:"required"`
	DiscountValue float64   `json:"discountValue" validate:"gt=0"`
	VenueID       string    `json:"venueId" validate:"required"`
	VenueName     string    `json:"venueName" validate:"required"`
	ExpiresAt     time.Time `json:"expiresAt" validate:"required"`
}
