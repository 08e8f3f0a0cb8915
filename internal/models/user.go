package models

import (
	"time"
)

// Tier is the loyalty seal a user has earned. Exactly one applies at a time.
type Tier string

const (
	TierNone   Tier = "none"
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Valid reports whether t is one of the known tiers. The zero value is
// treated as TierNone.
func (t Tier) Valid() bool {
	switch t {
	case "", TierNone, TierBronze, TierSilver, TierGold:
		return true
	}
	return false
}

// PointsEntry is one line of a user's append-only points history.
// Delta is the requested change, even when the balance was clamped at zero.
type PointsEntry struct {
	Delta         int       `bson:"delta" json:"delta"`
	Reason        string    `bson:"reason" json:"reason"`
	ActorID       string    `bson:"actorId" json:"actorId"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	CorrelationID string    `bson:"correlationId,omitempty" json:"correlationId,omitempty"`
}

// User represents an app user as seen by the admin backend
type User struct {
	ID                  string        `bson:"_id" json:"id"`
	Name                string        `bson:"name,omitempty" json:"name,omitempty"`
	Email               string        `bson:"email,omitempty" json:"email,omitempty"`
	Points              int           `bson:"points" json:"points"`
	PointsHistory       []PointsEntry `bson:"pointsHistory,omitempty" json:"pointsHistory,omitempty"`
	Tier                Tier          `bson:"tier,omitempty" json:"tier,omitempty"`
	IsPremium           bool          `bson:"isPremium" json:"isPremium"`
	PremiumExpiresAt    *time.Time    `bson:"premiumExpiresAt,omitempty" json:"premiumExpiresAt,omitempty"`
	NotificationAddress string        `bson:"notificationAddress,omitempty" json:"-"`
	Banned              bool          `bson:"banned" json:"banned"`
	BanReason           string        `bson:"banReason,omitempty" json:"banReason,omitempty"`
	BannedAt            *time.Time    `bson:"bannedAt,omitempty" json:"bannedAt,omitempty"`
	BannedBy            string        `bson:"bannedBy,omitempty" json:"bannedBy,omitempty"`
	CreatedAt           time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveTier normalises the zero value to TierNone.
func (u *User) EffectiveTier() Tier {
	if u.Tier == "" {
		return TierNone
	}
	return u.Tier
}

// PremiumActive reports whether the premium flag is set and not yet expired at t.
func (u *User) PremiumActive(t time.Time) bool {
	if !u.IsPremium {
		return false
	}
	return u.PremiumExpiresAt == nil || t.Before(*u.PremiumExpiresAt)
}
