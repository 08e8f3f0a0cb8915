package models

import (
	"time"
)

// Campaign represents a seasonal campaign targeting an audience segment
type Campaign struct {
	ID              string             `bson:"_id" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	AudienceSegment Segment            `bson:"audienceSegment" json:"audienceSegment"`
	StartAt         time.Time          `bson:"startAt" json:"startAt"`
	EndAt           time.Time          `bson:"endAt" json:"endAt"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	Rewards         []RewardDescriptor `bson:"rewards" json:"rewards"`
	CreatedBy       string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy       string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RewardDescriptor is one entry of a campaign reward template (points, coupon, ...)
type RewardDescriptor struct {
	Type        string  `bson:"type" json:"type"`
	Value       float64 `bson:"value" json:"value"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
}

// InWindow reports whether t lies within [StartAt, EndAt], both ends inclusive.
func (c *Campaign) InWindow(t time.Time) bool {
	return !t.Before(c.StartAt) && !t.After(c.EndAt)
}
