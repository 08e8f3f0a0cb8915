package models

import (
	"time"
)

// Notification delivery outcomes
const (
	NotificationSent      = "SENT"
	NotificationFailed    = "FAILED"
	NotificationNoAddress = "NO_ADDRESS"
)

// Notification types carried in Message.Data["type"]
const (
	NotificationTypeCoupon        = "coupon"
	NotificationTypeCampaign      = "campaign"
	NotificationTypeReferral      = "referral"
	NotificationTypeCertification = "certification"
	NotificationTypeGeneral       = "general"
)

// Notification records one delivery attempt to one user
type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Title     string    `bson:"title" json:"title"`
	Body      string    `bson:"body" json:"body"`
	Type      string    `bson:"type" json:"type"`
	Status    string    `bson:"status" json:"status"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	Provider  string    `bson:"provider,omitempty" json:"provider,omitempty"`
	MessageID string    `bson:"messageId,omitempty" json:"messageId,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Message is the payload fanned out to every recipient
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Type returns the message type carried in Data, defaulting to general.
func (m Message) Type() string {
	if t := m.Data["type"]; t != "" {
		return t
	}
	return NotificationTypeGeneral
}

// DispatchResult aggregates one fan-out. Delivered never exceeds Attempted.
type DispatchResult struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
}

// Failed returns the number of attempts that did not deliver.
func (r DispatchResult) Failed() int {
	return r.Attempted - r.Delivered
}
