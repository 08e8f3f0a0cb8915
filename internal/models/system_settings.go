package models

import (
	"time"
)

// DefaultMaintenanceMessage is shown to app users when no message was supplied.
const DefaultMaintenanceMessage = "The app is under maintenance. Please try again later."

// MaintenanceSettings represents the app-wide maintenance switch
type MaintenanceSettings struct {
	Enabled   bool      `bson:"enabled" json:"enabled"`
	Message   string    `bson:"message" json:"message"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy string    `bson:"updatedBy" json:"updatedBy"`
}
