// Package push delivers notifications to device tokens through a push provider.
package push

import (
	"context"
	"errors"
)

// ErrUnregistered is returned when the provider reports that the device
// token is no longer valid.
var ErrUnregistered = errors.New("device token is not registered")

// Message is what a device receives
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Gateway represents a push provider
type Gateway interface {
	// Send delivers msg to one device token and returns the provider message id
	Send(ctx context.Context, token string, msg Message) (string, error)
	// Name identifies the provider in logs and delivery records
	Name() string
}
