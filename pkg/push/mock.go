package push

import (
	"context"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// MockGateway accepts every message and only logs it
type MockGateway struct {
	name string
	seq  atomic.Int64
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{name: name}
}

// Name returns the provider name
func (g *MockGateway) Name() string {
	return g.name
}

// Send pretends to deliver msg
func (g *MockGateway) Send(ctx context.Context, token string, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := fmt.Sprintf("%s-mock-%d", g.name, g.seq.Add(1))
	log.WithFields(log.Fields{
		"provider":   g.name,
		"message_id": id,
		"title":      msg.Title,
	}).Debug("Mock push delivered")
	return id, nil
}
