package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories/memory"
	"github.com/ArowuTest/safeplate-admin-backend/pkg/push"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestRepos(t *testing.T) *memory.Repositories {
	t.Helper()
	return memory.NewRepositories(memory.New())
}

// seedUser stores a user with a push token derived from its id unless noToken is set
func seedUser(t *testing.T, repos *memory.Repositories, id string, tier models.Tier, premium bool, noToken bool) {
	t.Helper()
	u := &models.User{ID: id, Tier: tier, IsPremium: premium}
	if !noToken {
		u.NotificationAddress = "token-" + id
	}
	require.NoError(t, repos.Users.Create(context.Background(), u))
}

// fakeGateway records every send. Tokens in fail are rejected; delay is
// applied to every send and honours ctx.
type fakeGateway struct {
	mu    sync.Mutex
	sent  map[string][]push.Message
	fail  map[string]bool
	delay time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sent: map[string][]push.Message{}, fail: map[string]bool{}}
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) Send(ctx context.Context, token string, msg push.Message) (string, error) {
	cur := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		peak := g.peak.Load()
		if cur <= peak || g.peak.CompareAndSwap(peak, cur) {
			break
		}
	}

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.fail[token] {
		return "", errors.New("provider rejected token")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent[token] = append(g.sent[token], msg)
	return "msg-" + token, nil
}

func (g *fakeGateway) sentTo(token string) []push.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]push.Message(nil), g.sent[token]...)
}

func (g *fakeGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, msgs := range g.sent {
		n += len(msgs)
	}
	return n
}

// recordingNotifier captures Dispatch calls and reports every user as delivered
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	userIDs []string
	msg     models.Message
}

func (n *recordingNotifier) Dispatch(_ context.Context, userIDs []string, msg models.Message) models.DispatchResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{userIDs: append([]string(nil), userIDs...), msg: msg})
	return models.DispatchResult{Attempted: len(userIDs), Delivered: len(userIDs)}
}

func (n *recordingNotifier) Calls() []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifyCall(nil), n.calls...)
}

func strPtr(s string) *string { return &s }
