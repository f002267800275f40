package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-crm-backend/internal/config"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository/memory"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

type publishedEvent struct {
	UserID string
	Type   socket.MessageType
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(userID string, msgType socket.MessageType, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Type: msgType})
}

func (p *recordingPublisher) types() []socket.MessageType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]socket.MessageType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// mapCache is a StatsCache kept in a map, with glob support for a trailing "*".
type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{items: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix, glob := strings.CutSuffix(pattern, "*")
	for key := range c.items {
		if key == pattern || (glob && strings.HasPrefix(key, prefix)) {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

type fixture struct {
	svc    *Services
	repos  *repository.Repositories
	events *recordingPublisher
	cache  *mapCache
	now    time.Time
}

// fixedNow is mid-afternoon so "today" bucket boundaries are unambiguous.
var fixedNow = time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repos:  memory.NewStore().Repositories(),
		events: &recordingPublisher{},
		cache:  newMapCache(),
		now:    fixedNow,
	}
	f.svc = NewServices(&ServiceDeps{
		Config: &config.Config{JWTSecret: "test-secret", JWTExpiry: 24, Location: time.UTC},
		Repos:  f.repos,
		Events: f.events,
		Cache:  f.cache,
		Now:    func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) user(t *testing.T, email string) string {
	t.Helper()
	u, err := f.svc.Auth.Register(context.Background(), RegisterInput{
		Email: email, Password: "secret123", Name: strings.Split(email, "@")[0],
	})
	require.NoError(t, err)
	return u.ID.Hex()
}

func (f *fixture) customer(t *testing.T, userID, email string) string {
	t.Helper()
	c, err := f.svc.Customer.Create(context.Background(), userID, CustomerInput{Name: "Customer " + email, Email: email})
	require.NoError(t, err)
	return c.Customer.ID.Hex()
}

func (f *fixture) lead(t *testing.T, userID, customerID, stage string, value float64) string {
	t.Helper()
	l, err := f.svc.Lead.Create(context.Background(), userID, LeadInput{
		Customer: customerID, Title: "Deal " + stage, Source: types.SourceReferral, Stage: stage, Value: value,
	})
	require.NoError(t, err)
	return l.Lead.ID.Hex()
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, f := range verr.Fields {
		if f.Field == field {
			return
		}
	}
	t.Fatalf("expected validation error on %q, got %v", field, verr)
}
