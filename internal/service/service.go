package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/config"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
)

// EventPublisher pushes change events to a user's live connections.
type EventPublisher interface {
	Publish(userID string, msgType socket.MessageType, payload interface{})
}

// StatsCache stores computed dashboard payloads.
type StatsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, pattern string) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, socket.MessageType, interface{}) {}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth      AuthService
	Customer  CustomerService
	Lead      LeadService
	Task      TaskService
	Dashboard DashboardService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config *config.Config
	Repos  *repository.Repositories
	Events EventPublisher // optional
	Cache  StatsCache     // optional
	Now    func() time.Time
}

func NewServices(deps *ServiceDeps) *Services {
	events := deps.Events
	if events == nil {
		events = noopPublisher{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	loc := deps.Config.Location
	if loc == nil {
		loc = time.Local
	}

	dashboard := NewDashboardService(deps.Repos, deps.Cache, loc, now)
	w := &writeHooks{events: events, dashboard: dashboard}

	return &Services{
		Auth:      NewAuthService(deps.Config, deps.Repos.UserRepo, dashboard),
		Customer:  NewCustomerService(deps.Repos.CustomerRepo, deps.Repos.UserRepo, w, now),
		Lead:      NewLeadService(deps.Repos.LeadRepo, deps.Repos.CustomerRepo, deps.Repos.UserRepo, w),
		Task:      NewTaskService(deps.Repos, w, loc, now),
		Dashboard: dashboard,
	}
}

// writeHooks runs after every successful write: the owner's cached stats are
// dropped and an event is pushed to their connections.
type writeHooks struct {
	events    EventPublisher
	dashboard DashboardService
}

func (w *writeHooks) changed(ctx context.Context, owner bson.ObjectID, msgType socket.MessageType, payload interface{}) {
	w.dashboard.Invalidate(ctx, owner.Hex())
	w.events.Publish(owner.Hex(), msgType, payload)
}

// parseOwner converts the authenticated user id. Identity comes from a
// verified token, so a malformed value means the token is unusable.
func parseOwner(userID string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return bson.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

// parseResourceID treats a malformed path id as a miss.
func parseResourceID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
