package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
)

// ============================================
// Customer Service
// ============================================

type CustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type CustomerPatch struct {
	Name    *string `json:"name" validate:"omitnil,min=1"`
	Email   *string `json:"email" validate:"omitnil,email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}

type InteractionInput struct {
	Type  string `json:"type" validate:"required,interaction"`
	Notes string `json:"notes"`
}

type CustomerView struct {
	Customer  *repository.Customer
	CreatedBy *UserSummary
}

type CustomerService interface {
	Create(ctx context.Context, userID string, in CustomerInput) (*CustomerView, error)
	List(ctx context.Context, userID, search string) ([]*CustomerView, error)
	Get(ctx context.Context, userID, id string) (*CustomerView, error)
	Update(ctx context.Context, userID, id string, in CustomerPatch) (*CustomerView, error)
	AddInteraction(ctx context.Context, userID, id string, in InteractionInput) (*CustomerView, error)
	Delete(ctx context.Context, userID, id string) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	hooks        *writeHooks
	now          func() time.Time
}

func NewCustomerService(customerRepo repository.CustomerRepository, userRepo repository.UserRepository, hooks *writeHooks, now func() time.Time) CustomerService {
	return &customerService{customerRepo: customerRepo, userRepo: userRepo, hooks: hooks, now: now}
}

func (s *customerService) Create(ctx context.Context, userID string, in CustomerInput) (*CustomerView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	customer := &repository.Customer{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     strings.TrimSpace(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		CreatedBy: owner,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, customerWriteError(err, "create")
	}

	s.hooks.changed(ctx, owner, socket.MessageCustomerCreated, eventPayload(customer.ID))
	return s.one(ctx, customer)
}

func (s *customerService) List(ctx context.Context, userID, search string) ([]*CustomerView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	customers, err := s.customerRepo.List(ctx, repository.CustomerFilter{
		Owner:  owner,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return s.populate(ctx, customers)
}

func (s *customerService) Get(ctx context.Context, userID, id string) (*CustomerView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindOwned(ctx, oid, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	if customer == nil {
		return nil, ErrNotFound
	}
	return s.one(ctx, customer)
}

func (s *customerService) Update(ctx context.Context, userID, id string, in CustomerPatch) (*CustomerView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.Update(ctx, oid, owner, repository.CustomerUpdate{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Company: in.Company,
	})
	if err != nil {
		return nil, customerWriteError(err, "update")
	}
	if customer == nil {
		return nil, ErrNotFound
	}

	s.hooks.changed(ctx, owner, socket.MessageCustomerUpdated, eventPayload(customer.ID))
	return s.one(ctx, customer)
}

func (s *customerService) AddInteraction(ctx context.Context, userID, id string, in InteractionInput) (*CustomerView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.AddInteraction(ctx, oid, owner, repository.Interaction{
		Type:  in.Type,
		Date:  s.now().UTC(),
		Notes: strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add interaction: %w", err)
	}
	if customer == nil {
		return nil, ErrNotFound
	}

	s.hooks.changed(ctx, owner, socket.MessageInteractionAdded, eventPayload(customer.ID))
	return s.one(ctx, customer)
}

func (s *customerService) Delete(ctx context.Context, userID, id string) error {
	owner, err := parseOwner(userID)
	if err != nil {
		return err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return err
	}
	deleted, err := s.customerRepo.Delete(ctx, oid, owner)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.hooks.changed(ctx, owner, socket.MessageCustomerDeleted, eventPayload(oid))
	return nil
}

func (s *customerService) one(ctx context.Context, customer *repository.Customer) (*CustomerView, error) {
	views, err := s.populate(ctx, []*repository.Customer{customer})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *customerService) populate(ctx context.Context, customers []*repository.Customer) ([]*CustomerView, error) {
	ids := make([]bson.ObjectID, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.CreatedBy)
	}
	users, err := userSummaries(ctx, s.userRepo, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*CustomerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, &CustomerView{Customer: c, CreatedBy: users[c.CreatedBy]})
	}
	return views, nil
}

func customerWriteError(err error, op string) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return invalidField("email", "is already used by another customer")
	}
	return fmt.Errorf("failed to %s customer: %w", op, err)
}

func eventPayload(id bson.ObjectID) map[string]interface{} {
	return map[string]interface{}{"id": id.Hex()}
}
