package service

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

// ============================================
// Lead Service
// ============================================

type LeadInput struct {
	Customer string  `json:"customer" validate:"required"`
	Title    string  `json:"title" validate:"required"`
	Source   string  `json:"source" validate:"required,leadsource"`
	Stage    string  `json:"stage" validate:"omitempty,leadstage"`
	Value    float64 `json:"value" validate:"gte=0"`
	Notes    string  `json:"notes"`
}

type LeadPatch struct {
	Customer *string  `json:"customer" validate:"omitnil,min=1"`
	Title    *string  `json:"title" validate:"omitnil,min=1"`
	Source   *string  `json:"source" validate:"omitnil,leadsource"`
	Stage    *string  `json:"stage" validate:"omitnil,leadstage"`
	Value    *float64 `json:"value" validate:"omitnil,gte=0"`
	Notes    *string  `json:"notes"`
}

type LeadQuery struct {
	Stage    string `json:"stage" form:"stage" validate:"omitempty,leadstage"`
	Source   string `json:"source" form:"source" validate:"omitempty,leadsource"`
	Customer string `json:"customer" form:"customer"`
	Search   string `json:"q" form:"q"`
	SortBy   string `json:"sortBy" form:"sortBy" validate:"omitempty,oneof=date value stage"`
	Order    string `json:"order" form:"order" validate:"omitempty,oneof=asc desc"`
}

type LeadView struct {
	Lead       *repository.Lead
	Customer   *CustomerSummary
	AssignedTo *UserSummary
}

type LeadService interface {
	Create(ctx context.Context, userID string, in LeadInput) (*LeadView, error)
	List(ctx context.Context, userID string, q LeadQuery) ([]*LeadView, error)
	Get(ctx context.Context, userID, id string) (*LeadView, error)
	Update(ctx context.Context, userID, id string, in LeadPatch) (*LeadView, error)
	Delete(ctx context.Context, userID, id string) error
}

type leadService struct {
	leadRepo     repository.LeadRepository
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	hooks        *writeHooks
}

func NewLeadService(leadRepo repository.LeadRepository, customerRepo repository.CustomerRepository, userRepo repository.UserRepository, hooks *writeHooks) LeadService {
	return &leadService{leadRepo: leadRepo, customerRepo: customerRepo, userRepo: userRepo, hooks: hooks}
}

func (s *leadService) Create(ctx context.Context, userID string, in LeadInput) (*LeadView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	customerID, err := s.ownedCustomer(ctx, owner, in.Customer)
	if err != nil {
		return nil, err
	}
	if in.Stage == "" {
		in.Stage = types.StageNew
	}

	lead := &repository.Lead{
		Customer:   customerID,
		Title:      in.Title,
		Source:     in.Source,
		Stage:      in.Stage,
		Value:      in.Value,
		Notes:      strings.TrimSpace(in.Notes),
		AssignedTo: owner,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.hooks.changed(ctx, owner, socket.MessageLeadCreated, eventPayload(lead.ID))
	return s.one(ctx, owner, lead)
}

func (s *leadService) List(ctx context.Context, userID string, q LeadQuery) ([]*LeadView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(q); err != nil {
		return nil, err
	}

	filter := repository.LeadFilter{
		Owner:  owner,
		Stage:  q.Stage,
		Source: q.Source,
		Search: strings.TrimSpace(q.Search),
		SortBy: q.SortBy,
	}
	if filter.SortBy == "" {
		filter.SortBy = repository.LeadSortDate
	}
	switch q.Order {
	case "asc":
	case "desc":
		filter.Desc = true
	default:
		filter.Desc = filter.SortBy == repository.LeadSortDate
	}
	if q.Customer != "" {
		customerID, err := bson.ObjectIDFromHex(q.Customer)
		if err != nil {
			return nil, invalidField("customer", "must be a valid id")
		}
		filter.Customer = &customerID
	}

	leads, err := s.leadRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return populateLeads(ctx, s.customerRepo, s.userRepo, owner, leads)
}

func (s *leadService) Get(ctx context.Context, userID, id string) (*LeadView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return nil, err
	}
	lead, err := s.leadRepo.FindOwned(ctx, oid, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	if lead == nil {
		return nil, ErrNotFound
	}
	return s.one(ctx, owner, lead)
}

func (s *leadService) Update(ctx context.Context, userID, id string, in LeadPatch) (*LeadView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	update := repository.LeadUpdate{
		Title:  in.Title,
		Source: in.Source,
		Stage:  in.Stage,
		Value:  in.Value,
		Notes:  in.Notes,
	}
	if in.Customer != nil {
		customerID, err := s.ownedCustomer(ctx, owner, *in.Customer)
		if err != nil {
			return nil, err
		}
		update.Customer = &customerID
	}

	lead, err := s.leadRepo.Update(ctx, oid, owner, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	if lead == nil {
		return nil, ErrNotFound
	}

	s.hooks.changed(ctx, owner, socket.MessageLeadUpdated, eventPayload(lead.ID))
	return s.one(ctx, owner, lead)
}

func (s *leadService) Delete(ctx context.Context, userID, id string) error {
	owner, err := parseOwner(userID)
	if err != nil {
		return err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return err
	}
	deleted, err := s.leadRepo.Delete(ctx, oid, owner)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.hooks.changed(ctx, owner, socket.MessageLeadDeleted, eventPayload(oid))
	return nil
}

// ownedCustomer resolves a customer reference from a request body. It must be
// a customer of the same owner.
func (s *leadService) ownedCustomer(ctx context.Context, owner bson.ObjectID, ref string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(ref)
	if err != nil {
		return bson.NilObjectID, invalidField("customer", "must be a valid id")
	}
	customer, err := s.customerRepo.FindOwned(ctx, id, owner)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("failed to find customer: %w", err)
	}
	if customer == nil {
		return bson.NilObjectID, invalidField("customer", "does not exist")
	}
	return id, nil
}

func (s *leadService) one(ctx context.Context, owner bson.ObjectID, lead *repository.Lead) (*LeadView, error) {
	views, err := populateLeads(ctx, s.customerRepo, s.userRepo, owner, []*repository.Lead{lead})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func populateLeads(ctx context.Context, customerRepo repository.CustomerRepository, userRepo repository.UserRepository, owner bson.ObjectID, leads []*repository.Lead) ([]*LeadView, error) {
	customerIDs := make([]bson.ObjectID, 0, len(leads))
	userIDs := make([]bson.ObjectID, 0, len(leads))
	for _, l := range leads {
		customerIDs = append(customerIDs, l.Customer)
		userIDs = append(userIDs, l.AssignedTo)
	}
	customers, err := customerSummaries(ctx, customerRepo, owner, customerIDs)
	if err != nil {
		return nil, err
	}
	users, err := userSummaries(ctx, userRepo, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]*LeadView, 0, len(leads))
	for _, l := range leads {
		views = append(views, &LeadView{Lead: l, Customer: customers[l.Customer], AssignedTo: users[l.AssignedTo]})
	}
	return views, nil
}
