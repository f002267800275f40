package handlers

import (
	"github.com/Marga-Ghale/ora-crm-backend/internal/models"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth      *AuthHandler
	Customer  *CustomerHandler
	Lead      *LeadHandler
	Task      *TaskHandler
	Dashboard *DashboardHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:      &AuthHandler{authService: services.Auth},
		Customer:  &CustomerHandler{customerService: services.Customer},
		Lead:      &LeadHandler{leadService: services.Lead},
		Task:      &TaskHandler{taskService: services.Task},
		Dashboard: &DashboardHandler{dashboardService: services.Dashboard},
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toUserRef(u *service.UserSummary) *models.UserRef {
	if u == nil {
		return nil
	}
	return &models.UserRef{ID: u.ID.Hex(), Name: u.Name}
}

func toCustomerResponse(v *service.CustomerView) models.CustomerResponse {
	c := v.Customer
	interactions := make([]models.InteractionResponse, 0, len(c.Interactions))
	for _, i := range c.Interactions {
		interactions = append(interactions, models.InteractionResponse{
			ID:    i.ID.Hex(),
			Type:  i.Type,
			Date:  i.Date,
			Notes: i.Notes,
		})
	}
	return models.CustomerResponse{
		ID:           c.ID.Hex(),
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Company:      c.Company,
		Interactions: interactions,
		CreatedBy:    toUserRef(v.CreatedBy),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toCustomerList(views []*service.CustomerView) []models.CustomerResponse {
	response := make([]models.CustomerResponse, len(views))
	for i, v := range views {
		response[i] = toCustomerResponse(v)
	}
	return response
}

func toLeadResponse(v *service.LeadView) models.LeadResponse {
	l := v.Lead
	resp := models.LeadResponse{
		ID:         l.ID.Hex(),
		CustomerID: l.Customer.Hex(),
		Title:      l.Title,
		Source:     l.Source,
		Stage:      l.Stage,
		Value:      l.Value,
		Notes:      l.Notes,
		AssignedTo: toUserRef(v.AssignedTo),
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
	if v.Customer != nil {
		resp.Customer = &models.CustomerRef{ID: v.Customer.ID.Hex(), Name: v.Customer.Name, Email: v.Customer.Email}
	}
	return resp
}

func toLeadList(views []*service.LeadView) []models.LeadResponse {
	response := make([]models.LeadResponse, len(views))
	for i, v := range views {
		response[i] = toLeadResponse(v)
	}
	return response
}

func toTaskResponse(v *service.TaskView) models.TaskResponse {
	t := v.Task
	resp := models.TaskResponse{
		ID:          t.ID.Hex(),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		AssignedTo:  toUserRef(v.AssignedTo),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Related.IsNone() {
		return resp
	}

	resp.RelatedToModel = t.Related.Model
	relatedID := t.Related.ID.Hex()
	related := &models.RelatedResponse{ID: relatedID, ObjectID: relatedID, Type: service.RelatedCustomer}
	if t.Related.Model == types.ModelLead {
		related.Type = service.RelatedLead
	}
	if r := v.Related; r != nil {
		related.Email = r.Email
		related.Stage = r.Stage
		if r.Model == types.ModelLead {
			related.Title = r.Name
		} else {
			related.Name = r.Name
		}
	}
	resp.RelatedTo = related
	return resp
}

func toTaskList(views []*service.TaskView) []models.TaskResponse {
	response := make([]models.TaskResponse, len(views))
	for i, v := range views {
		response[i] = toTaskResponse(v)
	}
	return response
}
