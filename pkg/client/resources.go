package client

import (
	"context"
	"net/http"
	"net/url"
)

// ============================================
// Auth
// ============================================

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, nil)
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out User
	return &out, c.do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &out)
}

func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (*User, error) {
	var out User
	return &out, c.do(ctx, http.MethodPut, "/api/auth/profile", nil, req, &out)
}

// ============================================
// Customers
// ============================================

func (c *Client) ListCustomers(ctx context.Context, search string) ([]Customer, error) {
	q := url.Values{}
	setIf(q, "q", search)
	var out []Customer
	return out, c.do(ctx, http.MethodGet, "/api/customers", q, nil, &out)
}

func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	var out Customer
	return &out, c.do(ctx, http.MethodPost, "/api/customers", nil, req, &out)
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var out Customer
	return &out, c.do(ctx, http.MethodGet, "/api/customers/"+url.PathEscape(id), nil, nil, &out)
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, req CustomerPatch) (*Customer, error) {
	var out Customer
	return &out, c.do(ctx, http.MethodPut, "/api/customers/"+url.PathEscape(id), nil, req, &out)
}

func (c *Client) AddInteraction(ctx context.Context, id string, req InteractionRequest) (*Customer, error) {
	var out Customer
	return &out, c.do(ctx, http.MethodPost, "/api/customers/"+url.PathEscape(id)+"/interactions", nil, req, &out)
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/customers/"+url.PathEscape(id), nil, nil, nil)
}

// ============================================
// Leads
// ============================================

func (c *Client) ListLeads(ctx context.Context, query LeadQuery) ([]Lead, error) {
	q := url.Values{}
	setIf(q, "stage", query.Stage)
	setIf(q, "source", query.Source)
	setIf(q, "customer", query.Customer)
	setIf(q, "q", query.Search)
	setIf(q, "sortBy", query.SortBy)
	setIf(q, "order", query.Order)
	var out []Lead
	return out, c.do(ctx, http.MethodGet, "/api/leads", q, nil, &out)
}

func (c *Client) CreateLead(ctx context.Context, req LeadRequest) (*Lead, error) {
	var out Lead
	return &out, c.do(ctx, http.MethodPost, "/api/leads", nil, req, &out)
}

func (c *Client) GetLead(ctx context.Context, id string) (*Lead, error) {
	var out Lead
	return &out, c.do(ctx, http.MethodGet, "/api/leads/"+url.PathEscape(id), nil, nil, &out)
}

func (c *Client) UpdateLead(ctx context.Context, id string, req LeadPatch) (*Lead, error) {
	var out Lead
	return &out, c.do(ctx, http.MethodPut, "/api/leads/"+url.PathEscape(id), nil, req, &out)
}

func (c *Client) DeleteLead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/leads/"+url.PathEscape(id), nil, nil, nil)
}

// ============================================
// Tasks
// ============================================

func (c *Client) ListTasks(ctx context.Context, query TaskQuery) ([]Task, error) {
	q := url.Values{}
	setIf(q, "status", query.Status)
	setIf(q, "priority", query.Priority)
	setIf(q, "relatedToModel", query.RelatedToModel)
	setIf(q, "dueDate", query.DueDate)
	setIf(q, "sortBy", query.SortBy)
	setIf(q, "order", query.Order)
	var out []Task
	return out, c.do(ctx, http.MethodGet, "/api/tasks", q, nil, &out)
}

func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (*Task, error) {
	var out Task
	return &out, c.do(ctx, http.MethodPost, "/api/tasks", nil, req, &out)
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	return &out, c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, nil, &out)
}

func (c *Client) UpdateTask(ctx context.Context, id string, req TaskPatch) (*Task, error) {
	var out Task
	return &out, c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), nil, req, &out)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// ============================================
// Dashboard
// ============================================

func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	return &out, c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, nil, &out)
}

func (c *Client) LeadPerformance(ctx context.Context) ([]DailyPerformance, error) {
	var out []DailyPerformance
	return out, c.do(ctx, http.MethodGet, "/api/dashboard/lead-performance", nil, nil, &out)
}
