package client

import "github.com/Marga-Ghale/ora-crm-backend/internal/models"

// Response types are shared with the server.
type (
	User             = models.UserResponse
	LoginResponse    = models.LoginResponse
	FieldError       = models.FieldError
	Customer         = models.CustomerResponse
	Interaction      = models.InteractionResponse
	Lead             = models.LeadResponse
	Task             = models.TaskResponse
	Related          = models.RelatedResponse
	DashboardStats   = models.DashboardStatsResponse
	DailyPerformance = models.DailyPerformance
	UserRef          = models.UserRef
	CustomerRef      = models.CustomerRef
	StageSummary     = models.StageSummary
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

type CustomerPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
}

type InteractionRequest struct {
	Type  string `json:"type"`
	Notes string `json:"notes,omitempty"`
}

type LeadRequest struct {
	Customer string  `json:"customer"`
	Title    string  `json:"title"`
	Source   string  `json:"source"`
	Stage    string  `json:"stage,omitempty"`
	Value    float64 `json:"value"`
	Notes    string  `json:"notes,omitempty"`
}

type LeadPatch struct {
	Customer *string  `json:"customer,omitempty"`
	Title    *string  `json:"title,omitempty"`
	Source   *string  `json:"source,omitempty"`
	Stage    *string  `json:"stage,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

type LeadQuery struct {
	Stage    string
	Source   string
	Customer string
	Search   string
	SortBy   string
	Order    string
}

// RelatedInput selects a task's related record. Type is customer, lead or
// none; none clears the reference on update.
type RelatedInput struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

type TaskRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	DueDate     string        `json:"dueDate"`
	Status      string        `json:"status,omitempty"`
	Priority    string        `json:"priority,omitempty"`
	RelatedTo   *RelatedInput `json:"relatedTo,omitempty"`
}

type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	DueDate     *string       `json:"dueDate,omitempty"`
	Status      *string       `json:"status,omitempty"`
	Priority    *string       `json:"priority,omitempty"`
	RelatedTo   *RelatedInput `json:"relatedTo,omitempty"`
}

type TaskQuery struct {
	Status         string
	Priority       string
	RelatedToModel string
	DueDate        string // today | this-week | overdue | upcoming
	SortBy         string
	Order          string
}
