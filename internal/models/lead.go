package models

import "time"

// ============================================
// Lead DTOs
// ============================================

// LeadResponse carries the customer populated when it still exists, otherwise
// CustomerID alone.
type LeadResponse struct {
	ID         string       `json:"_id"`
	Customer   *CustomerRef `json:"customer"`
	CustomerID string       `json:"customerId"`
	Title      string       `json:"title"`
	Source     string       `json:"source"`
	Stage      string       `json:"stage"`
	Value      float64      `json:"value"`
	Notes      string       `json:"notes"`
	AssignedTo *UserRef     `json:"assignedTo"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}
