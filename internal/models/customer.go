package models

import "time"

// ============================================
// Customer DTOs
// ============================================

type InteractionResponse struct {
	ID    string    `json:"_id"`
	Type  string    `json:"type"`
	Date  time.Time `json:"date"`
	Notes string    `json:"notes"`
}

type CustomerResponse struct {
	ID           string                `json:"_id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Phone        string                `json:"phone"`
	Company      string                `json:"company"`
	Interactions []InteractionResponse `json:"interactions"`
	CreatedBy    *UserRef              `json:"createdBy"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// CustomerRef is a populated customer reference.
type CustomerRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
