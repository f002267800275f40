package models

import "time"

// ============================================
// Task DTOs
// ============================================

// RelatedResponse is the populated relatedTo of a task. Type is "customer" or
// "lead"; the display fields are empty when the record no longer exists.
// ID matches the relatedTo input shape so a task's reference can be sent back
// unchanged; ObjectID mirrors it under the document-style key.
type RelatedResponse struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	ObjectID string `json:"_id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Title    string `json:"title,omitempty"`
	Stage    string `json:"stage,omitempty"`
}

type TaskResponse struct {
	ID             string           `json:"_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	DueDate        time.Time        `json:"dueDate"`
	Status         string           `json:"status"`
	Priority       string           `json:"priority"`
	AssignedTo     *UserRef         `json:"assignedTo"`
	RelatedToModel string           `json:"relatedToModel,omitempty"`
	RelatedTo      *RelatedResponse `json:"relatedTo"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}
