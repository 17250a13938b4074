// internal/models/entity.go
package models

import "time"

// Entity names as they appear in command descriptors.
const (
	EntityCustomer      = "Customer"
	EntityCopilotEntity = "CopilotEntity"
)

// CopilotEntity status vocabulary.
const (
	StatusOpen       = "Open"
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

var CopilotStatuses = []string{StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled}

type Customer struct {
	CustomerID  string     `json:"Customer_ID"`
	FullName    string     `json:"Full_Name,omitempty"`
	Username    string     `json:"Username,omitempty"`
	Email       string     `json:"Email,omitempty"`
	PhoneNumber string     `json:"Phone_Number,omitempty"`
	CreatedAt   *time.Time `json:"Created_At,omitempty"`
}

type CopilotEntity struct {
	EntityID    string     `json:"Entity_ID"`
	CustomerID  string     `json:"Customer_ID,omitempty"`
	Title       string     `json:"Title,omitempty"`
	Description string     `json:"Description,omitempty"`
	Status      string     `json:"Status,omitempty"`
	CreatedAt   *time.Time `json:"Created_At,omitempty"`
}
