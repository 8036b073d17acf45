package models

import (
	"time"

	"github.com/zephyros1603/urbanup/internal/constants"
)

type Task struct {
	ID          string                 `gorm:"primaryKey;size:36" json:"id"`
	Title       string                 `gorm:"not null" json:"title"`
	Description string                 `gorm:"not null" json:"description"`
	Category    constants.TaskCategory `gorm:"type:varchar(30);not null" json:"category"`
	Status      constants.TaskStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PricingType constants.PricingType  `gorm:"type:varchar(10);not null" json:"pricing_type"`
	Price       float64                `gorm:"not null" json:"price"`

	Location       string   `gorm:"not null" json:"location"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	AddressDetails string   `json:"address_details,omitempty"`

	Deadline               *time.Time `json:"deadline,omitempty"`
	EstimatedDurationHours *int       `json:"estimated_duration_hours,omitempty"`
	IsUrgent               bool       `gorm:"not null;default:false" json:"is_urgent"`
	SpecialInstructions    string     `json:"special_instructions,omitempty"`

	PosterID    string  `gorm:"size:36;not null;index" json:"poster_id"`
	FulfillerID *string `gorm:"size:36;index" json:"fulfiller_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// Assigned reports whether a fulfiller is bound to the task. Holds exactly
// when the status is neither OPEN nor CANCELLED.
func (t *Task) Assigned() bool {
	return t.FulfillerID != nil
}
