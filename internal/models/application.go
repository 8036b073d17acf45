package models

import (
	"time"

	"github.com/zephyros1603/urbanup/internal/constants"
)

// TaskApplication is a fulfiller's bid on a task. The composite unique index
// makes a second apply by the same user fail at the database, which is what
// keeps concurrent duplicate applies out.
type TaskApplication struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	TaskID      string                      `gorm:"size:36;not null;uniqueIndex:idx_task_applicant;index" json:"task_id"`
	ApplicantID string                      `gorm:"size:36;not null;uniqueIndex:idx_task_applicant" json:"applicant_id"`
	Status      constants.ApplicationStatus `gorm:"type:varchar(20);not null" json:"status"`

	Message                 string     `json:"message,omitempty"`
	ResponseMessage         string     `json:"response_message,omitempty"`
	ProposedPrice           *float64   `json:"proposed_price,omitempty"`
	EstimatedCompletionTime *time.Time `json:"estimated_completion_time,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}
