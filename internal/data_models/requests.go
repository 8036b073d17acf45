package dto

import "time"

type CreateTaskRequest struct {
	Title                  string     `json:"title" validate:"required,max=200"`
	Description            string     `json:"description" validate:"required,max=2000"`
	Category               string     `json:"category"`
	PricingType            string     `json:"pricing_type" validate:"required,oneof=FIXED HOURLY"`
	Price                  float64    `json:"price" validate:"required,gt=0"`
	Location               string     `json:"location" validate:"required"`
	Latitude               *float64   `json:"latitude"`
	Longitude              *float64   `json:"longitude"`
	AddressDetails         string     `json:"address_details"`
	Deadline               *time.Time `json:"deadline"`
	EstimatedDurationHours *int       `json:"estimated_duration_hours" validate:"omitempty,gt=0"`
	IsUrgent               bool       `json:"is_urgent"`
	SpecialInstructions    string     `json:"special_instructions"`
}

type ApplyRequest struct {
	Message                 string     `json:"message" validate:"max=1000"`
	ProposedPrice           *float64   `json:"proposed_price" validate:"omitempty,gt=0"`
	EstimatedCompletionTime *time.Time `json:"estimated_completion_time"`
}

type RejectApplicationRequest struct {
	ResponseMessage string `json:"response_message" validate:"max=1000"`
}

type CancelTaskRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CreateChatRequest struct {
	TaskID      string `json:"task_id" validate:"required"`
	FulfillerID string `json:"fulfiller_id"`
}

type SendMessageRequest struct {
	Content     string   `json:"content" validate:"required,max=1000"`
	Type        string   `json:"type" validate:"omitempty,oneof=TEXT IMAGE FILE LOCATION"`
	Attachments []string `json:"attachments" validate:"max=10,dive,url"`
}
