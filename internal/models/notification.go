package models

import (
	"time"

	"github.com/zephyros1603/urbanup/internal/constants"
)

type Notification struct {
	ID       string                         `gorm:"primaryKey;size:36" json:"id"`
	UserID   string                         `gorm:"size:36;not null;index" json:"user_id"`
	Kind     constants.NotificationKind     `gorm:"type:varchar(30);not null" json:"kind"`
	Priority constants.NotificationPriority `gorm:"type:varchar(10);not null" json:"priority"`
	Title    string                         `gorm:"not null" json:"title"`
	Body     string                         `gorm:"not null" json:"body"`
	DeepLink string                         `json:"deep_link,omitempty"`

	TaskID *string `gorm:"size:36;index" json:"task_id,omitempty"`
	ChatID *string `gorm:"size:36" json:"chat_id,omitempty"`

	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
