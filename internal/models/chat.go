package models

import "time"

// Chat is the single messaging channel bound to one task. The unique index on
// TaskID is the at-most-one-chat guarantee: concurrent first contact from both
// sides resolves to one row, the loser re-reads the winner's.
type Chat struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID      string    `gorm:"size:36;not null;uniqueIndex" json:"task_id"`
	PosterID    string    `gorm:"size:36;not null;index" json:"poster_id"`
	FulfillerID string    `gorm:"size:36;not null;index" json:"fulfiller_id"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasParticipant is the strict membership rule: only the poster and the
// fulfiller may read or write.
func (c *Chat) HasParticipant(userID string) bool {
	return c.PosterID == userID || c.FulfillerID == userID
}

// Counterpart returns the participant who is not userID.
func (c *Chat) Counterpart(userID string) string {
	if c.PosterID == userID {
		return c.FulfillerID
	}
	return c.PosterID
}
