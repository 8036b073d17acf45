package models

import "time"

// User is referenced by tasks, applications and chats but owned by the
// identity service. The core only reads it.
type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	FirstName     string    `gorm:"not null" json:"first_name"`
	LastName      string    `gorm:"not null" json:"last_name"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone         string    `json:"phone,omitempty"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	PhoneVerified bool      `gorm:"not null;default:false" json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsVerified gates applying for tasks: both channels must be confirmed.
func (u *User) IsVerified() bool {
	return u.EmailVerified && u.PhoneVerified
}

func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
