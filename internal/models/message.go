package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zephyros1603/urbanup/internal/constants"
)

// Message belongs to exactly one chat. A nil SenderID marks a system-generated
// message; use the constructors below so the two cases stay explicit.
type Message struct {
	ID       string                `gorm:"primaryKey;size:36" json:"id"`
	ChatID   string                `gorm:"size:36;not null;index" json:"chat_id"`
	SenderID *string               `gorm:"size:36;index" json:"sender_id,omitempty"`
	Content  string                `gorm:"size:1000;not null" json:"content"`
	Type     constants.MessageType `gorm:"type:varchar(20);not null" json:"type"`

	// Attachment URLs, pipe-separated in storage. Opaque to the core; the
	// media service owns the blobs.
	Attachments string `json:"-"`

	SystemMessageData string `json:"system_message_data,omitempty"`

	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

const attachmentSeparator = "|"

// NewUserMessage builds an unread message from a human sender.
func NewUserMessage(chatID, senderID, content string, msgType constants.MessageType) *Message {
	return &Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		SenderID:  &senderID,
		Content:   content,
		Type:      msgType,
		CreatedAt: time.Now().UTC(),
	}
}

// NewSystemMessage builds a lifecycle message with no sender. System messages
// are born read.
func NewSystemMessage(chatID, content string) *Message {
	now := time.Now().UTC()
	return &Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Content:   content,
		Type:      constants.MessageSystem,
		IsRead:    true,
		ReadAt:    &now,
		CreatedAt: now,
	}
}

func (m *Message) IsSystem() bool {
	return m.SenderID == nil
}

// SentBy reports whether userID authored the message. Always false for
// system messages.
func (m *Message) SentBy(userID string) bool {
	return m.SenderID != nil && *m.SenderID == userID
}

func (m *Message) AttachmentURLs() []string {
	if m.Attachments == "" {
		return nil
	}
	return strings.Split(m.Attachments, attachmentSeparator)
}

func (m *Message) SetAttachmentURLs(urls []string) {
	m.Attachments = strings.Join(urls, attachmentSeparator)
}
