package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/zephyros1603/urbanup/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByChat returns the chat's messages in total order: created_at first,
// id as the tie-break.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc, id asc").Find(&messages).Error
	return messages, err
}

// MarkReadForRecipient marks every unread message in the chat that was sent
// by the other participant. System messages are born read so they never
// match. Returns how many rows flipped; zero is fine, the call is idempotent.
func (r *MessageRepository) MarkReadForRecipient(ctx context.Context, chatID, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND is_read = ? AND sender_id IS NOT NULL AND sender_id <> ?",
			chatID, false, recipientID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

// UnreadCountForUser sums, across every chat the user participates in, the
// messages not sent by them and not yet read.
func (r *MessageRepository) UnreadCountForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("(chats.poster_id = ? OR chats.fulfiller_id = ?)", userID, userID).
		Where("messages.is_read = ? AND messages.sender_id IS NOT NULL AND messages.sender_id <> ?",
			false, userID).
		Count(&count).Error
	return count, err
}

// UnreadCountInChat is the per-chat variant used when listing chats.
func (r *MessageRepository) UnreadCountInChat(ctx context.Context, chatID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("chat_id = ? AND is_read = ? AND sender_id IS NOT NULL AND sender_id <> ?",
			chatID, false, userID).
		Count(&count).Error
	return count, err
}
