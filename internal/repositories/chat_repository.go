package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/zephyros1603/urbanup/internal/errors"
	"github.com/zephyros1603/urbanup/internal/models"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateOrFetch inserts the chat; when the task already has one (including a
// concurrent create racing this one) the unique index rejects the insert and
// the winner's row is returned instead.
func (r *ChatRepository) CreateOrFetch(ctx context.Context, chat *models.Chat) (*models.Chat, error) {
	err := r.db.WithContext(ctx).Create(chat).Error
	if err == nil {
		return chat, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.FindByTaskID(ctx, chat.TaskID)
	}
	return nil, err
}

func (r *ChatRepository) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepository) FindByTaskID(ctx context.Context, taskID string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).First(&chat, "task_id = ?", taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// ListByUser returns all chats the user participates in, most recently
// active first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Where("poster_id = ? OR fulfiller_id = ?", userID, userID).
		Order("updated_at desc").Find(&chats).Error
	return chats, err
}

// Touch advances the chat's last-activity marker.
func (r *ChatRepository) Touch(ctx context.Context, chatID string) error {
	return r.db.WithContext(ctx).Model(&models.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", time.Now().UTC()).Error
}

// DeactivateByTask makes the task's chat read-only. A task without a chat is
// a no-op.
func (r *ChatRepository) DeactivateByTask(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Model(&models.Chat{}).
		Where("task_id = ?", taskID).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}).Error
}
