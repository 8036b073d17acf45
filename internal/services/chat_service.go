package services

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zephyros1603/urbanup/internal/constants"
	apperrors "github.com/zephyros1603/urbanup/internal/errors"
	"github.com/zephyros1603/urbanup/internal/identity"
	"github.com/zephyros1603/urbanup/internal/models"
	"github.com/zephyros1603/urbanup/internal/realtime"
	repository "github.com/zephyros1603/urbanup/internal/repositories"
)

// ChatService owns the at-most-one chat per task, its membership and its
// message ordering and read state. The realtime hub is optional; with no hub
// every operation still persists and the push is simply skipped.
type ChatService struct {
	chats    *repository.ChatRepository
	messages *repository.MessageRepository
	tasks    *repository.TaskRepository
	identity identity.Service
	notifier *NotificationService
	hub      *realtime.Hub
}

func NewChatService(
	chats *repository.ChatRepository,
	messages *repository.MessageRepository,
	tasks *repository.TaskRepository,
	identitySvc identity.Service,
	notifier *NotificationService,
	hub *realtime.Hub,
) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		tasks:    tasks,
		identity: identitySvc,
		notifier: notifier,
		hub:      hub,
	}
}

// GetOrCreateTaskChat is idempotent: the task's unique chat is returned if it
// exists, otherwise created with the poster and the engaging fulfiller as its
// two fixed participants. Two concurrent first contacts resolve to a single
// row through the task-id uniqueness constraint.
func (s *ChatService) GetOrCreateTaskChat(ctx context.Context, taskID, fulfillerID string) (*models.Chat, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if fulfillerID == task.PosterID {
		return nil, apperrors.ErrOwnTask
	}

	// An existing chat is reachable only by its two participants; history
	// stays accessible even after the task closes.
	if chat, err := s.chats.FindByTaskID(ctx, taskID); err == nil {
		if !chat.HasParticipant(fulfillerID) {
			return nil, apperrors.ErrNotParticipant
		}
		return chat, nil
	} else if !apperrors.IsKind(err, apperrors.CodeNotFound) {
		return nil, err
	}

	if task.Status.Terminal() {
		return nil, apperrors.ErrTaskClosed
	}
	// Once a fulfiller is bound, nobody else can open the channel.
	if task.Assigned() && *task.FulfillerID != fulfillerID {
		return nil, apperrors.ErrNotTaskFulfiller
	}

	fulfiller, err := s.identity.ResolveUser(ctx, fulfillerID)
	if err != nil {
		return nil, err
	}

	candidate := &models.Chat{
		ID:          uuid.NewString(),
		TaskID:      task.ID,
		PosterID:    task.PosterID,
		FulfillerID: fulfiller.ID,
		IsActive:    true,
	}

	chat, err := s.chats.CreateOrFetch(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if chat.ID != candidate.ID && !chat.HasParticipant(fulfillerID) {
		// Lost a concurrent create to a different candidate.
		return nil, apperrors.ErrNotParticipant
	}

	// Only the actual creator records the initiation message; the loser of a
	// concurrent create got the winner's row back.
	if chat.ID == candidate.ID {
		poster, err := s.identity.ResolveUser(ctx, task.PosterID)
		greeting := "Chat initiated"
		if err == nil {
			greeting = "Chat initiated between " + poster.FirstName + " and " + fulfiller.FirstName
		}
		if _, err := s.SendSystemMessage(ctx, chat.ID, greeting); err != nil {
			logrus.WithError(err).WithField("chat_id", chat.ID).Warn("failed to record chat initiation message")
		}
	}

	return chat, nil
}

// SendMessage persists a participant's message and hands it to the delivery
// bus for the counterpart. Content is capped at 1000 characters; a closed
// chat rejects new messages.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, content string, msgType constants.MessageType, attachments []string) (*models.Message, error) {
	if content == "" {
		return nil, apperrors.ErrContentRequired
	}
	// The cap counts characters, not bytes, so multibyte text is not
	// penalized.
	if utf8.RuneCountInString(content) > constants.MaxMessageContentLength {
		return nil, apperrors.ErrContentTooLong
	}
	if msgType == "" {
		msgType = constants.MessageText
	}

	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, apperrors.ErrNotParticipant
	}
	if !chat.IsActive {
		return nil, apperrors.ErrChatInactive
	}

	sender, err := s.identity.ResolveUser(ctx, senderID)
	if err != nil {
		return nil, err
	}

	message := models.NewUserMessage(chat.ID, sender.ID, content, msgType)
	message.SetAttachmentURLs(attachments)

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	if err := s.chats.Touch(ctx, chat.ID); err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Warn("failed to bump chat activity")
	}

	s.broadcastMessage(chat, message, sender.DisplayName())

	recipientID := chat.Counterpart(sender.ID)
	taskTitle := ""
	if task, err := s.tasks.FindByID(ctx, chat.TaskID); err == nil {
		taskTitle = task.Title
	}
	s.notifier.NewMessage(recipientID, chat, sender.DisplayName(), taskTitle)

	return message, nil
}

// SendSystemMessage records a lifecycle event inline in the conversation.
// No sender check: only internal callers reach this.
func (s *ChatService) SendSystemMessage(ctx context.Context, chatID, content string) (*models.Message, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	message := models.NewSystemMessage(chat.ID, content)
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	if err := s.chats.Touch(ctx, chat.ID); err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Warn("failed to bump chat activity")
	}

	s.broadcastMessage(chat, message, "System")

	return message, nil
}

// SystemMessageForTask posts a lifecycle message into the task's chat if one
// exists. Tasks whose chat was never initiated skip silently: the channel is
// created lazily, never by a lifecycle event alone.
func (s *ChatService) SystemMessageForTask(ctx context.Context, taskID, content string) {
	chat, err := s.chats.FindByTaskID(ctx, taskID)
	if err != nil {
		if !apperrors.IsKind(err, apperrors.CodeNotFound) {
			logrus.WithError(err).WithField("task_id", taskID).Warn("failed to look up task chat")
		}
		return
	}
	if _, err := s.SendSystemMessage(ctx, chat.ID, content); err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Warn("failed to record lifecycle message")
	}
}

// CloseTaskChat makes the task's chat read-only, used when the task reaches a
// terminal state.
func (s *ChatService) CloseTaskChat(ctx context.Context, taskID string) {
	if err := s.chats.DeactivateByTask(ctx, taskID); err != nil {
		logrus.WithError(err).WithField("task_id", taskID).Warn("failed to close task chat")
	}
}

// MarkMessagesRead flips every unread message from the other participant and
// broadcasts a read receipt. Idempotent: nothing unread is a no-op.
func (s *ChatService) MarkMessagesRead(ctx context.Context, chatID, userID string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return apperrors.ErrNotParticipant
	}

	flipped, err := s.messages.MarkReadForRecipient(ctx, chat.ID, userID)
	if err != nil {
		return err
	}
	if flipped == 0 {
		return nil
	}

	if s.hub != nil {
		event := realtime.NewEvent(realtime.EventReadReceipt)
		event.ChatID = chat.ID
		event.UserID = userID
		event.Payload = map[string]any{"message_count": flipped}
		s.hub.PublishToChat(chat.ID, event)
	}
	return nil
}

func (s *ChatService) GetChatMessages(ctx context.Context, chatID, userID string) ([]models.Message, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return s.messages.ListByChat(ctx, chat.ID)
}

func (s *ChatService) GetChatByID(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return chat, nil
}

// ChatSummary pairs a chat with the caller's unread count in it.
type ChatSummary struct {
	models.Chat
	UnreadCount int64 `json:"unread_count"`
}

func (s *ChatService) GetUserChats(ctx context.Context, userID string) ([]ChatSummary, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for i := range chats {
		unread, err := s.messages.UnreadCountInChat(ctx, chats[i].ID, userID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ChatSummary{Chat: chats[i], UnreadCount: unread})
	}
	return summaries, nil
}

func (s *ChatService) UnreadMessageCount(ctx context.Context, userID string) (int64, error) {
	return s.messages.UnreadCountForUser(ctx, userID)
}

// CanAccessChat implements the realtime subscription gate with the same
// strict participant rule as every read path.
func (s *ChatService) CanAccessChat(ctx context.Context, chatID, userID string) bool {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return false
	}
	return chat.HasParticipant(userID)
}

func (s *ChatService) broadcastMessage(chat *models.Chat, message *models.Message, senderName string) {
	if s.hub == nil {
		return
	}

	event := realtime.NewEvent(realtime.EventMessage)
	event.ChatID = chat.ID
	if message.SenderID != nil {
		event.UserID = *message.SenderID
	}
	event.Payload = map[string]any{
		"id":          message.ID,
		"chat_id":     message.ChatID,
		"sender_id":   message.SenderID,
		"sender_name": senderName,
		"content":     message.Content,
		"type":        message.Type,
		"attachments": message.AttachmentURLs(),
		"is_read":     message.IsRead,
		"created_at":  message.CreatedAt,
	}

	// Room fanout reaches subscribed participants; the direct push covers a
	// recipient who is connected but not subscribed to this chat.
	s.hub.PublishToChat(chat.ID, event)
	if message.SenderID != nil {
		s.hub.PublishToUser(chat.Counterpart(*message.SenderID), event)
	}
}
