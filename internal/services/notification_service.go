package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zephyros1603/urbanup/internal/constants"
	"github.com/zephyros1603/urbanup/internal/models"
	"github.com/zephyros1603/urbanup/internal/realtime"
	repository "github.com/zephyros1603/urbanup/internal/repositories"
)

// NotificationSink accepts user-facing notifications fire-and-forget. A
// failure to enqueue or deliver never propagates back to the lifecycle
// transition that produced the notification.
type NotificationSink interface {
	Enqueue(notification *models.Notification)
}

// NotificationService is the sink implementation: a buffered queue drained by
// a small worker pool that persists each notification and best-effort pushes
// it over the realtime bus.
type NotificationService struct {
	repo  *repository.NotificationRepository
	hub   *realtime.Hub
	queue chan *models.Notification
	wg    sync.WaitGroup

	// mu serializes Enqueue against Shutdown so the queue is never closed
	// under a concurrent send.
	mu      sync.Mutex
	stopped bool
}

func NewNotificationService(repo *repository.NotificationRepository, hub *realtime.Hub, workers, queueSize int) *NotificationService {
	s := &NotificationService{
		repo:  repo,
		hub:   hub,
		queue: make(chan *models.Notification, queueSize),
	}

	for i := 1; i <= workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	return s
}

// Enqueue never blocks: a full queue drops the notification with a warning,
// and a stopped dispatcher drops silently.
func (s *NotificationService) Enqueue(notification *models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	select {
	case s.queue <- notification:
	default:
		logrus.WithFields(logrus.Fields{
			"user_id": notification.UserID,
			"kind":    notification.Kind,
		}).Warn("notification queue full, dropping")
	}
}

func (s *NotificationService) worker(workerID int) {
	defer s.wg.Done()

	for notification := range s.queue {
		ctx := context.Background()
		if err := s.repo.Create(ctx, notification); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"worker":  workerID,
				"user_id": notification.UserID,
				"kind":    notification.Kind,
			}).Error("failed to persist notification")
			continue
		}

		if s.hub != nil {
			event := realtime.NewEvent(realtime.EventNotification)
			event.UserID = notification.UserID
			event.Payload = map[string]any{
				"id":        notification.ID,
				"kind":      notification.Kind,
				"priority":  notification.Priority,
				"title":     notification.Title,
				"body":      notification.Body,
				"deep_link": notification.DeepLink,
				"task_id":   notification.TaskID,
				"chat_id":   notification.ChatID,
			}
			s.hub.PublishToUser(notification.UserID, event)
		}
	}
}

// Shutdown drains the queue, bounded by ctx.
func (s *NotificationService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("notification dispatcher drained")
	case <-ctx.Done():
		logrus.Warn("notification dispatcher shutdown timed out")
	}
}

func newNotification(userID string, kind constants.NotificationKind, priority constants.NotificationPriority, title, body, deepLink string) *models.Notification {
	return &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Priority:  priority,
		Title:     title,
		Body:      body,
		DeepLink:  deepLink,
		CreatedAt: time.Now().UTC(),
	}
}

// The builders below mirror the product copy for each lifecycle event.

func (s *NotificationService) TaskPosted(posterID string, task *models.Task) {
	n := newNotification(posterID, constants.NotifyTaskPosted, constants.PriorityNormal,
		"Task Posted Successfully",
		"Your task '"+task.Title+"' has been posted and is now live.",
		"/tasks/"+task.ID)
	n.TaskID = &task.ID
	s.Enqueue(n)
}

func (s *NotificationService) NewApplication(posterID string, task *models.Task, applicant *models.User) {
	n := newNotification(posterID, constants.NotifyNewApplication, constants.PriorityHigh,
		"New Task Application",
		applicant.DisplayName()+" has applied for your task '"+task.Title+"'.",
		"/tasks/"+task.ID+"/applications")
	n.TaskID = &task.ID
	s.Enqueue(n)
}

func (s *NotificationService) ApplicationAccepted(applicantID string, task *models.Task) {
	n := newNotification(applicantID, constants.NotifyApplicationAccepted, constants.PriorityHigh,
		"Application Accepted!",
		"Congratulations! Your application for '"+task.Title+"' has been accepted.",
		"/tasks/"+task.ID)
	n.TaskID = &task.ID
	s.Enqueue(n)
}

func (s *NotificationService) ApplicationRejected(applicantID string, task *models.Task) {
	n := newNotification(applicantID, constants.NotifyApplicationRejected, constants.PriorityNormal,
		"Application Update",
		"Your application for '"+task.Title+"' was not selected this time.",
		"/tasks/search")
	n.TaskID = &task.ID
	s.Enqueue(n)
}

func (s *NotificationService) TaskCompleted(posterID string, task *models.Task) {
	n := newNotification(posterID, constants.NotifyTaskCompleted, constants.PriorityHigh,
		"Task Completed",
		"The task '"+task.Title+"' has been marked as completed.",
		"/tasks/"+task.ID)
	n.TaskID = &task.ID
	s.Enqueue(n)
}

func (s *NotificationService) TaskCancelled(applicantID string, task *models.Task) {
	n := newNotification(applicantID, constants.NotifyTaskCancelled, constants.PriorityNormal,
		"Task Cancelled",
		"The task '"+task.Title+"' has been cancelled by the poster.",
		"/tasks/search")
	n.TaskID = &task.ID
	s.Enqueue(n)
}

func (s *NotificationService) ReviewRequest(userID string, task *models.Task) {
	n := newNotification(userID, constants.NotifyReviewRequest, constants.PriorityNormal,
		"Review Request",
		"Please leave a review for the completed task '"+task.Title+"'.",
		"/tasks/"+task.ID+"/review")
	n.TaskID = &task.ID
	s.Enqueue(n)
}

func (s *NotificationService) NewMessage(recipientID string, chat *models.Chat, senderName, taskTitle string) {
	n := newNotification(recipientID, constants.NotifyNewMessage, constants.PriorityNormal,
		"New Message",
		"You have a new message from "+senderName+" about '"+taskTitle+"'.",
		"/chats/"+chat.ID)
	n.ChatID = &chat.ID
	n.TaskID = &chat.TaskID
	s.Enqueue(n)
}

// Read paths.

func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// DeleteOlderThan sweeps read notifications past the retention window.
func (s *NotificationService) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-age))
}
