package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zephyros1603/urbanup/internal/constants"
	apperrors "github.com/zephyros1603/urbanup/internal/errors"
	"github.com/zephyros1603/urbanup/internal/identity"
	"github.com/zephyros1603/urbanup/internal/models"
	repository "github.com/zephyros1603/urbanup/internal/repositories"
)

// MatchingService drives the task/application state machine. Every
// successful transition persists first, then records a chat system message
// and enqueues notifications; those side effects are fire-and-forget and
// never roll a transition back.
type MatchingService struct {
	tasks        *repository.TaskRepository
	applications *repository.ApplicationRepository
	identity     identity.Service
	chat         *ChatService
	notifier     *NotificationService
}

func NewMatchingService(
	tasks *repository.TaskRepository,
	applications *repository.ApplicationRepository,
	identitySvc identity.Service,
	chat *ChatService,
	notifier *NotificationService,
) *MatchingService {
	return &MatchingService{
		tasks:        tasks,
		applications: applications,
		identity:     identitySvc,
		chat:         chat,
		notifier:     notifier,
	}
}

type CreateTaskInput struct {
	Title                  string
	Description            string
	Category               constants.TaskCategory
	PricingType            constants.PricingType
	Price                  float64
	Location               string
	Latitude               *float64
	Longitude              *float64
	AddressDetails         string
	Deadline               *time.Time
	EstimatedDurationHours *int
	IsUrgent               bool
	SpecialInstructions    string
}

func (in *CreateTaskInput) validate() error {
	if in.Title == "" {
		return apperrors.ErrTitleRequired
	}
	if in.Description == "" {
		return apperrors.ErrDescriptionRequired
	}
	if in.Price <= 0 {
		return apperrors.ErrPriceNotPositive
	}
	if in.Location == "" {
		return apperrors.Validation("location is required")
	}
	if in.PricingType != constants.PricingFixed && in.PricingType != constants.PricingHourly {
		return apperrors.Validation("pricing type must be FIXED or HOURLY")
	}
	return nil
}

// CreateTask publishes a new OPEN task for the poster.
func (s *MatchingService) CreateTask(ctx context.Context, posterID string, input CreateTaskInput) (*models.Task, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	poster, err := s.identity.ResolveUser(ctx, posterID)
	if err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = constants.CategoryOther
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:                     uuid.NewString(),
		Title:                  input.Title,
		Description:            input.Description,
		Category:               category,
		Status:                 constants.TaskOpen,
		PricingType:            input.PricingType,
		Price:                  input.Price,
		Location:               input.Location,
		Latitude:               input.Latitude,
		Longitude:              input.Longitude,
		AddressDetails:         input.AddressDetails,
		Deadline:               input.Deadline,
		EstimatedDurationHours: input.EstimatedDurationHours,
		IsUrgent:               input.IsUrgent,
		SpecialInstructions:    input.SpecialInstructions,
		PosterID:               poster.ID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.notifier.TaskPosted(poster.ID, task)

	return task, nil
}

// UpdateTask edits listing details. Permitted only to the poster and only
// while the task is still OPEN.
func (s *MatchingService) UpdateTask(ctx context.Context, taskID, posterID string, input CreateTaskInput) (*models.Task, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PosterID != posterID {
		return nil, apperrors.ErrNotTaskPoster
	}
	if task.Status != constants.TaskOpen {
		return nil, apperrors.ErrTaskNotOpen
	}

	task.Title = input.Title
	task.Description = input.Description
	if input.Category != "" {
		task.Category = input.Category
	}
	task.PricingType = input.PricingType
	task.Price = input.Price
	task.Location = input.Location
	task.Latitude = input.Latitude
	task.Longitude = input.Longitude
	task.AddressDetails = input.AddressDetails
	task.Deadline = input.Deadline
	task.EstimatedDurationHours = input.EstimatedDurationHours
	task.IsUrgent = input.IsUrgent
	task.SpecialInstructions = input.SpecialInstructions

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ApplyForTask files a PENDING application. Duplicate applications, including
// concurrent ones, are rejected through the unique (task, applicant) index.
func (s *MatchingService) ApplyForTask(ctx context.Context, taskID, applicantID, message string, proposedPrice *float64, estimatedCompletionTime *time.Time) (*models.TaskApplication, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != constants.TaskOpen {
		return nil, apperrors.ErrTaskNotOpen
	}
	if task.PosterID == applicantID {
		return nil, apperrors.ErrOwnTask
	}

	applicant, err := s.identity.ResolveUser(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if !applicant.IsVerified() {
		return nil, apperrors.ErrApplicantUnverified
	}

	// Friendly pre-check; the (task, applicant) unique index remains the
	// authority when two applies race past it.
	if _, err := s.applications.FindByTaskAndApplicant(ctx, task.ID, applicant.ID); err == nil {
		return nil, apperrors.ErrAlreadyApplied
	} else if !apperrors.IsKind(err, apperrors.CodeNotFound) {
		return nil, err
	}

	application := &models.TaskApplication{
		ID:                      uuid.NewString(),
		TaskID:                  task.ID,
		ApplicantID:             applicant.ID,
		Status:                  constants.ApplicationPending,
		Message:                 message,
		ProposedPrice:           proposedPrice,
		EstimatedCompletionTime: estimatedCompletionTime,
		CreatedAt:               time.Now().UTC(),
	}

	if err := s.applications.Create(ctx, application); err != nil {
		return nil, err
	}

	s.notifier.NewApplication(task.PosterID, task, applicant)

	return application, nil
}

// AcceptApplication picks the single winner. The read-check-and-transition is
// serialized per task by the conditional update inside the repository
// transaction: when two accepts race, exactly one wins and the other returns
// InvalidState.
func (s *MatchingService) AcceptApplication(ctx context.Context, taskID, applicationID, posterID string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PosterID != posterID {
		return nil, apperrors.ErrNotTaskPoster
	}
	if task.Status != constants.TaskOpen {
		return nil, apperrors.ErrTaskNotOpen
	}

	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if application.TaskID != task.ID {
		return nil, apperrors.ErrApplicationNotFound
	}
	if application.Status != constants.ApplicationPending {
		return nil, apperrors.ErrApplicationClosed
	}

	rejected, err := s.tasks.AcceptApplication(ctx, task, application)
	if err != nil {
		return nil, err
	}

	s.notifier.ApplicationAccepted(application.ApplicantID, task)
	for i := range rejected {
		s.notifier.ApplicationRejected(rejected[i].ApplicantID, task)
	}

	// Acceptance is one of the two moments a chat may be created.
	if _, err := s.chat.GetOrCreateTaskChat(ctx, task.ID, application.ApplicantID); err != nil {
		logrus.WithError(err).WithField("task_id", task.ID).Warn("failed to ensure task chat on acceptance")
	} else if applicant, err := s.identity.ResolveUser(ctx, application.ApplicantID); err == nil {
		s.chat.SystemMessageForTask(ctx, task.ID,
			applicant.FirstName+"'s application was accepted. The task is now in progress.")
	}

	return task, nil
}

// RejectApplication declines one PENDING application without touching the
// task.
func (s *MatchingService) RejectApplication(ctx context.Context, applicationID, posterID, responseMessage string) error {
	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return err
	}
	task, err := s.tasks.FindByID(ctx, application.TaskID)
	if err != nil {
		return err
	}
	if task.PosterID != posterID {
		return apperrors.ErrNotTaskPoster
	}

	if err := s.applications.Respond(ctx, application.ID, constants.ApplicationRejected, responseMessage); err != nil {
		return err
	}

	s.notifier.ApplicationRejected(application.ApplicantID, task)
	return nil
}

// WithdrawApplication lets an applicant retract a still-pending bid.
func (s *MatchingService) WithdrawApplication(ctx context.Context, applicationID, applicantID string) error {
	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if application.ApplicantID != applicantID {
		return apperrors.ErrNotApplicant
	}
	return s.applications.Respond(ctx, application.ID, constants.ApplicationWithdrawn, "")
}

// MarkTaskCompleted is the fulfiller's half of the completion handshake.
func (s *MatchingService) MarkTaskCompleted(ctx context.Context, taskID, fulfillerID string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.FulfillerID == nil || *task.FulfillerID != fulfillerID {
		return nil, apperrors.ErrNotTaskFulfiller
	}
	if task.Status != constants.TaskInProgress {
		return nil, apperrors.ErrTaskNotInProgress
	}

	if err := s.tasks.Transition(ctx, task.ID,
		constants.TaskInProgress, constants.TaskCompleted,
		"completed_at", apperrors.ErrTaskNotInProgress); err != nil {
		return nil, err
	}

	task, err = s.tasks.FindByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.TaskCompleted(task.PosterID, task)
	s.chat.SystemMessageForTask(ctx, task.ID,
		"The task has been marked as completed and awaits confirmation.")

	return task, nil
}

// ConfirmTaskCompletion is the poster's half: the terminal success path.
// Both parties get a review request and the chat becomes read-only.
func (s *MatchingService) ConfirmTaskCompletion(ctx context.Context, taskID, posterID string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PosterID != posterID {
		return nil, apperrors.ErrNotTaskPoster
	}
	if task.Status != constants.TaskCompleted {
		return nil, apperrors.ErrTaskNotCompleted
	}

	if err := s.tasks.Transition(ctx, task.ID,
		constants.TaskCompleted, constants.TaskConfirmed,
		"confirmed_at", apperrors.ErrTaskNotCompleted); err != nil {
		return nil, err
	}

	task, err = s.tasks.FindByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.ReviewRequest(task.PosterID, task)
	if task.FulfillerID != nil {
		s.notifier.ReviewRequest(*task.FulfillerID, task)
	}
	s.chat.SystemMessageForTask(ctx, task.ID, "The task completion has been confirmed.")
	s.chat.CloseTaskChat(ctx, task.ID)

	return task, nil
}

// CancelTask is permitted only before work starts; every pending applicant
// receives a cancellation notice.
func (s *MatchingService) CancelTask(ctx context.Context, taskID, posterID, reason string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PosterID != posterID {
		return nil, apperrors.ErrNotTaskPoster
	}

	rejected, err := s.tasks.Cancel(ctx, task)
	if err != nil {
		return nil, err
	}

	for i := range rejected {
		s.notifier.TaskCancelled(rejected[i].ApplicantID, task)
	}

	content := "The task has been cancelled by the poster."
	if reason != "" {
		content = "The task has been cancelled by the poster: " + reason
	}
	s.chat.SystemMessageForTask(ctx, task.ID, content)
	s.chat.CloseTaskChat(ctx, task.ID)

	return task, nil
}

// Read paths.

func (s *MatchingService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	return s.tasks.FindByID(ctx, taskID)
}

func (s *MatchingService) SearchTasks(ctx context.Context, status constants.TaskStatus, category constants.TaskCategory, limit, offset int) ([]models.Task, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.tasks.Search(ctx, status, category, limit, offset)
}

func (s *MatchingService) TasksByPoster(ctx context.Context, posterID string) ([]models.Task, error) {
	return s.tasks.ListByPoster(ctx, posterID)
}

func (s *MatchingService) TasksByFulfiller(ctx context.Context, fulfillerID string) ([]models.Task, error) {
	return s.tasks.ListByFulfiller(ctx, fulfillerID)
}

// ApplicationsForTask is poster-only: applicants cannot see each other.
func (s *MatchingService) ApplicationsForTask(ctx context.Context, taskID, posterID string) ([]models.TaskApplication, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.PosterID != posterID {
		return nil, apperrors.ErrNotTaskPoster
	}
	return s.applications.ListByTask(ctx, task.ID)
}

func (s *MatchingService) ApplicationsByUser(ctx context.Context, applicantID string) ([]models.TaskApplication, error) {
	return s.applications.ListByApplicant(ctx, applicantID)
}
