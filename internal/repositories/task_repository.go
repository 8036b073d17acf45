package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zephyros1603/urbanup/internal/constants"
	apperrors "github.com/zephyros1603/urbanup/internal/errors"
	"github.com/zephyros1603/urbanup/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(task).Error
}

// Search lists tasks filtered by optional status and category. With no status
// filter only OPEN tasks are returned, matching the discovery default.
func (r *TaskRepository) Search(ctx context.Context, status constants.TaskStatus, category constants.TaskCategory, limit, offset int) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status = ?", constants.TaskOpen)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var tasks []models.Task
	err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByPoster(ctx context.Context, posterID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("poster_id = ?", posterID).
		Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByFulfiller(ctx context.Context, fulfillerID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("fulfiller_id = ?", fulfillerID).
		Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

// AcceptApplication performs the single-winner transition as one transaction:
// the task moves OPEN -> IN_PROGRESS via a conditional update keyed on the
// expected prior status, the winning application is flipped to ACCEPTED, and
// every sibling PENDING application is rejected. When two accepts race, the
// conditional update admits exactly one; the loser sees ErrTaskNotOpen.
// The rejected applications are returned so the caller can notify them.
func (r *TaskRepository) AcceptApplication(ctx context.Context, task *models.Task, application *models.TaskApplication) ([]models.TaskApplication, error) {
	now := time.Now().UTC()
	var rejected []models.TaskApplication

	// An accepted counter-offer overwrites the listed price.
	negotiated := task.Price
	if application.ProposedPrice != nil && *application.ProposedPrice != task.Price {
		negotiated = *application.ProposedPrice
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       constants.TaskInProgress,
			"fulfiller_id": application.ApplicantID,
			"price":        negotiated,
			"accepted_at":  now,
			"started_at":   now,
			"updated_at":   now,
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", task.ID, constants.TaskOpen).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrTaskNotOpen
		}

		if err := tx.Model(&models.TaskApplication{}).
			Where("id = ?", application.ID).
			Updates(map[string]interface{}{
				"status":       constants.ApplicationAccepted,
				"responded_at": now,
			}).Error; err != nil {
			return err
		}

		if err := tx.
			Where("task_id = ? AND id <> ? AND status = ?",
				task.ID, application.ID, constants.ApplicationPending).
			Find(&rejected).Error; err != nil {
			return err
		}
		if len(rejected) > 0 {
			if err := tx.Model(&models.TaskApplication{}).
				Where("task_id = ? AND id <> ? AND status = ?",
					task.ID, application.ID, constants.ApplicationPending).
				Updates(map[string]interface{}{
					"status":       constants.ApplicationRejected,
					"responded_at": now,
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	task.Status = constants.TaskInProgress
	task.FulfillerID = &application.ApplicantID
	task.Price = negotiated
	task.AcceptedAt = &now
	task.StartedAt = &now
	task.UpdatedAt = now
	application.Status = constants.ApplicationAccepted
	application.RespondedAt = &now

	for i := range rejected {
		rejected[i].Status = constants.ApplicationRejected
		rejected[i].RespondedAt = &now
	}

	return rejected, nil
}

// Cancel moves the task to CANCELLED and rejects all pending applications,
// again guarded by a conditional update on the allowed prior statuses.
func (r *TaskRepository) Cancel(ctx context.Context, task *models.Task) ([]models.TaskApplication, error) {
	now := time.Now().UTC()
	var pending []models.TaskApplication

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status IN ?", task.ID,
				[]constants.TaskStatus{constants.TaskOpen, constants.TaskAccepted}).
			Updates(map[string]interface{}{
				"status":     constants.TaskCancelled,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrTaskNotCancellable
		}

		if err := tx.
			Where("task_id = ? AND status = ?", task.ID, constants.ApplicationPending).
			Find(&pending).Error; err != nil {
			return err
		}
		if len(pending) > 0 {
			if err := tx.Model(&models.TaskApplication{}).
				Where("task_id = ? AND status = ?", task.ID, constants.ApplicationPending).
				Updates(map[string]interface{}{
					"status":       constants.ApplicationRejected,
					"responded_at": now,
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	task.Status = constants.TaskCancelled
	task.UpdatedAt = now
	for i := range pending {
		pending[i].Status = constants.ApplicationRejected
		pending[i].RespondedAt = &now
	}

	return pending, nil
}

// Transition applies a status change conditional on the expected prior
// status. Used for the completion and confirmation steps.
func (r *TaskRepository) Transition(ctx context.Context, taskID string, from, to constants.TaskStatus, stamp string, failure error) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	if stamp != "" {
		updates[stamp] = now
	}

	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", taskID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return failure
	}
	return nil
}
