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

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a PENDING application. The (task_id, applicant_id) unique
// index turns a concurrent duplicate apply into a constraint violation, which
// is surfaced as a Conflict. Check and insert are therefore one atomic unit.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.TaskApplication) error {
	err := r.db.WithContext(ctx).Create(application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.TaskApplication, error) {
	var application models.TaskApplication
	err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepository) FindByTaskAndApplicant(ctx context.Context, taskID, applicantID string) (*models.TaskApplication, error) {
	var application models.TaskApplication
	err := r.db.WithContext(ctx).
		First(&application, "task_id = ? AND applicant_id = ?", taskID, applicantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepository) ListByTask(ctx context.Context, taskID string) ([]models.TaskApplication, error) {
	var applications []models.TaskApplication
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]models.TaskApplication, error) {
	var applications []models.TaskApplication
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at desc").Find(&applications).Error
	return applications, err
}

// Respond flips a PENDING application to the given terminal status,
// conditional on it still being pending.
func (r *ApplicationRepository) Respond(ctx context.Context, applicationID string, status constants.ApplicationStatus, responseMessage string) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.TaskApplication{}).
		Where("id = ? AND status = ?", applicationID, constants.ApplicationPending).
		Updates(map[string]interface{}{
			"status":           status,
			"response_message": responseMessage,
			"responded_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrApplicationClosed
	}
	return nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context, taskID string, status constants.ApplicationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskApplication{}).
		Where("task_id = ? AND status = ?", taskID, status).
		Count(&count).Error
	return count, err
}
