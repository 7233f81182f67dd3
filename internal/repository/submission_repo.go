package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/models"
)

// SubmissionRepository defines persistence operations for submissions and
// their owned questions and answers.
type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	ImportAll(ctx context.Context, submissions []*models.Submission) error
	List(ctx context.Context) ([]models.Submission, error)
	ListByQueue(ctx context.Context, queueID string) ([]models.Submission, error)
	GetByID(ctx context.Context, id string) (models.Submission, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Upsert replaces any existing submission with the same id, together with
// everything it owns, inside a single transaction. Assignments and
// evaluations referencing the replaced questions are removed as well so the
// composite references stay resolvable.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteSubmissionTree(tx, submission.ID); err != nil {
			return err
		}

		return tx.Create(submission).Error
	})
}

// ImportAll replaces every submission of a bulk import inside one
// transaction. A failure on any item rolls the whole batch back, leaving the
// store exactly as it was before the import.
func (r *submissionRepository) ImportAll(ctx context.Context, submissions []*models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, submission := range submissions {
			if err := deleteSubmissionTree(tx, submission.ID); err != nil {
				return err
			}
			if err := tx.Create(submission).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *submissionRepository) List(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Questions").
		Preload("Answers").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByQueue(ctx context.Context, queueID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Questions").
		Preload("Answers").
		Where("queue_id = ?", queueID).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Questions").
		Preload("Answers").
		First(&submission, "id = ?", id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.First(&submission, "id = ?", id).Error; err != nil {
			return err
		}

		return deleteSubmissionTree(tx, id)
	})
}

func (r *submissionRepository) Clear(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Submission{}).Count(&deleted).Error; err != nil {
			return err
		}

		for _, model := range []interface{}{
			&models.Evaluation{}, &models.Assignment{}, &models.Answer{}, &models.Question{}, &models.Submission{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func deleteSubmissionTree(tx *gorm.DB, submissionID string) error {
	for _, model := range []interface{}{
		&models.Evaluation{}, &models.Assignment{}, &models.Answer{}, &models.Question{},
	} {
		if err := tx.Where("submission_id = ?", submissionID).Delete(model).Error; err != nil {
			return err
		}
	}

	return tx.Where("id = ?", submissionID).Delete(&models.Submission{}).Error
}
