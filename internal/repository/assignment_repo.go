package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	Upsert(ctx context.Context, assignment *models.Assignment) error
	List(ctx context.Context) ([]models.Assignment, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]models.Assignment, error)
	Delete(ctx context.Context, id uint) error
	Clear(ctx context.Context) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// Upsert enforces the unique (submission, question, judge) triple with
// delete-then-insert inside one transaction, so a conflicting row is replaced
// atomically rather than duplicated.
func (r *assignmentRepository) Upsert(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"submission_id = ? AND question_id = ? AND judge_id = ?",
			assignment.SubmissionID, assignment.QuestionID, assignment.JudgeID,
		).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}

		return tx.Create(assignment).Error
	})
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) Clear(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Assignment{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
