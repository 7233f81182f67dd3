package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/models"
)

// EvaluationFilter narrows the evaluation listing. Empty slices apply no
// restriction; populated ones are ANDed set-membership predicates.
type EvaluationFilter struct {
	JudgeIDs    []uint
	QuestionIDs []string
	Verdicts    []string
}

// EvaluationRepository defines persistence operations for evaluations. Rows
// are append-only: there is no update operation by design.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	ListFiltered(ctx context.Context, filter EvaluationFilter) ([]models.Evaluation, error)
	Clear(ctx context.Context) (int64, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates a GORM-backed repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Create appends one evaluation in its own transaction. The run orchestrator
// relies on this granularity: a failed write must not roll back evaluations
// already committed for other assignments.
func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

func (r *evaluationRepository) ListFiltered(ctx context.Context, filter EvaluationFilter) ([]models.Evaluation, error) {
	query := r.db.WithContext(ctx).Model(&models.Evaluation{})

	if len(filter.JudgeIDs) > 0 {
		query = query.Where("judge_id IN ?", filter.JudgeIDs)
	}
	if len(filter.QuestionIDs) > 0 {
		query = query.Where("question_id IN ?", filter.QuestionIDs)
	}
	if len(filter.Verdicts) > 0 {
		query = query.Where("verdict IN ?", filter.Verdicts)
	}

	var evaluations []models.Evaluation
	if err := query.Order("created_at DESC").Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

func (r *evaluationRepository) Clear(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Evaluation{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
