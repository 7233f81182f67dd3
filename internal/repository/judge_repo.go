package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/models"
)

// JudgeRepository defines persistence operations for judges.
type JudgeRepository interface {
	Create(ctx context.Context, judge *models.Judge) error
	GetByID(ctx context.Context, id uint) (models.Judge, error)
	Update(ctx context.Context, judge *models.Judge) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.Judge, error)
}

type judgeRepository struct {
	db *gorm.DB
}

// NewJudgeRepository instantiates a GORM-backed repository.
func NewJudgeRepository(db *gorm.DB) JudgeRepository {
	return &judgeRepository{db: db}
}

func (r *judgeRepository) Create(ctx context.Context, judge *models.Judge) error {
	return r.db.WithContext(ctx).Create(judge).Error
}

func (r *judgeRepository) GetByID(ctx context.Context, id uint) (models.Judge, error) {
	var judge models.Judge
	if err := r.db.WithContext(ctx).First(&judge, id).Error; err != nil {
		return models.Judge{}, err
	}

	return judge, nil
}

func (r *judgeRepository) Update(ctx context.Context, judge *models.Judge) error {
	return r.db.WithContext(ctx).Save(judge).Error
}

func (r *judgeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Judge{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *judgeRepository) List(ctx context.Context) ([]models.Judge, error) {
	var judges []models.Judge
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&judges).Error; err != nil {
		return nil, err
	}

	return judges, nil
}
