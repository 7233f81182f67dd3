package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Submission{},
		&models.Question{},
		&models.Answer{},
		&models.Judge{},
		&models.Assignment{},
		&models.Evaluation{},
	))
	return db
}

func TestSubmissionRepositoryUpsertReplacesTree(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	first := &models.Submission{
		ID:        "sub_1",
		QueueID:   "queue_1",
		TaskID:    "task_1",
		CreatedAt: 1714000000000,
		Questions: []models.Question{
			{ID: "q1", Rev: 1, QuestionType: "single-choice-task", QuestionText: "Is the sky blue?"},
			{ID: "q2", Rev: 1, QuestionType: "free-text", QuestionText: "Explain."},
		},
		Answers: []models.Answer{
			{QuestionID: "q1", Choice: "yes"},
			{QuestionID: "q2", Choice: "because", Reasoning: "it scatters light"},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), first))

	// Simulate downstream rows referencing the first import.
	require.NoError(t, db.Create(&models.Assignment{SubmissionID: "sub_1", QuestionID: "q2", JudgeID: 1}).Error)
	require.NoError(t, db.Create(&models.Evaluation{SubmissionID: "sub_1", QuestionID: "q2", JudgeID: 1, Verdict: models.VerdictPass}).Error)

	replacement := &models.Submission{
		ID:        "sub_1",
		QueueID:   "queue_2",
		TaskID:    "task_1",
		CreatedAt: 1715000000000,
		Questions: []models.Question{
			{ID: "q1", Rev: 2, QuestionType: "single-choice-task", QuestionText: "Is the sky blue at noon?"},
		},
		Answers: []models.Answer{
			{QuestionID: "q1", Choice: "yes"},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), replacement))

	stored, err := repo.GetByID(context.Background(), "sub_1")
	require.NoError(t, err)
	require.Equal(t, "queue_2", stored.QueueID)
	require.Len(t, stored.Questions, 1)
	require.Equal(t, 2, stored.Questions[0].Rev)
	require.Len(t, stored.Answers, 1)

	var danglingAssignments, danglingEvaluations int64
	require.NoError(t, db.Model(&models.Assignment{}).Where("submission_id = ?", "sub_1").Count(&danglingAssignments).Error)
	require.NoError(t, db.Model(&models.Evaluation{}).Where("submission_id = ?", "sub_1").Count(&danglingEvaluations).Error)
	require.Zero(t, danglingAssignments, "assignments referencing replaced questions must be removed")
	require.Zero(t, danglingEvaluations, "evaluations referencing replaced questions must be removed")
}

func TestSubmissionRepositoryImportAllRollsBackWholeBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	valid := &models.Submission{
		ID:      "sub_ok",
		QueueID: "queue_1",
		Questions: []models.Question{
			{ID: "q1", Rev: 1, QuestionText: "Is the sky blue?"},
		},
		Answers: []models.Answer{
			{QuestionID: "q1", Choice: "yes"},
		},
	}
	// Two answers for the same question violate the per-question uniqueness
	// constraint and make the second insert fail.
	broken := &models.Submission{
		ID:      "sub_broken",
		QueueID: "queue_1",
		Answers: []models.Answer{
			{QuestionID: "q1", Choice: "yes"},
			{QuestionID: "q1", Choice: "no"},
		},
	}

	err := repo.ImportAll(context.Background(), []*models.Submission{valid, broken})
	require.Error(t, err)

	remaining, listErr := repo.List(context.Background())
	require.NoError(t, listErr)
	require.Empty(t, remaining, "a failed batch import must not keep earlier items")
}

func TestSubmissionRepositoryListByQueue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	inQueue := &models.Submission{ID: "sub_a", QueueID: "queue_1", CreatedAt: 1}
	otherQueue := &models.Submission{ID: "sub_b", QueueID: "queue_2", CreatedAt: 2}
	require.NoError(t, repo.Upsert(context.Background(), inQueue))
	require.NoError(t, repo.Upsert(context.Background(), otherQueue))

	matched, err := repo.ListByQueue(context.Background(), "queue_1")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "sub_a", matched[0].ID)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSubmissionRepositoryDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	sub := &models.Submission{
		ID:      "sub_1",
		QueueID: "queue_1",
		Questions: []models.Question{
			{ID: "q1", Rev: 1, QuestionText: "Is the sky blue?"},
		},
		Answers: []models.Answer{
			{QuestionID: "q1", Choice: "yes"},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), sub))
	require.NoError(t, repo.Delete(context.Background(), "sub_1"))

	_, err := repo.GetByID(context.Background(), "sub_1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var questions int64
	require.NoError(t, db.Model(&models.Question{}).Count(&questions).Error)
	require.Zero(t, questions)

	require.ErrorIs(t, repo.Delete(context.Background(), "missing"), gorm.ErrRecordNotFound)
}

func TestSubmissionRepositoryClear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	require.NoError(t, repo.Upsert(context.Background(), &models.Submission{ID: "sub_1", CreatedAt: 1}))
	require.NoError(t, repo.Upsert(context.Background(), &models.Submission{ID: "sub_2", CreatedAt: 2}))

	deleted, err := repo.Clear(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	remaining, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, remaining)
}
