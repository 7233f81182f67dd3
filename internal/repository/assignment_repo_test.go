package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/models"
)

func TestAssignmentRepositoryUpsertReplacesTriple(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	first := &models.Assignment{SubmissionID: "sub_1", QuestionID: "q1", JudgeID: 7}
	require.NoError(t, repo.Upsert(context.Background(), first))

	second := &models.Assignment{SubmissionID: "sub_1", QuestionID: "q1", JudgeID: 7}
	require.NoError(t, repo.Upsert(context.Background(), second))

	var rows []models.Assignment
	require.NoError(t, db.Where(
		"submission_id = ? AND question_id = ? AND judge_id = ?", "sub_1", "q1", uint(7),
	).Find(&rows).Error)
	require.Len(t, rows, 1, "replacing a triple must never duplicate it")
	require.Equal(t, second.ID, rows[0].ID)
	require.NotEqual(t, first.ID, rows[0].ID)
}

func TestAssignmentRepositoryListBySubmission(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	require.NoError(t, repo.Upsert(context.Background(), &models.Assignment{SubmissionID: "sub_1", QuestionID: "q1", JudgeID: 1}))
	require.NoError(t, repo.Upsert(context.Background(), &models.Assignment{SubmissionID: "sub_1", QuestionID: "q2", JudgeID: 1}))
	require.NoError(t, repo.Upsert(context.Background(), &models.Assignment{SubmissionID: "sub_2", QuestionID: "q1", JudgeID: 1}))

	scoped, err := repo.ListBySubmission(context.Background(), "sub_1")
	require.NoError(t, err)
	require.Len(t, scoped, 2)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestAssignmentRepositoryDeleteAndClear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	target := &models.Assignment{SubmissionID: "sub_1", QuestionID: "q1", JudgeID: 1}
	require.NoError(t, repo.Upsert(context.Background(), target))
	require.NoError(t, repo.Upsert(context.Background(), &models.Assignment{SubmissionID: "sub_1", QuestionID: "q2", JudgeID: 1}))

	require.NoError(t, repo.Delete(context.Background(), target.ID))
	require.ErrorIs(t, repo.Delete(context.Background(), target.ID), gorm.ErrRecordNotFound)

	deleted, err := repo.Clear(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}
