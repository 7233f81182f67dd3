package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/models"
)

type assignmentFixture struct {
	submissions *memorySubmissionRepo
	judges      *memoryJudgeRepo
	assignments *memoryAssignmentRepo
	service     AssignmentService
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	f := &assignmentFixture{
		submissions: newMemorySubmissionRepo(),
		judges:      newMemoryJudgeRepo(),
		assignments: newMemoryAssignmentRepo(),
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	f.service = NewAssignmentService(f.assignments, f.submissions, f.judges, validate, testLogger())

	require.NoError(t, f.submissions.Upsert(context.Background(), &models.Submission{
		ID: "sub_1",
		Questions: []models.Question{
			{ID: "q1", SubmissionID: "sub_1", QuestionText: "Is the sky blue?"},
		},
		Answers: []models.Answer{
			{SubmissionID: "sub_1", QuestionID: "q1", Choice: "yes"},
		},
	}))

	judge := models.Judge{Name: "accuracy", Active: true}
	require.NoError(t, f.judges.Create(context.Background(), &judge))

	return f
}

func TestAssignmentServiceCreate(t *testing.T) {
	f := newAssignmentFixture(t)

	created, err := f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		SubmissionID: "sub_1",
		QuestionID:   "q1",
		JudgeID:      1,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "sub_1", created.SubmissionID)
}

func TestAssignmentServiceCreateReplacesDuplicateTriple(t *testing.T) {
	f := newAssignmentFixture(t)

	request := dto.AssignmentCreateRequest{SubmissionID: "sub_1", QuestionID: "q1", JudgeID: 1}

	_, err := f.service.Create(context.Background(), request)
	require.NoError(t, err)
	_, err = f.service.Create(context.Background(), request)
	require.NoError(t, err)

	listed, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1, "re-creating a triple must replace, not duplicate")
}

func TestAssignmentServiceCreateValidatesReferences(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		SubmissionID: "missing", QuestionID: "q1", JudgeID: 1,
	})
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	_, err = f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		SubmissionID: "sub_1", QuestionID: "missing", JudgeID: 1,
	})
	require.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		SubmissionID: "sub_1", QuestionID: "q1", JudgeID: 42,
	})
	require.ErrorIs(t, err, ErrJudgeNotFound)

	require.Empty(t, f.assignments.assignments)
}

func TestAssignmentServiceDeleteAndClear(t *testing.T) {
	f := newAssignmentFixture(t)

	created, err := f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		SubmissionID: "sub_1", QuestionID: "q1", JudgeID: 1,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), created.ID))
	require.ErrorIs(t, f.service.Delete(context.Background(), created.ID), ErrAssignmentNotFound)

	_, err = f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		SubmissionID: "sub_1", QuestionID: "q1", JudgeID: 1,
	})
	require.NoError(t, err)

	deleted, err := f.service.Clear(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}
