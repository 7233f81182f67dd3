package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/models"
	"github.com/noah-isme/judge-api/internal/repository"
)

// ErrSubmissionNotFound indicates the referenced submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionService handles bulk ingestion and lifecycle of submissions.
type SubmissionService interface {
	Import(ctx context.Context, payload []dto.SubmissionImportRequest) (int, error)
	List(ctx context.Context) ([]dto.SubmissionResponse, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int64, error)
}

type submissionService struct {
	repo      repository.SubmissionRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(repo repository.SubmissionRepository, validator *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "submission_service").Logger(),
	}
}

// Import upserts every submission in the payload with full-replace semantics:
// an existing submission with the same id is atomically replaced together
// with everything it owns. The whole batch is validated and decoded before
// any write, and persisted in a single transaction; a rejected payload leaves
// the store untouched.
func (s *submissionService) Import(ctx context.Context, payload []dto.SubmissionImportRequest) (int, error) {
	for index, item := range payload {
		if err := s.validator.Struct(item); err != nil {
			return 0, fmt.Errorf("submission %d: %w", index, err)
		}
	}

	submissions := make([]*models.Submission, 0, len(payload))
	for _, item := range payload {
		submission, err := buildSubmission(item)
		if err != nil {
			return 0, err
		}
		submissions = append(submissions, &submission)
	}

	if err := s.repo.ImportAll(ctx, submissions); err != nil {
		s.logger.Error().Err(err).Int("batch_size", len(submissions)).Msg("failed to import submissions")
		return 0, err
	}

	s.logger.Info().Int("imported", len(submissions)).Msg("submissions imported")
	return len(submissions), nil
}

func (s *submissionService) List(ctx context.Context) ([]dto.SubmissionResponse, error) {
	submissions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	return nil
}

func (s *submissionService) Clear(ctx context.Context) (int64, error) {
	deleted, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("deleted", deleted).Msg("submissions cleared")
	return deleted, nil
}

func buildSubmission(item dto.SubmissionImportRequest) (models.Submission, error) {
	submission := models.Submission{
		ID:        item.ID,
		QueueID:   item.QueueID,
		TaskID:    item.TaskID,
		CreatedAt: item.CreatedAt,
	}

	for _, question := range item.Questions {
		rev := question.Rev
		if rev == 0 {
			rev = 1
		}
		submission.Questions = append(submission.Questions, models.Question{
			ID:           question.Data.ID,
			SubmissionID: item.ID,
			Rev:          rev,
			QuestionType: question.Data.QuestionType,
			QuestionText: question.Data.QuestionText,
		})
	}

	for questionID, raw := range item.Answers {
		var fields dto.AnswerImportFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			return models.Submission{}, fmt.Errorf("submission %s: malformed answer for question %s: %w", item.ID, questionID, err)
		}

		submission.Answers = append(submission.Answers, models.Answer{
			SubmissionID: item.ID,
			QuestionID:   questionID,
			Choice:       fields.Choice,
			Reasoning:    fields.Reasoning,
			Raw:          datatypes.JSON(raw),
		})
	}

	return submission, nil
}
