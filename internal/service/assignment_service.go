package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/models"
	"github.com/noah-isme/judge-api/internal/repository"
)

// ErrQuestionNotFound indicates the question does not exist under the
// referenced submission.
var ErrQuestionNotFound = errors.New("question not found in submission")

// ErrAssignmentNotFound indicates the assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentService manages grading directives.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	List(ctx context.Context) ([]dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
	Clear(ctx context.Context) (int64, error)
}

type assignmentService struct {
	repo        repository.AssignmentRepository
	submissions repository.SubmissionRepository
	judges      repository.JudgeRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(
	repo repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	judges repository.JudgeRepository,
	validator *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		repo:        repo,
		submissions: submissions,
		judges:      judges,
		validator:   validator,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

// Create upserts the (submission, question, judge) triple after checking all
// three references resolve. A conflicting triple is replaced, never
// duplicated.
func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: %s", ErrSubmissionNotFound, payload.SubmissionID)
		}
		return dto.AssignmentResponse{}, err
	}

	wanted := models.QuestionKey{SubmissionID: payload.SubmissionID, QuestionID: payload.QuestionID}
	found := false
	for _, question := range submission.Questions {
		if question.Key() == wanted {
			found = true
			break
		}
	}
	if !found {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, payload.QuestionID)
	}

	if _, err := s.judges.GetByID(ctx, payload.JudgeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: %d", ErrJudgeNotFound, payload.JudgeID)
		}
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		SubmissionID: payload.SubmissionID,
		QuestionID:   payload.QuestionID,
		JudgeID:      payload.JudgeID,
	}

	if err := s.repo.Upsert(ctx, &assignment); err != nil {
		s.logger.Error().Err(err).
			Str("submission_id", payload.SubmissionID).
			Str("question_id", payload.QuestionID).
			Uint("judge_id", payload.JudgeID).
			Msg("failed to upsert assignment")
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	return nil
}

func (s *assignmentService) Clear(ctx context.Context) (int64, error) {
	return s.repo.Clear(ctx)
}
