package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/models"
	"github.com/noah-isme/judge-api/internal/repository"
	"github.com/noah-isme/judge-api/pkg/ai"
)

// ErrJudgeNotFound indicates the referenced judge does not exist.
var ErrJudgeNotFound = errors.New("judge not found")

// ErrUnknownModel indicates a model identifier outside the allow-list.
var ErrUnknownModel = errors.New("unknown model identifier")

// JudgeService manages judge configurations.
type JudgeService interface {
	Create(ctx context.Context, payload dto.JudgeCreateRequest) (dto.JudgeResponse, error)
	Get(ctx context.Context, id uint) (dto.JudgeResponse, error)
	Update(ctx context.Context, id uint, payload dto.JudgeUpdateRequest) (dto.JudgeResponse, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]dto.JudgeResponse, error)
	Models() []string
}

type judgeService struct {
	repo      repository.JudgeRepository
	registry  *ai.ModelRegistry
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewJudgeService constructs the judge service.
func NewJudgeService(repo repository.JudgeRepository, registry *ai.ModelRegistry, validator *validator.Validate, logger zerolog.Logger) JudgeService {
	return &judgeService{
		repo:      repo,
		registry:  registry,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "judge_service").Logger(),
	}
}

func (s *judgeService) Create(ctx context.Context, payload dto.JudgeCreateRequest) (dto.JudgeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.JudgeResponse{}, err
	}

	// Unknown models are rejected before any write hits the store.
	if payload.ModelName != "" && !s.registry.Supported(payload.ModelName) {
		return dto.JudgeResponse{}, fmt.Errorf("%w: %s", ErrUnknownModel, payload.ModelName)
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}

	judge := models.Judge{
		Name:      s.sanitize(payload.Name),
		Prompt:    s.sanitize(payload.Prompt),
		ModelName: payload.ModelName,
		Active:    active,
	}

	if err := s.repo.Create(ctx, &judge); err != nil {
		s.logger.Error().Err(err).Str("name", judge.Name).Msg("failed to create judge")
		return dto.JudgeResponse{}, err
	}

	return dto.NewJudgeResponse(judge), nil
}

func (s *judgeService) Get(ctx context.Context, id uint) (dto.JudgeResponse, error) {
	judge, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JudgeResponse{}, ErrJudgeNotFound
		}
		return dto.JudgeResponse{}, err
	}

	return dto.NewJudgeResponse(judge), nil
}

func (s *judgeService) Update(ctx context.Context, id uint, payload dto.JudgeUpdateRequest) (dto.JudgeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.JudgeResponse{}, err
	}

	judge, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JudgeResponse{}, ErrJudgeNotFound
		}
		return dto.JudgeResponse{}, err
	}

	if payload.Name != nil {
		judge.Name = s.sanitize(*payload.Name)
	}
	if payload.Prompt != nil {
		judge.Prompt = s.sanitize(*payload.Prompt)
	}
	if payload.ModelName != nil {
		if *payload.ModelName != "" && !s.registry.Supported(*payload.ModelName) {
			return dto.JudgeResponse{}, fmt.Errorf("%w: %s", ErrUnknownModel, *payload.ModelName)
		}
		judge.ModelName = *payload.ModelName
	}
	if payload.Active != nil {
		judge.Active = *payload.Active
	}

	if err := s.repo.Update(ctx, &judge); err != nil {
		return dto.JudgeResponse{}, err
	}

	return dto.NewJudgeResponse(judge), nil
}

func (s *judgeService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJudgeNotFound
		}
		return err
	}

	return nil
}

func (s *judgeService) List(ctx context.Context) ([]dto.JudgeResponse, error) {
	judges, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewJudgeResponseSlice(judges), nil
}

// Models returns the sorted model allow-list.
func (s *judgeService) Models() []string {
	return s.registry.List()
}

func (s *judgeService) sanitize(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}
