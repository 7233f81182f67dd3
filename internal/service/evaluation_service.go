package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/models"
	"github.com/noah-isme/judge-api/internal/repository"
)

const evaluationCacheVersionKey = "evaluations:cache:version"

// EvaluationCacheInvalidator drops cached evaluation listings after writes.
type EvaluationCacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// EvaluationService is the query side of the engine: filtered listings with
// summary statistics, plus bulk clearing.
type EvaluationService interface {
	EvaluationCacheInvalidator
	List(ctx context.Context, req dto.EvaluationListRequest) (dto.EvaluationListResponse, error)
	Clear(ctx context.Context) (int64, error)
}

type evaluationService struct {
	repo   repository.EvaluationRepository
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewEvaluationService constructs the aggregator. A nil cache client disables
// caching entirely.
func NewEvaluationService(repo repository.EvaluationRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) EvaluationService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &evaluationService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "evaluation_service").Logger(),
	}
}

// List applies the provided filters as ANDed set-membership predicates and
// returns items newest first, together with the pass-rate summary.
func (s *evaluationService) List(ctx context.Context, req dto.EvaluationListRequest) (dto.EvaluationListResponse, error) {
	cacheKey := s.cacheKey(ctx, req)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	evaluations, err := s.repo.ListFiltered(ctx, repository.EvaluationFilter{
		JudgeIDs:    req.JudgeIDs,
		QuestionIDs: req.QuestionIDs,
		Verdicts:    req.Verdicts,
	})
	if err != nil {
		return dto.EvaluationListResponse{}, err
	}

	response := dto.EvaluationListResponse{
		Summary: summarize(evaluations),
		Items:   dto.NewEvaluationResponseSlice(evaluations),
	}

	s.toCache(ctx, cacheKey, response)
	return response, nil
}

func (s *evaluationService) Clear(ctx context.Context) (int64, error) {
	deleted, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, err
	}

	s.InvalidateCache(ctx)
	s.logger.Info().Int64("deleted", deleted).Msg("evaluations cleared")
	return deleted, nil
}

// InvalidateCache bumps the cache version; stale listing keys simply expire.
func (s *evaluationService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Incr(ctx, evaluationCacheVersionKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to bump evaluation cache version")
	}
}

func summarize(evaluations []models.Evaluation) dto.EvaluationSummary {
	total := len(evaluations)
	passed := 0
	for _, evaluation := range evaluations {
		if evaluation.Verdict == models.VerdictPass {
			passed++
		}
	}

	// Guard against division by zero on an empty result set.
	passRate := 0.0
	if total > 0 {
		passRate = math.Round(float64(passed)/float64(total)*100*100) / 100
	}

	return dto.EvaluationSummary{
		Total:       total,
		Pass:        passed,
		PassRatePct: passRate,
	}
}

func (s *evaluationService) cacheKey(ctx context.Context, req dto.EvaluationListRequest) string {
	if s.cache == nil {
		return ""
	}

	version, err := s.cache.Get(ctx, evaluationCacheVersionKey).Int64()
	if err != nil {
		version = 0
	}

	judges := make([]string, 0, len(req.JudgeIDs))
	for _, id := range req.JudgeIDs {
		judges = append(judges, fmt.Sprintf("%d", id))
	}

	return fmt.Sprintf("evaluations:list:v%d:j=%s:q=%s:v=%s",
		version,
		strings.Join(judges, ","),
		strings.Join(req.QuestionIDs, ","),
		strings.Join(req.Verdicts, ","),
	)
}

func (s *evaluationService) fromCache(ctx context.Context, key string) (dto.EvaluationListResponse, bool) {
	if s.cache == nil || key == "" {
		return dto.EvaluationListResponse{}, false
	}

	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return dto.EvaluationListResponse{}, false
	}

	var response dto.EvaluationListResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to decode cached evaluation listing")
		return dto.EvaluationListResponse{}, false
	}

	return response, true
}

func (s *evaluationService) toCache(ctx context.Context, key string, response dto.EvaluationListResponse) {
	if s.cache == nil || key == "" {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache evaluation listing")
	}
}
