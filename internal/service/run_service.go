package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/models"
	"github.com/noah-isme/judge-api/internal/observability"
	"github.com/noah-isme/judge-api/internal/repository"
	"github.com/noah-isme/judge-api/pkg/ai"
	"github.com/noah-isme/judge-api/pkg/events"
)

// ErrNoSubmissions indicates an evaluation run with an empty submission
// selection. Nothing is written before this error surfaces.
var ErrNoSubmissions = errors.New("no submissions found")

// Diagnostics beyond this count are dropped to keep run responses bounded
// under large failure counts.
const maxRunDiagnostics = 10

// Individual diagnostics are clipped too; model reasoning can be long.
const maxDiagnosticLen = 300

// RunService drives evaluation runs: it resolves every pending assignment,
// invokes the judge adapter and persists results with per-assignment failure
// isolation.
type RunService interface {
	Run(ctx context.Context, queueID string) (dto.RunStatsResponse, error)
}

type runService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	judges      repository.JudgeRepository
	evaluations repository.EvaluationRepository
	judge       ai.Judge
	publisher   *events.Publisher
	cache       EvaluationCacheInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRunService constructs the run orchestrator. The publisher and cache
// invalidator may be nil when eventing or caching is not configured.
func NewRunService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	judges repository.JudgeRepository,
	evaluations repository.EvaluationRepository,
	judge ai.Judge,
	publisher *events.Publisher,
	cache EvaluationCacheInvalidator,
	logger zerolog.Logger,
) RunService {
	return &runService{
		submissions: submissions,
		assignments: assignments,
		judges:      judges,
		evaluations: evaluations,
		judge:       judge,
		publisher:   publisher,
		cache:       cache,
		logger:      logger.With().Str("component", "run_service").Logger(),
		now:         time.Now,
	}
}

// runStats accumulates batch statistics. Counters and the bounded diagnostics
// list are guarded so the per-assignment loop can be lifted onto goroutines
// without touching the accounting.
type runStats struct {
	mu        sync.Mutex
	planned   int
	completed int
	failed    int
	errors    []string
}

func (s *runStats) plan() {
	s.mu.Lock()
	s.planned++
	s.mu.Unlock()
}

func (s *runStats) complete() {
	s.mu.Lock()
	s.completed++
	s.mu.Unlock()
}

func (s *runStats) fail(diagnostic string) {
	if len(diagnostic) > maxDiagnosticLen {
		// Clip on a rune boundary; reasoning text is arbitrary UTF-8.
		cut := maxDiagnosticLen
		for cut > 0 && !utf8.RuneStart(diagnostic[cut]) {
			cut--
		}
		diagnostic = diagnostic[:cut]
	}

	s.mu.Lock()
	s.failed++
	if len(s.errors) < maxRunDiagnostics {
		s.errors = append(s.errors, diagnostic)
	}
	s.mu.Unlock()
}

func (s *runStats) snapshot() dto.RunStatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.RunStatsResponse{
		Planned:   s.planned,
		Completed: s.completed,
		Failed:    s.failed,
		Errors:    s.errors,
	}
}

// resolvedAssignment is a fully dereferenced grading directive, ready to hand
// to the judge adapter.
type resolvedAssignment struct {
	question   models.Question
	judge      models.Judge
	answerText string
}

// Run processes every assignment of the selected submissions. One failing
// assignment never aborts the batch; each evaluation write is its own
// transaction so earlier successes survive later failures.
func (s *runService) Run(ctx context.Context, queueID string) (dto.RunStatsResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/judge-api/internal/service/run")
	ctx, span := tracer.Start(ctx, "evaluations.run")
	span.SetAttributes(attribute.String("run.queue_id", queueID))
	defer span.End()

	submissions, err := s.selectSubmissions(ctx, queueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "selection_failed")
		observability.EvaluationRuns().WithLabelValues("empty_selection").Inc()
		return dto.RunStatsResponse{}, err
	}
	observability.EvaluationRuns().WithLabelValues("started").Inc()

	stats := &runStats{}
	started := s.now()

	for _, submission := range submissions {
		questions := make(map[models.QuestionKey]models.Question, len(submission.Questions))
		for _, question := range submission.Questions {
			questions[question.Key()] = question
		}

		answers := make(map[models.QuestionKey]models.Answer, len(submission.Answers))
		for _, answer := range submission.Answers {
			answers[answer.Key()] = answer
		}

		// A broken assignment listing is a store failure, not a grading
		// failure; the run aborts instead of skewing the counters.
		assignments, err := s.assignments.ListBySubmission(ctx, submission.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "assignment_listing_failed")
			return dto.RunStatsResponse{}, fmt.Errorf("failed to load assignments for submission %s: %w", submission.ID, err)
		}

		for _, assignment := range assignments {
			stats.plan()
			s.processAssignment(ctx, assignment, questions, answers, stats)
		}
	}

	response := stats.snapshot()
	observability.EvaluationResults().WithLabelValues("completed").Add(float64(response.Completed))
	observability.EvaluationResults().WithLabelValues("failed").Add(float64(response.Failed))
	span.SetAttributes(
		attribute.Int("run.planned", response.Planned),
		attribute.Int("run.completed", response.Completed),
		attribute.Int("run.failed", response.Failed),
	)

	s.logger.Info().
		Str("queue_id", queueID).
		Int("planned", response.Planned).
		Int("completed", response.Completed).
		Int("failed", response.Failed).
		Dur("duration", s.now().Sub(started)).
		Msg("evaluation run finished")

	if s.cache != nil && response.Completed > 0 {
		s.cache.InvalidateCache(ctx)
	}

	s.publisher.Publish(map[string]interface{}{
		"queueId":    queueID,
		"planned":    response.Planned,
		"completed":  response.Completed,
		"failed":     response.Failed,
		"finishedAt": s.now().UTC(),
	})

	return response, nil
}

func (s *runService) selectSubmissions(ctx context.Context, queueID string) ([]models.Submission, error) {
	var submissions []models.Submission
	var err error

	if queueID != "" {
		submissions, err = s.submissions.ListByQueue(ctx, queueID)
	} else {
		submissions, err = s.submissions.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	if len(submissions) == 0 {
		if queueID != "" {
			return nil, fmt.Errorf("%w for queue %q", ErrNoSubmissions, queueID)
		}
		return nil, ErrNoSubmissions
	}

	return submissions, nil
}

func (s *runService) processAssignment(
	ctx context.Context,
	assignment models.Assignment,
	questions map[models.QuestionKey]models.Question,
	answers map[models.QuestionKey]models.Answer,
	stats *runStats,
) {
	resolved, err := s.resolve(ctx, assignment, questions, answers)
	if err != nil {
		stats.fail(err.Error())
		return
	}

	result := s.judge.Invoke(ctx, ai.EvalInput{
		QuestionText: resolved.question.QuestionText,
		AnswerText:   resolved.answerText,
		Rubric:       resolved.judge.Prompt,
		Model:        resolved.judge.ModelName,
	})

	if !result.OK {
		// No evaluation row is persisted for an adapter failure.
		stats.fail(fmt.Sprintf("evaluation failed: %s", result.Reasoning))
		return
	}

	evaluation := models.Evaluation{
		SubmissionID: assignment.SubmissionID,
		QuestionID:   assignment.QuestionID,
		JudgeID:      assignment.JudgeID,
		Verdict:      result.Verdict,
		Reasoning:    result.Reasoning,
	}

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		s.logger.Error().Err(err).
			Str("submission_id", assignment.SubmissionID).
			Str("question_id", assignment.QuestionID).
			Msg("failed to persist evaluation")
		stats.fail(fmt.Sprintf("database error: %v", err))
		return
	}

	stats.complete()
}

// resolve dereferences one assignment against the submission-scoped lookup
// maps and the judge store, failing with a distinct reason for each missing
// piece.
func (s *runService) resolve(
	ctx context.Context,
	assignment models.Assignment,
	questions map[models.QuestionKey]models.Question,
	answers map[models.QuestionKey]models.Answer,
) (resolvedAssignment, error) {
	key := assignment.QuestionKey()

	question, ok := questions[key]
	if !ok {
		return resolvedAssignment{}, fmt.Errorf("question %s not found in submission %s", assignment.QuestionID, assignment.SubmissionID)
	}

	answer, ok := answers[key]
	if !ok {
		return resolvedAssignment{}, fmt.Errorf("answer for question %s not found in submission %s", assignment.QuestionID, assignment.SubmissionID)
	}

	judge, err := s.judges.GetByID(ctx, assignment.JudgeID)
	if err != nil {
		return resolvedAssignment{}, fmt.Errorf("judge %d not found", assignment.JudgeID)
	}
	if !judge.Active {
		return resolvedAssignment{}, fmt.Errorf("judge %s is inactive", judge.Name)
	}

	return resolvedAssignment{
		question:   question,
		judge:      judge,
		answerText: composeAnswerText(answer),
	}, nil
}

// composeAnswerText joins the choice with the free-text reasoning; the reason
// suffix appears only when reasoning is non-empty.
func composeAnswerText(answer models.Answer) string {
	if answer.Reasoning == "" {
		return answer.Choice
	}

	return fmt.Sprintf("%s. Reason: %s", answer.Choice, answer.Reasoning)
}
