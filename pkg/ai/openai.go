package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/judge-api/internal/models"
)

var (
	judgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "judge",
		Subsystem: "ai",
		Name:      "invocation_duration_seconds",
		Help:      "Duration of judge model invocations",
	}, []string{"model"})

	judgeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Subsystem: "ai",
		Name:      "invocation_failures_total",
		Help:      "Number of failed judge model invocations",
	}, []string{"model"})
)

const systemInstructions = "You are an AI Judge. Return STRICT JSON only. Keys: verdict, reasoning."

// OpenAIConfig defines configuration options for the OpenAI-backed judge.
type OpenAIConfig struct {
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
	Registry  *ModelRegistry
	Logger    zerolog.Logger
}

// OpenAIJudge implements Judge against the OpenAI chat completion API.
type OpenAIJudge struct {
	client   *openai.Client
	registry *ModelRegistry
	cfg      OpenAIConfig
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewOpenAIJudge builds a judge adapter using the provided configuration.
func NewOpenAIJudge(cfg OpenAIConfig) (*OpenAIJudge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 150
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewModelRegistry(nil, "")
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIJudge{
		client:   openai.NewClient(cfg.APIKey),
		registry: registry,
		cfg:      cfg,
		tracer:   otel.Tracer("github.com/noah-isme/judge-api/pkg/ai/openai"),
		logger:   logger,
	}, nil
}

// Invoke grades one answer. Failures never propagate: an unknown model, a
// transport error, a malformed response or an out-of-range verdict all come
// back as ok=false with an inconclusive verdict and a diagnostic.
func (j *OpenAIJudge) Invoke(parent context.Context, input EvalInput) EvalResult {
	model := input.Model
	if model == "" {
		model = j.registry.Default()
	}
	if !j.registry.Supported(model) {
		// No network call for a model we were never told about.
		return failure(fmt.Sprintf("model %q is not in the supported model list", model))
	}

	ctx, span := j.tracer.Start(parent, "openai.judge", trace.WithAttributes(
		attribute.String("model", model),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	request := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstructions},
			{Role: openai.ChatMessageRoleUser, Content: buildJudgePrompt(input)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := j.client.CreateChatCompletion(ctx, request)
	judgeDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if err != nil {
		judgeFailures.WithLabelValues(model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		j.logger.Warn().Err(err).Str("model", model).Msg("judge invocation failed")
		return failure(fmt.Sprintf("evaluation error: %v", err))
	}

	if len(resp.Choices) == 0 {
		judgeFailures.WithLabelValues(model).Inc()
		span.SetStatus(codes.Error, "no choices returned")
		return failure("evaluation error: no choices returned from model")
	}

	result, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		judgeFailures.WithLabelValues(model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return failure(err.Error())
	}

	span.SetAttributes(attribute.String("verdict", result.Verdict))
	return result
}

func failure(reasoning string) EvalResult {
	return EvalResult{OK: false, Verdict: models.VerdictInconclusive, Reasoning: reasoning}
}

func buildJudgePrompt(input EvalInput) string {
	builder := strings.Builder{}
	builder.WriteString("Judge the human answer against the question.\n")
	builder.WriteString("Question: ")
	builder.WriteString(input.QuestionText)
	builder.WriteString("\nAnswer: ")
	builder.WriteString(input.AnswerText)
	builder.WriteString("\nRubric: ")
	builder.WriteString(input.Rubric)
	builder.WriteString("\nRespond as JSON with keys verdict (pass|fail|inconclusive) and reasoning.")
	return builder.String()
}

func parseVerdict(content string) (EvalResult, error) {
	type payload struct {
		Verdict   string `json:"verdict"`
		Reasoning string `json:"reasoning"`
	}

	var data payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &data); err != nil {
		return EvalResult{}, fmt.Errorf("parse verdict json: %w", err)
	}

	verdict := strings.ToLower(strings.TrimSpace(data.Verdict))
	if !models.ValidVerdict(verdict) {
		return EvalResult{}, fmt.Errorf("model returned unexpected verdict %q", data.Verdict)
	}

	return EvalResult{OK: true, Verdict: verdict, Reasoning: data.Reasoning}, nil
}
