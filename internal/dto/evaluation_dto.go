package dto

import (
	"time"

	"github.com/noah-isme/judge-api/internal/models"
)

// RunRequest optionally scopes an evaluation run to one queue.
type RunRequest struct {
	QueueID string `json:"queueId"`
}

// RunStatsResponse summarises one evaluation run. Planned always equals
// completed plus failed; errors carries at most the first ten diagnostics.
type RunStatsResponse struct {
	Planned   int      `json:"planned"`
	Completed int      `json:"completed"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// EvaluationListRequest carries the optional listing filters.
type EvaluationListRequest struct {
	JudgeIDs    []uint
	QuestionIDs []string
	Verdicts    []string
}

// EvaluationSummary aggregates a filtered evaluation set.
type EvaluationSummary struct {
	Total       int     `json:"total"`
	Pass        int     `json:"pass"`
	PassRatePct float64 `json:"passRatePct"`
}

// EvaluationResponse is the serialized representation of one evaluation.
type EvaluationResponse struct {
	ID           uint      `json:"id"`
	SubmissionID string    `json:"submissionId"`
	QuestionID   string    `json:"questionId"`
	JudgeID      uint      `json:"judgeId"`
	Verdict      string    `json:"verdict"`
	Reasoning    string    `json:"reasoning"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EvaluationListResponse pairs the filtered items with their summary.
type EvaluationListResponse struct {
	Summary EvaluationSummary    `json:"summary"`
	Items   []EvaluationResponse `json:"items"`
}

// NewEvaluationResponse converts a model into a DTO.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		QuestionID:   model.QuestionID,
		JudgeID:      model.JudgeID,
		Verdict:      model.Verdict,
		Reasoning:    model.Reasoning,
		CreatedAt:    model.CreatedAt,
	}
}

// NewEvaluationResponseSlice converts a slice of models into DTOs.
func NewEvaluationResponseSlice(evaluations []models.Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, NewEvaluationResponse(evaluation))
	}

	return responses
}
