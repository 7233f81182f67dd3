package dto

import (
	"encoding/json"

	"github.com/noah-isme/judge-api/internal/models"
)

// SubmissionImportRequest mirrors one element of the external ingest payload.
// Key names are fixed by the upstream labeling system.
type SubmissionImportRequest struct {
	ID        string                     `json:"id" validate:"required"`
	QueueID   string                     `json:"queueId"`
	TaskID    string                     `json:"labelingTaskId"`
	CreatedAt int64                      `json:"createdAt"`
	Questions []QuestionImportPayload    `json:"questions" validate:"dive"`
	Answers   map[string]json.RawMessage `json:"answers"`
}

// QuestionImportPayload is the nested question shape of the ingest payload.
type QuestionImportPayload struct {
	Rev  int                 `json:"rev"`
	Data QuestionImportInner `json:"data" validate:"required"`
}

// QuestionImportInner carries the question template fields.
type QuestionImportInner struct {
	ID           string `json:"id" validate:"required"`
	QuestionType string `json:"questionType"`
	QuestionText string `json:"questionText"`
}

// AnswerImportFields are the known fields of one answers-map entry. The full
// raw object is preserved separately for debugging.
type AnswerImportFields struct {
	Choice    string `json:"choice"`
	Reasoning string `json:"reasoning"`
}

// ImportResponse reports how many submissions an import call replaced or
// created.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// SubmissionResponse is the listing representation of a submission.
type SubmissionResponse struct {
	ID        string `json:"id"`
	QueueID   string `json:"queueId"`
	TaskID    string `json:"taskId"`
	CreatedAt int64  `json:"createdAt"`
}

// ClearResponse reports the number of rows removed by a bulk clear.
type ClearResponse struct {
	Deleted int64 `json:"deleted"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        model.ID,
		QueueID:   model.QueueID,
		TaskID:    model.TaskID,
		CreatedAt: model.CreatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
