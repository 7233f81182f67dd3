package dto

import (
	"time"

	"github.com/noah-isme/judge-api/internal/models"
)

// JudgeCreateRequest describes the payload for creating a judge.
type JudgeCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1"`
	Prompt    string `json:"prompt" validate:"required,min=1"`
	ModelName string `json:"modelName"`
	Active    *bool  `json:"active"`
}

// JudgeUpdateRequest describes a partial judge update. Absent fields keep
// their current values.
type JudgeUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Prompt    *string `json:"prompt" validate:"omitempty,min=1"`
	ModelName *string `json:"modelName"`
	Active    *bool   `json:"active"`
}

// JudgeResponse is the serialized representation returned to API clients.
type JudgeResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	ModelName string    `json:"modelName"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewJudgeResponse converts a model into a DTO.
func NewJudgeResponse(model models.Judge) JudgeResponse {
	return JudgeResponse{
		ID:        model.ID,
		Name:      model.Name,
		Prompt:    model.Prompt,
		ModelName: model.ModelName,
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
	}
}

// NewJudgeResponseSlice converts a slice of models into DTOs.
func NewJudgeResponseSlice(judges []models.Judge) []JudgeResponse {
	responses := make([]JudgeResponse, 0, len(judges))
	for _, judge := range judges {
		responses = append(responses, NewJudgeResponse(judge))
	}

	return responses
}
