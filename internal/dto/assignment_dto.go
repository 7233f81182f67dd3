package dto

import "github.com/noah-isme/judge-api/internal/models"

// AssignmentCreateRequest directs the engine to grade one (submission,
// question) pair with one judge.
type AssignmentCreateRequest struct {
	SubmissionID string `json:"submissionId" validate:"required"`
	QuestionID   string `json:"questionId" validate:"required"`
	JudgeID      uint   `json:"judgeId" validate:"required"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID           uint   `json:"id"`
	SubmissionID string `json:"submissionId"`
	QuestionID   string `json:"questionId"`
	JudgeID      uint   `json:"judgeId"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		QuestionID:   model.QuestionID,
		JudgeID:      model.JudgeID,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
