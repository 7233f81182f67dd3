package models

import "gorm.io/datatypes"

// Submission is an externally authored unit of work pulled in by bulk
// ingestion. It owns its questions and answers; re-importing the same id
// replaces the whole tree.
type Submission struct {
	ID        string     `gorm:"primaryKey;size:255" json:"id"`
	QueueID   string     `gorm:"size:255;index" json:"queue_id"`
	TaskID    string     `gorm:"size:255;index" json:"task_id"`
	CreatedAt int64      `json:"created_at"` // epoch milliseconds, supplied by the ingest payload
	Questions []Question `gorm:"foreignKey:SubmissionID;references:ID" json:"questions,omitempty"`
	Answers   []Answer   `gorm:"foreignKey:SubmissionID;references:ID" json:"answers,omitempty"`
}

// Question is one question template instance scoped to a submission. The same
// template id recurs across submissions, so identity is the composite
// (id, submission_id) pair.
type Question struct {
	ID           string `gorm:"primaryKey;size:255" json:"id"`
	SubmissionID string `gorm:"primaryKey;size:255" json:"submission_id"`
	Rev          int    `gorm:"default:1" json:"rev"`
	QuestionType string `gorm:"size:255" json:"question_type"`
	QuestionText string `gorm:"type:text" json:"question_text"`
}

// Answer is the human answer to one question within one submission. At most
// one answer exists per (submission, question) pair.
type Answer struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubmissionID string         `gorm:"size:255;index;uniqueIndex:uq_answer_per_question" json:"submission_id"`
	QuestionID   string         `gorm:"size:255;uniqueIndex:uq_answer_per_question" json:"question_id"`
	Choice       string         `gorm:"size:255" json:"choice"`
	Reasoning    string         `gorm:"type:text" json:"reasoning"`
	Raw          datatypes.JSON `gorm:"type:json" json:"-"`
}

// QuestionKey identifies a question across the whole store. Both fields take
// part in equality, which makes it usable directly as a map key for the
// submission-scoped lookups the run orchestrator builds.
type QuestionKey struct {
	SubmissionID string
	QuestionID   string
}

// Key returns the composite identity of the question.
func (q Question) Key() QuestionKey {
	return QuestionKey{SubmissionID: q.SubmissionID, QuestionID: q.ID}
}

// Key returns the composite identity of the question this answer belongs to.
func (a Answer) Key() QuestionKey {
	return QuestionKey{SubmissionID: a.SubmissionID, QuestionID: a.QuestionID}
}
