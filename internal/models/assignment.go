package models

// Assignment directs the engine to grade one (submission, question) pair with
// one judge. The triple is unique; creating a duplicate replaces the old row.
type Assignment struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SubmissionID string `gorm:"size:255;index;uniqueIndex:uq_question_judge_once" json:"submission_id"`
	QuestionID   string `gorm:"size:255;uniqueIndex:uq_question_judge_once" json:"question_id"`
	JudgeID      uint   `gorm:"index;uniqueIndex:uq_question_judge_once" json:"judge_id"`
}

// QuestionKey returns the composite identity of the referenced question.
func (a Assignment) QuestionKey() QuestionKey {
	return QuestionKey{SubmissionID: a.SubmissionID, QuestionID: a.QuestionID}
}
