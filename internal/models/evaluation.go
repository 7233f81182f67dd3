package models

import "time"

// Verdict values a judge may return. Every persisted evaluation carries
// exactly one of these.
const (
	VerdictPass         = "pass"
	VerdictFail         = "fail"
	VerdictInconclusive = "inconclusive"
)

// ValidVerdict reports whether the value is one of the three allowed verdicts.
func ValidVerdict(v string) bool {
	return v == VerdictPass || v == VerdictFail || v == VerdictInconclusive
}

// Evaluation is the append-only result of running one assignment. Rows are
// never updated; rerunning an assignment adds a new row.
type Evaluation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID string    `gorm:"size:255;index" json:"submission_id"`
	QuestionID   string    `gorm:"size:255;index" json:"question_id"`
	JudgeID      uint      `gorm:"index" json:"judge_id"`
	Verdict      string    `gorm:"size:32;index" json:"verdict"`
	Reasoning    string    `gorm:"type:text" json:"reasoning"`
	CreatedAt    time.Time `json:"created_at"`
}
