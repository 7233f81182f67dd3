package models

import "time"

// Judge is a long-lived grading configuration: a rubric prompt plus the model
// that should apply it. Judges are managed independently of submissions.
type Judge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Prompt    string    `gorm:"type:text" json:"prompt"`
	ModelName string    `gorm:"size:255" json:"model_name"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
