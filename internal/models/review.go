// internal/models/review.go
package models

import "github.com/google/uuid"

// Review is unique per (reviewer, prompt). A second review from the same
// reviewer is rejected, never silently overwritten.
type Review struct {
	BaseModel
	Reviewer string    `json:"reviewer" gorm:"size:64;not null;uniqueIndex:idx_reviews_reviewer_prompt;index"`
	PromptID uuid.UUID `json:"prompt_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_reviewer_prompt;index"`
	Rating   int       `json:"rating" gorm:"not null"`
	Comment  string    `json:"comment" gorm:"size:1000;not null"`
	Helpful  int       `json:"helpful" gorm:"default:0"`
}
