// internal/models/prompt.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PromptStats mutate only through the ledger, stats, and review services.
type PromptStats struct {
	Hearts    int     `json:"hearts" gorm:"default:0"`
	Views     int64   `json:"views" gorm:"default:0"`
	Purchases int     `json:"purchases" gorm:"default:0"`
	Rating    float64 `json:"rating" gorm:"default:0"`
	Reviews   int     `json:"reviews" gorm:"default:0"`
}

type Prompt struct {
	BaseModel
	Title        string       `json:"title" gorm:"size:200;not null"`
	Description  string       `json:"description" gorm:"size:1000;not null"`
	Content      string       `json:"content" gorm:"type:text;not null"`
	Preview      string       `json:"preview" gorm:"size:500;not null"`
	SampleOutput string       `json:"sample_output" gorm:"type:text"`
	Category     string       `json:"category" gorm:"size:100;not null;index"`
	Type         PromptType   `json:"type" gorm:"type:varchar(20);not null;index"`
	Price        int64        `json:"price" gorm:"not null"`
	Creator      string       `json:"creator" gorm:"size:64;not null;index"`
	Tags         StringList   `json:"tags" gorm:"type:text"`
	Trending     bool         `json:"trending" gorm:"default:false;index"`
	Featured     bool         `json:"featured" gorm:"default:false"`
	Status       PromptStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Stats        PromptStats  `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`
}

// PromptView is the viewer-facing shape of a prompt. Content and SampleOutput
// are only set for entitled viewers; for everyone else the fields are omitted
// from the JSON entirely rather than returned empty.
type PromptView struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Preview      string       `json:"preview"`
	Content      *string      `json:"content,omitempty"`
	SampleOutput *string      `json:"sample_output,omitempty"`
	Category     string       `json:"category"`
	Type         PromptType   `json:"type"`
	Price        int64        `json:"price"`
	Creator      string       `json:"creator"`
	Tags         StringList   `json:"tags"`
	Trending     bool         `json:"trending"`
	Featured     bool         `json:"featured"`
	Status       PromptStatus `json:"status"`
	Stats        PromptStats  `json:"stats"`
	Owned        bool         `json:"owned"`
	CreatedAt    time.Time    `json:"created_at"`
}
