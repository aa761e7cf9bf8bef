// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the uuid client-side so the same models work against
// postgres and the sqlite test databases.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// StringList stores a string slice as a JSON column (tags, categories).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return nil
}

// Enums
type PromptStatus string

const (
	PromptStatusPending  PromptStatus = "pending"
	PromptStatusActive   PromptStatus = "active"
	PromptStatusInactive PromptStatus = "inactive"
	PromptStatusRejected PromptStatus = "rejected"
)

type PromptType string

const (
	PromptTypeChatGPT         PromptType = "chatgpt"
	PromptTypeClaude          PromptType = "claude"
	PromptTypeGemini          PromptType = "gemini"
	PromptTypeMidjourney      PromptType = "midjourney"
	PromptTypeDalle           PromptType = "dalle"
	PromptTypeStableDiffusion PromptType = "stable-diffusion"
	PromptTypeCode            PromptType = "code"
	PromptTypeCustom          PromptType = "custom"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
	PurchaseStatusRefunded  PurchaseStatus = "refunded"
)

type TipStatus string

const (
	TipStatusPending   TipStatus = "pending"
	TipStatusCompleted TipStatus = "completed"
	TipStatusFailed    TipStatus = "failed"
)

type Reputation string

const (
	ReputationBronze   Reputation = "Bronze"
	ReputationSilver   Reputation = "Silver"
	ReputationGold     Reputation = "Gold"
	ReputationPlatinum Reputation = "Platinum"
)
