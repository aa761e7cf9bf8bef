// internal/models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is the ledger record behind entitlements and seller earnings.
// Buyer, seller, and amount are snapshots taken at purchase time; the record
// is immutable apart from the completed -> refunded status transition.
//
// Two uniqueness constraints guard the ledger: tx_hash is globally unique
// (our idempotency key for the external payment), and a partial unique index
// on (buyer, prompt_id) WHERE status='completed' prevents double charging
// through transaction-hash rotation. The partial index is created in
// database.RunMigrations since gorm tags cannot express it.
type Purchase struct {
	BaseModel
	Buyer      string         `json:"buyer" gorm:"size:64;not null;index"`
	Seller     string         `json:"seller" gorm:"size:64;not null;index"`
	PromptID   uuid.UUID      `json:"prompt_id" gorm:"type:uuid;not null;index"`
	Amount     int64          `json:"amount" gorm:"not null"`
	TxHash     string         `json:"tx_hash" gorm:"size:128;not null;uniqueIndex"`
	Status     PurchaseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	RefundedAt *time.Time     `json:"refunded_at,omitempty"`

	Prompt *Prompt `json:"prompt,omitempty" gorm:"foreignKey:PromptID"`
}

type Tip struct {
	BaseModel
	From     string     `json:"from" gorm:"column:from_address;size:64;not null;index"`
	To       string     `json:"to" gorm:"column:to_address;size:64;not null;index"`
	PromptID *uuid.UUID `json:"prompt_id,omitempty" gorm:"type:uuid;index"`
	Amount   int64      `json:"amount" gorm:"not null"`
	Message  string     `json:"message,omitempty" gorm:"size:500"`
	TxHash   string     `json:"tx_hash" gorm:"size:128;not null;uniqueIndex"`
	Status   TipStatus  `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Prompt *Prompt `json:"prompt,omitempty" gorm:"foreignKey:PromptID"`
}
