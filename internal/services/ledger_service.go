// internal/services/ledger_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/config"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
)

// LedgerService turns already-settled external payment notifications into
// idempotent Purchase and Tip records. The transaction hash is the
// idempotency key; a partial unique index on (buyer, prompt, completed)
// closes the hash-rotation hole. All counter updates commit in the same
// database transaction as the ledger insert, so readers never observe a
// purchase without the matching earnings credit.
type LedgerService struct {
	db     *gorm.DB
	config *config.Config
}

func NewLedgerService(db *gorm.DB, config *config.Config) *LedgerService {
	return &LedgerService{
		db:     db,
		config: config,
	}
}

type RecordPurchaseRequest struct {
	Buyer    string    `json:"buyer" validate:"required,eth_addr"`
	PromptID uuid.UUID `json:"prompt_id" validate:"required"`
	TxHash   string    `json:"tx_hash" validate:"required,tx_hash"`
}

type RecordTipRequest struct {
	From     string     `json:"from" validate:"required,eth_addr"`
	To       string     `json:"to" validate:"required,eth_addr"`
	Amount   int64      `json:"amount" validate:"required,min=1"`
	TxHash   string     `json:"tx_hash" validate:"required,tx_hash"`
	PromptID *uuid.UUID `json:"prompt_id,omitempty"`
	Message  string     `json:"message,omitempty" validate:"max=500"`
}

// RecordPurchase charges buyer for a prompt at most once per settled payment.
// Retrying with the same hash returns the original purchase; retrying with a
// fresh hash for an already-owned prompt is rejected.
func (s *LedgerService) RecordPurchase(buyer string, promptID uuid.UUID, txHash string) (*models.Purchase, error) {
	buyer = models.NormalizeAddress(buyer)

	var prompt models.Prompt
	if err := s.db.Where("id = ?", promptID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("prompt")
		}
		return nil, apperrors.Storage(err, "failed to load prompt")
	}
	if prompt.Status != models.PromptStatusActive {
		return nil, apperrors.NotFound("prompt")
	}

	if buyer == prompt.Creator {
		return nil, apperrors.SelfAction("cannot purchase your own prompt")
	}

	if existing, err := s.resolveExistingPurchase(buyer, promptID, txHash); existing != nil || err != nil {
		return existing, err
	}

	purchase := &models.Purchase{
		Buyer:    buyer,
		Seller:   prompt.Creator,
		PromptID: prompt.ID,
		Amount:   prompt.Price,
		TxHash:   txHash,
		Status:   models.PurchaseStatusCompleted,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreateUser(tx, prompt.Creator); err != nil {
			return err
		}
		if _, err := getOrCreateUser(tx, buyer); err != nil {
			return err
		}

		if err := tx.Create(purchase).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Prompt{}).Where("id = ?", prompt.ID).
			UpdateColumn("stats_purchases", gorm.Expr("stats_purchases + 1")).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("address = ?", prompt.Creator).
			UpdateColumn("stats_total_earnings", gorm.Expr("stats_total_earnings + ?", purchase.Amount)).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("address = ?", buyer).
			UpdateColumn("stats_total_purchases", gorm.Expr("stats_total_purchases + 1")).Error
	})

	if err != nil {
		if isDuplicateKeyErr(err) {
			// Lost a race on one of the two uniqueness constraints.
			// Re-resolve against the committed state.
			if existing, resolveErr := s.resolveExistingPurchase(buyer, promptID, txHash); existing != nil || resolveErr != nil {
				return existing, resolveErr
			}
			return nil, apperrors.Duplicate("transaction already recorded")
		}
		return nil, apperrors.Storage(err, "failed to record purchase")
	}

	return purchase, nil
}

// resolveExistingPurchase applies the idempotency contract against committed
// state: same hash returns the original record, a completed purchase under a
// different hash is an ownership conflict.
func (s *LedgerService) resolveExistingPurchase(buyer string, promptID uuid.UUID, txHash string) (*models.Purchase, error) {
	var byHash models.Purchase
	err := s.db.Where("tx_hash = ?", txHash).First(&byHash).Error
	if err == nil {
		if byHash.Status == models.PurchaseStatusCompleted && byHash.Buyer == buyer && byHash.PromptID == promptID {
			return &byHash, nil
		}
		return nil, apperrors.Duplicate("transaction already recorded")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Storage(err, "failed to check transaction")
	}

	var owned models.Purchase
	err = s.db.Where("buyer = ? AND prompt_id = ? AND status = ?", buyer, promptID, models.PurchaseStatusCompleted).
		First(&owned).Error
	if err == nil {
		return nil, apperrors.Conflict("prompt already owned")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Storage(err, "failed to check ownership")
	}

	return nil, nil
}

// RecordTip credits the recipient's earnings once per settled payment. Tips
// grant no entitlements.
func (s *LedgerService) RecordTip(req *RecordTipRequest) (*models.Tip, error) {
	from := models.NormalizeAddress(req.From)
	to := models.NormalizeAddress(req.To)

	if from == to {
		return nil, apperrors.SelfAction("cannot tip yourself")
	}
	if req.Amount < s.config.Ledger.MinTipAmount {
		return nil, apperrors.InvalidInput("tip amount must be at least %d", s.config.Ledger.MinTipAmount)
	}

	if req.PromptID != nil {
		var prompt models.Prompt
		if err := s.db.Where("id = ?", *req.PromptID).First(&prompt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("prompt")
			}
			return nil, apperrors.Storage(err, "failed to load prompt")
		}
	}

	if existing, err := s.resolveExistingTip(txLookup{from: from, to: to, hash: req.TxHash}); existing != nil || err != nil {
		return existing, err
	}

	tip := &models.Tip{
		From:     from,
		To:       to,
		PromptID: req.PromptID,
		Amount:   req.Amount,
		Message:  req.Message,
		TxHash:   req.TxHash,
		Status:   models.TipStatusCompleted,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreateUser(tx, to); err != nil {
			return err
		}
		if _, err := getOrCreateUser(tx, from); err != nil {
			return err
		}

		if err := tx.Create(tip).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("address = ?", to).
			UpdateColumn("stats_total_earnings", gorm.Expr("stats_total_earnings + ?", tip.Amount)).Error
	})

	if err != nil {
		if isDuplicateKeyErr(err) {
			if existing, resolveErr := s.resolveExistingTip(txLookup{from: from, to: to, hash: req.TxHash}); existing != nil || resolveErr != nil {
				return existing, resolveErr
			}
			return nil, apperrors.Duplicate("transaction already recorded")
		}
		return nil, apperrors.Storage(err, "failed to record tip")
	}

	return tip, nil
}

type txLookup struct {
	from string
	to   string
	hash string
}

func (s *LedgerService) resolveExistingTip(lookup txLookup) (*models.Tip, error) {
	var tip models.Tip
	err := s.db.Where("tx_hash = ?", lookup.hash).First(&tip).Error
	if err == nil {
		if tip.Status == models.TipStatusCompleted && tip.From == lookup.from && tip.To == lookup.to {
			return &tip, nil
		}
		return nil, apperrors.Duplicate("transaction already recorded")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Storage(err, "failed to check transaction")
	}
	return nil, nil
}

// RefundPurchase reverses a completed purchase: the record transitions to
// refunded and the prompt purchase counter, seller earnings, and buyer
// purchase count are decremented in the same transaction. Entitlement is
// revoked implicitly because the access gate only honors completed
// purchases.
func (s *LedgerService) RefundPurchase(txHash string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.db.Where("tx_hash = ?", txHash).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("purchase")
		}
		return nil, apperrors.Storage(err, "failed to load purchase")
	}

	if purchase.Status != models.PurchaseStatusCompleted {
		return nil, apperrors.Conflict("only completed purchases can be refunded")
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Guarded update so two concurrent refunds cannot double-reverse.
		res := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ?", purchase.ID, models.PurchaseStatusCompleted).
			Updates(map[string]interface{}{
				"status":      models.PurchaseStatusRefunded,
				"refunded_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict("only completed purchases can be refunded")
		}

		if err := tx.Model(&models.Prompt{}).Where("id = ?", purchase.PromptID).
			UpdateColumn("stats_purchases", gorm.Expr("stats_purchases - 1")).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("address = ?", purchase.Seller).
			UpdateColumn("stats_total_earnings", gorm.Expr("stats_total_earnings - ?", purchase.Amount)).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("address = ?", purchase.Buyer).
			UpdateColumn("stats_total_purchases", gorm.Expr("stats_total_purchases - 1")).Error
	})

	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindInternal {
			return nil, err
		}
		return nil, apperrors.Storage(err, "failed to refund purchase")
	}

	purchase.Status = models.PurchaseStatusRefunded
	purchase.RefundedAt = &now
	return &purchase, nil
}
