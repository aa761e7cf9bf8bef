// internal/services/access_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
)

// AccessService decides whether a viewer may see a prompt's gated fields.
// Entitlement is re-evaluated from the store on every call; it is never
// cached across requests, since a refund can revoke it between two fetches.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// CanViewFullContent returns true iff the viewer owns the prompt (creator) or
// holds a completed purchase for it. An empty viewer is anonymous and never
// entitled.
func (s *AccessService) CanViewFullContent(viewer string, promptID uuid.UUID) (bool, error) {
	if viewer == "" {
		return false, nil
	}
	viewer = models.NormalizeAddress(viewer)

	var prompt models.Prompt
	if err := s.db.Select("creator").Where("id = ?", promptID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.NotFound("prompt")
		}
		return false, apperrors.Storage(err, "failed to load prompt")
	}

	if prompt.Creator == viewer {
		return true, nil
	}

	var count int64
	if err := s.db.Model(&models.Purchase{}).
		Where("buyer = ? AND prompt_id = ? AND status = ?", viewer, promptID, models.PurchaseStatusCompleted).
		Count(&count).Error; err != nil {
		return false, apperrors.Storage(err, "failed to check purchases")
	}

	return count > 0, nil
}

// HasPurchased checks only the ledger, ignoring ownership.
func (s *AccessService) HasPurchased(viewer string, promptID uuid.UUID) (bool, error) {
	viewer = models.NormalizeAddress(viewer)

	var count int64
	if err := s.db.Model(&models.Purchase{}).
		Where("buyer = ? AND prompt_id = ? AND status = ?", viewer, promptID, models.PurchaseStatusCompleted).
		Count(&count).Error; err != nil {
		return false, apperrors.Storage(err, "failed to check purchases")
	}
	return count > 0, nil
}

// GetPromptView returns the prompt with preview, stats, and metadata always
// present, and content/sample output only for entitled viewers. The gated
// fields are omitted outright for everyone else. Non-creator fetches bump the
// view counter.
func (s *AccessService) GetPromptView(viewer string, promptID uuid.UUID) (*models.PromptView, error) {
	viewer = models.NormalizeAddress(viewer)

	var prompt models.Prompt
	if err := s.db.Where("id = ?", promptID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("prompt")
		}
		return nil, apperrors.Storage(err, "failed to load prompt")
	}

	entitled := viewer != "" && prompt.Creator == viewer
	if !entitled && viewer != "" {
		purchased, err := s.HasPurchased(viewer, promptID)
		if err != nil {
			return nil, err
		}
		entitled = purchased
	}

	if viewer == "" || viewer != prompt.Creator {
		if err := s.db.Model(&models.Prompt{}).Where("id = ?", prompt.ID).
			UpdateColumn("stats_views", gorm.Expr("stats_views + 1")).Error; err != nil {
			return nil, apperrors.Storage(err, "failed to update view count")
		}
		prompt.Stats.Views++
	}

	view := &models.PromptView{
		ID:          prompt.ID,
		Title:       prompt.Title,
		Description: prompt.Description,
		Preview:     prompt.Preview,
		Category:    prompt.Category,
		Type:        prompt.Type,
		Price:       prompt.Price,
		Creator:     prompt.Creator,
		Tags:        prompt.Tags,
		Trending:    prompt.Trending,
		Featured:    prompt.Featured,
		Status:      prompt.Status,
		Stats:       prompt.Stats,
		Owned:       entitled,
		CreatedAt:   prompt.CreatedAt,
	}

	if entitled {
		content := prompt.Content
		sample := prompt.SampleOutput
		view.Content = &content
		view.SampleOutput = &sample
	}

	return view, nil
}
