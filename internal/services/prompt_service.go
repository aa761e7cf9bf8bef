// internal/services/prompt_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/cache"
	"github.com/promptbazaar/promptbazaar-backend/internal/config"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

type PromptService struct {
	db     *gorm.DB
	cache  *cache.Cache
	config *config.Config
}

func NewPromptService(db *gorm.DB, cache *cache.Cache, config *config.Config) *PromptService {
	return &PromptService{
		db:     db,
		cache:  cache,
		config: config,
	}
}

type CreatePromptRequest struct {
	Title        string   `json:"title" validate:"required,min=3,max=200"`
	Description  string   `json:"description" validate:"required,max=1000"`
	Content      string   `json:"content" validate:"required,max=10000"`
	Preview      string   `json:"preview" validate:"required,max=500"`
	SampleOutput string   `json:"sample_output,omitempty" validate:"max=2000"`
	Category     string   `json:"category" validate:"required"`
	Type         string   `json:"type" validate:"required,oneof=chatgpt claude gemini midjourney dalle stable-diffusion code custom"`
	Price        int64    `json:"price" validate:"required,min=1"`
	Tags         []string `json:"tags,omitempty"`
}

type PromptSearchParams struct {
	utils.PaginationParams
	Type     string `json:"type,omitempty"`
	PriceMin *int64 `json:"price_min,omitempty"`
	PriceMax *int64 `json:"price_max,omitempty"`
}

// CreatePrompt stores a prompt as active and bumps the creator's prompt
// count in the same transaction.
func (s *PromptService) CreatePrompt(creator string, req *CreatePromptRequest) (*models.Prompt, error) {
	creator = models.NormalizeAddress(creator)

	if req.Price < s.config.Ledger.MinPromptPrice || req.Price > s.config.Ledger.MaxPromptPrice {
		return nil, apperrors.InvalidInput("price must be between %d and %d",
			s.config.Ledger.MinPromptPrice, s.config.Ledger.MaxPromptPrice)
	}

	prompt := &models.Prompt{
		Title:        req.Title,
		Description:  req.Description,
		Content:      req.Content,
		Preview:      req.Preview,
		SampleOutput: req.SampleOutput,
		Category:     req.Category,
		Type:         models.PromptType(req.Type),
		Price:        req.Price,
		Creator:      creator,
		Tags:         req.Tags,
		Status:       models.PromptStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreateUser(tx, creator); err != nil {
			return err
		}

		if err := tx.Create(prompt).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("address = ?", creator).
			UpdateColumn("stats_prompts", gorm.Expr("stats_prompts + 1")).Error
	})

	if err != nil {
		return nil, apperrors.Storage(err, "failed to create prompt")
	}

	return prompt, nil
}

func (s *PromptService) GetPromptByID(id uuid.UUID) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := s.db.Where("id = ?", id).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("prompt")
		}
		return nil, apperrors.Storage(err, "failed to load prompt")
	}
	return &prompt, nil
}

// ListPrompts returns active prompts with the marketplace filters and sorts.
func (s *PromptService) ListPrompts(params PromptSearchParams) ([]models.Prompt, int64, error) {
	query := s.db.Model(&models.Prompt{}).Where("status = ?", models.PromptStatusActive)

	if params.Category != "" && params.Category != "All Categories" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.PriceMin != nil {
		query = query.Where("price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("price <= ?", *params.PriceMax)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to count prompts")
	}

	switch params.Sort {
	case "trending":
		query = query.Order("trending DESC, stats_purchases DESC")
	case "recent":
		query = query.Order("created_at DESC")
	case "rating":
		query = query.Order("stats_rating DESC")
	case "price-low":
		query = query.Order("price ASC")
	case "price-high":
		query = query.Order("price DESC")
	case "popular":
		query = query.Order("stats_purchases DESC")
	default:
		query = query.Order("trending DESC, stats_purchases DESC")
	}

	var prompts []models.Prompt
	if err := utils.ApplyPagination(query, params.PaginationParams).Find(&prompts).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to list prompts")
	}

	return prompts, total, nil
}

// GetTrendingPrompts serves the trending shelf cache-aside.
func (s *PromptService) GetTrendingPrompts(ctx context.Context, limit int) ([]models.Prompt, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var prompts []models.Prompt
	key := fmt.Sprintf("prompts:trending:%d", limit)
	ttl := time.Duration(s.config.Ledger.LeaderboardTTL) * time.Second

	err := s.cache.Fetch(ctx, key, &prompts, ttl, func() error {
		return s.db.Where("trending = ? AND status = ?", true, models.PromptStatusActive).
			Order("stats_purchases DESC").Limit(limit).
			Find(&prompts).Error
	})
	if err != nil {
		return nil, apperrors.Storage(err, "failed to load trending prompts")
	}

	return prompts, nil
}

func (s *PromptService) GetPromptsByCreator(creator string, params utils.PaginationParams) ([]models.Prompt, int64, error) {
	query := s.db.Model(&models.Prompt{}).Where("creator = ?", models.NormalizeAddress(creator))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to count prompts")
	}

	var prompts []models.Prompt
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&prompts).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to list prompts")
	}

	return prompts, total, nil
}

// HeartPrompt bumps the heart counter.
func (s *PromptService) HeartPrompt(id uuid.UUID) error {
	res := s.db.Model(&models.Prompt{}).Where("id = ? AND status = ?", id, models.PromptStatusActive).
		UpdateColumn("stats_hearts", gorm.Expr("stats_hearts + 1"))
	if res.Error != nil {
		return apperrors.Storage(res.Error, "failed to update prompt")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("prompt")
	}
	return nil
}

// SetStatus performs the soft lifecycle transition; prompts are never hard
// deleted.
func (s *PromptService) SetStatus(id uuid.UUID, creator string, status models.PromptStatus) error {
	res := s.db.Model(&models.Prompt{}).
		Where("id = ? AND creator = ?", id, models.NormalizeAddress(creator)).
		UpdateColumn("status", status)
	if res.Error != nil {
		return apperrors.Storage(res.Error, "failed to update prompt")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("prompt")
	}
	return nil
}
