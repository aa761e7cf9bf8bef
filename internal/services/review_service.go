// internal/services/review_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

// ReviewService records one rating per (reviewer, prompt) and keeps the
// prompt's rating equal to the arithmetic mean of all its reviews. The mean
// is recomputed from the full review set on every write rather than
// maintained incrementally, so rounding can never drift.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

type AddReviewRequest struct {
	Reviewer string    `json:"reviewer" validate:"required,eth_addr"`
	PromptID uuid.UUID `json:"prompt_id" validate:"required"`
	Rating   int       `json:"rating" validate:"required,min=1,max=5"`
	Comment  string    `json:"comment" validate:"required,max=1000"`
}

func (s *ReviewService) AddReview(req *AddReviewRequest) (*models.Review, error) {
	reviewer := models.NormalizeAddress(req.Reviewer)

	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	var prompt models.Prompt
	if err := s.db.Where("id = ?", req.PromptID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("prompt")
		}
		return nil, apperrors.Storage(err, "failed to load prompt")
	}

	if prompt.Creator == reviewer {
		return nil, apperrors.SelfAction("cannot review your own prompt")
	}

	review := &models.Review{
		Reviewer: reviewer,
		PromptID: prompt.ID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}

		var agg struct {
			AvgRating float64
			Count     int64
		}
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS count").
			Where("prompt_id = ?", prompt.ID).
			Scan(&agg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Prompt{}).Where("id = ?", prompt.ID).
			Updates(map[string]interface{}{
				"stats_rating":  agg.AvgRating,
				"stats_reviews": agg.Count,
			}).Error
	})

	if err != nil {
		if isDuplicateKeyErr(err) {
			return nil, apperrors.Duplicate("prompt already reviewed")
		}
		return nil, apperrors.Storage(err, "failed to add review")
	}

	return review, nil
}

func (s *ReviewService) GetPromptReviews(promptID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.Model(&models.Review{}).Where("prompt_id = ?", promptID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to count reviews")
	}

	var reviews []models.Review
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&reviews).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to list reviews")
	}

	return reviews, total, nil
}

// MarkHelpful bumps a review's helpful counter.
func (s *ReviewService) MarkHelpful(reviewID uuid.UUID) error {
	res := s.db.Model(&models.Review{}).Where("id = ?", reviewID).
		UpdateColumn("helpful", gorm.Expr("helpful + 1"))
	if res.Error != nil {
		return apperrors.Storage(res.Error, "failed to update review")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("review")
	}
	return nil
}
