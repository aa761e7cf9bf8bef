// internal/services/social_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

// SocialService maintains follow edges and the denormalized follower counters
// on both sides. Edge plus both counters commit as one transaction, so the
// graph can never go asymmetric through a partial failure; the edge-existence
// guard makes both operations idempotent.
type SocialService struct {
	db *gorm.DB
}

func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db}
}

// Follow is a no-op success when the edge already exists.
func (s *SocialService) Follow(follower, followee string) error {
	follower = models.NormalizeAddress(follower)
	followee = models.NormalizeAddress(followee)

	if follower == followee {
		return apperrors.SelfAction("cannot follow yourself")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := getOrCreateUser(tx, follower); err != nil {
			return err
		}
		if _, err := getOrCreateUser(tx, followee); err != nil {
			return err
		}

		var existing models.Follow
		err := tx.Where("follower = ? AND followee = ?", follower, followee).First(&existing).Error
		if err == nil {
			return nil // already following
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		edge := models.Follow{Follower: follower, Followee: followee}
		if err := tx.Create(&edge).Error; err != nil {
			if isDuplicateKeyErr(err) {
				return nil // concurrent follow won; counters already counted it
			}
			return err
		}

		if err := tx.Model(&models.User{}).Where("address = ?", follower).
			UpdateColumn("stats_following", gorm.Expr("stats_following + 1")).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("address = ?", followee).
			UpdateColumn("stats_followers", gorm.Expr("stats_followers + 1")).Error
	})

	if err != nil {
		return apperrors.Storage(err, "failed to follow user")
	}
	return nil
}

// Unfollow is a no-op success when no edge exists.
func (s *SocialService) Unfollow(follower, followee string) error {
	follower = models.NormalizeAddress(follower)
	followee = models.NormalizeAddress(followee)

	if follower == followee {
		return apperrors.SelfAction("cannot unfollow yourself")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("follower = ? AND followee = ?", follower, followee).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // nothing to undo
		}

		if err := tx.Model(&models.User{}).Where("address = ?", follower).
			UpdateColumn("stats_following", gorm.Expr("stats_following - 1")).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("address = ?", followee).
			UpdateColumn("stats_followers", gorm.Expr("stats_followers - 1")).Error
	})

	if err != nil {
		return apperrors.Storage(err, "failed to unfollow user")
	}
	return nil
}

// IsFollowing reports whether the follower -> followee edge exists.
func (s *SocialService) IsFollowing(follower, followee string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower = ? AND followee = ?", models.NormalizeAddress(follower), models.NormalizeAddress(followee)).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Storage(err, "failed to check follow edge")
	}
	return count > 0, nil
}

// GetFollowers lists the users following the given address.
func (s *SocialService) GetFollowers(address string, params utils.PaginationParams) ([]models.User, int64, error) {
	return s.listEdgeUsers("followee", "follower", address, params)
}

// GetFollowing lists the users the given address follows.
func (s *SocialService) GetFollowing(address string, params utils.PaginationParams) ([]models.User, int64, error) {
	return s.listEdgeUsers("follower", "followee", address, params)
}

func (s *SocialService) listEdgeUsers(matchColumn, selectColumn, address string, params utils.PaginationParams) ([]models.User, int64, error) {
	address = models.NormalizeAddress(address)

	sub := s.db.Model(&models.Follow{}).Select(selectColumn).Where(matchColumn+" = ?", address)

	query := s.db.Model(&models.User{}).Where("address IN (?)", sub)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to count users")
	}

	var users []models.User
	if err := utils.ApplyPagination(query.Order("address"), params).Find(&users).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to list users")
	}

	return users, total, nil
}
