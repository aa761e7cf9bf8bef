// internal/services/user_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UpdateProfileRequest struct {
	Name       string   `json:"name,omitempty" validate:"omitempty,max=100"`
	Bio        string   `json:"bio,omitempty" validate:"omitempty,max=500"`
	Avatar     string   `json:"avatar,omitempty" validate:"omitempty,url,max=500"`
	Location   string   `json:"location,omitempty" validate:"omitempty,max=100"`
	Website    string   `json:"website,omitempty" validate:"omitempty,url,max=255"`
	Twitter    string   `json:"twitter,omitempty" validate:"omitempty,max=100"`
	Github     string   `json:"github,omitempty" validate:"omitempty,max=100"`
	Categories []string `json:"categories,omitempty"`
}

// GetOrCreateUser resolves a user by address, creating a zeroed record on
// first reference.
func (s *UserService) GetOrCreateUser(address string) (*models.User, error) {
	user, err := getOrCreateUser(s.db, address)
	if err != nil {
		return nil, apperrors.Storage(err, "failed to resolve user")
	}
	return user, nil
}

func (s *UserService) GetUserByAddress(address string) (*models.User, error) {
	var user models.User
	err := s.db.Where("address = ?", models.NormalizeAddress(address)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Storage(err, "failed to load user")
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(address string, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetOrCreateUser(address)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Website != "" {
		updates["website"] = req.Website
	}
	if req.Twitter != "" {
		updates["twitter"] = req.Twitter
	}
	if req.Github != "" {
		updates["github"] = req.Github
	}
	if len(req.Categories) > 0 {
		updates["categories"] = models.StringList(req.Categories)
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Storage(err, "failed to update profile")
	}

	return s.GetUserByAddress(address)
}

// GetUserPurchases lists a buyer's purchases, newest first, with the prompt
// preloaded for display.
func (s *UserService) GetUserPurchases(address string, params utils.PaginationParams) ([]models.Purchase, int64, error) {
	address = models.NormalizeAddress(address)
	query := s.db.Model(&models.Purchase{}).Where("buyer = ?", address)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to count purchases")
	}

	var purchases []models.Purchase
	if err := utils.ApplyPagination(query.Preload("Prompt").Order("created_at DESC"), params).
		Find(&purchases).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to list purchases")
	}

	return purchases, total, nil
}

// GetUserTips lists tips sent by or received by an address.
func (s *UserService) GetUserTips(address, direction string, params utils.PaginationParams) ([]models.Tip, int64, error) {
	address = models.NormalizeAddress(address)

	column := "to_address"
	if direction == "sent" {
		column = "from_address"
	}

	query := s.db.Model(&models.Tip{}).Where(column+" = ?", address)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to count tips")
	}

	var tips []models.Tip
	if err := utils.ApplyPagination(query.Preload("Prompt").Order("created_at DESC"), params).
		Find(&tips).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to list tips")
	}

	return tips, total, nil
}

func (s *UserService) SearchUsers(search string, params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR bio LIKE ? OR address LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to count users")
	}

	var users []models.User
	if err := utils.ApplyPagination(query.Order("stats_total_earnings DESC"), params).
		Find(&users).Error; err != nil {
		return nil, 0, apperrors.Storage(err, "failed to list users")
	}

	return users, total, nil
}
