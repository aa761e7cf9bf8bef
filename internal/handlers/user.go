// internal/handlers/user.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/promptbazaar/promptbazaar-backend/internal/models"
	"github.com/promptbazaar/promptbazaar-backend/internal/services"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

type UserHandler struct {
	userService   *services.UserService
	socialService *services.SocialService
	statsService  *services.StatsService
	promptService *services.PromptService
}

func NewUserHandler(userService *services.UserService, socialService *services.SocialService, statsService *services.StatsService, promptService *services.PromptService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		socialService: socialService,
		statsService:  statsService,
		promptService: promptService,
	}
}

func addressParam(c *gin.Context) (string, bool) {
	address := models.NormalizeAddress(c.Param("address"))
	if !utils.IsValidAddress(address) {
		utils.BadRequestResponse(c, "Invalid address", nil)
		return "", false
	}
	return address, true
}

// GET /v1/users/:address
func (h *UserHandler) GetUser(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByAddress(address)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// PUT /v1/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	viewer, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.userService.UpdateProfile(viewer, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// GET /v1/users/search
func (h *UserHandler) SearchUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.SearchUsers(c.Query("q"), params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /v1/users/leaderboard
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	users, err := h.statsService.GetTopCreators(c.Request.Context(), limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, users)
}

// GET /v1/users/:address/creations
func (h *UserHandler) GetUserCreations(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	prompts, total, err := h.promptService.GetPromptsByCreator(address, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(prompts, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /v1/users/:address/purchases
//
// A buyer's purchase history is private; the route only serves the
// authenticated viewer's own ledger.
func (h *UserHandler) GetUserPurchases(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	viewer, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	if viewer != address {
		utils.ForbiddenResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	purchases, total, err := h.userService.GetUserPurchases(address, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(purchases, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /v1/users/:address/tips
func (h *UserHandler) GetUserTips(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	direction := c.DefaultQuery("type", "received")
	if direction != "sent" && direction != "received" {
		utils.BadRequestResponse(c, "type must be sent or received", nil)
		return
	}

	params := utils.GetPaginationParams(c)
	tips, total, err := h.userService.GetUserTips(address, direction, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(tips, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /v1/users/:address/sales
func (h *UserHandler) GetSalesDashboard(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	dashboard, err := h.statsService.GetSalesDashboard(address, c.Query("window"))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, dashboard)
}

// POST /v1/users/:address/follow
func (h *UserHandler) Follow(c *gin.Context) {
	followee, ok := addressParam(c)
	if !ok {
		return
	}

	follower, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.socialService.Follow(follower, followee); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"following": true})
}

// DELETE /v1/users/:address/follow
func (h *UserHandler) Unfollow(c *gin.Context) {
	followee, ok := addressParam(c)
	if !ok {
		return
	}

	follower, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.socialService.Unfollow(follower, followee); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"following": false})
}

// GET /v1/users/:address/followers
func (h *UserHandler) GetFollowers(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.socialService.GetFollowers(address, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /v1/users/:address/following
func (h *UserHandler) GetFollowing(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.socialService.GetFollowing(address, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.PaginatedResponse(c, result)
}
