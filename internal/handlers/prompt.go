// internal/handlers/prompt.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptbazaar/promptbazaar-backend/internal/models"
	"github.com/promptbazaar/promptbazaar-backend/internal/services"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

type PromptHandler struct {
	promptService *services.PromptService
	accessService *services.AccessService
}

func NewPromptHandler(promptService *services.PromptService, accessService *services.AccessService) *PromptHandler {
	return &PromptHandler{
		promptService: promptService,
		accessService: accessService,
	}
}

// GET /v1/prompts
// GET /v1/prompts/search?q=
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	params := services.PromptSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Type:             c.Query("type"),
	}
	if q := c.Query("q"); q != "" {
		params.Search = q
	}

	if v := c.Query("price_min"); v != "" {
		if min, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.PriceMin = &min
		}
	}
	if v := c.Query("price_max"); v != "" {
		if max, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.PriceMax = &max
		}
	}

	prompts, total, err := h.promptService.ListPrompts(params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(prompts, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /v1/prompts/trending
func (h *PromptHandler) GetTrendingPrompts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	prompts, err := h.promptService.GetTrendingPrompts(c.Request.Context(), limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, prompts)
}

// POST /v1/prompts
func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	creator, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	prompt, err := h.promptService.CreatePrompt(creator, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, prompt)
}

// GET /v1/prompts/:id
//
// Gated fields are included only for the creator or a buyer with a completed
// purchase; entitlement is checked against the store on every call.
func (h *PromptHandler) GetPrompt(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	viewer, _ := utils.GetViewerFromContext(c)

	view, err := h.accessService.GetPromptView(viewer, promptID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, view)
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// PUT /v1/prompts/:id/status
//
// Lifecycle changes are restricted to the creator. Prompts are deactivated,
// never deleted, so existing buyers keep their entitlements.
func (h *PromptHandler) SetStatus(c *gin.Context) {
	creator, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.promptService.SetStatus(promptID, creator, models.PromptStatus(req.Status)); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"status": req.Status})
}

// GET /v1/prompts/:id/purchase-status
func (h *PromptHandler) GetPurchaseStatus(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	viewer, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	hasPurchased, err := h.accessService.HasPurchased(viewer, promptID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"hasPurchased": hasPurchased})
}

// POST /v1/prompts/:id/heart
func (h *PromptHandler) HeartPrompt(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	if err := h.promptService.HeartPrompt(promptID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"hearted": true})
}
