// internal/handlers/ledger.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptbazaar/promptbazaar-backend/internal/services"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

// LedgerHandler exposes the purchase and tip notification endpoints. The
// client has already settled payment on the external ledger; these routes
// just reconcile the transaction hash into marketplace state.
type LedgerHandler struct {
	ledgerService *services.LedgerService
}

func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

type purchaseRequest struct {
	TxHash string `json:"tx_hash" validate:"required,tx_hash"`
}

// POST /v1/prompts/:id/purchase
func (h *LedgerHandler) RecordPurchase(c *gin.Context) {
	buyer, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	purchase, err := h.ledgerService.RecordPurchase(buyer, promptID, req.TxHash)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, purchase)
}

type tipRequest struct {
	To       string `json:"to" validate:"required,eth_addr"`
	Amount   int64  `json:"amount" validate:"required,min=1"`
	TxHash   string `json:"tx_hash" validate:"required,tx_hash"`
	PromptID string `json:"prompt_id,omitempty"`
	Message  string `json:"message,omitempty" validate:"max=500"`
}

// POST /v1/tips
func (h *LedgerHandler) RecordTip(c *gin.Context) {
	from, exists := utils.GetViewerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req tipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	serviceReq := &services.RecordTipRequest{
		From:    from,
		To:      req.To,
		Amount:  req.Amount,
		TxHash:  req.TxHash,
		Message: req.Message,
	}

	if req.PromptID != "" {
		promptID, err := uuid.Parse(req.PromptID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid prompt ID", nil)
			return
		}
		serviceReq.PromptID = &promptID
	}

	tip, err := h.ledgerService.RecordTip(serviceReq)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, tip)
}
