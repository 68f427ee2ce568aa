package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Amity808/entrytagv1/internal/dto"
	"github.com/Amity808/entrytagv1/internal/service"
	"github.com/Amity808/entrytagv1/pkg/middleware"
	"github.com/Amity808/entrytagv1/pkg/response"
)

// FeeHandler handles fee ledger and payout HTTP requests
type FeeHandler struct {
	payouts service.PayoutService
}

// NewFeeHandler creates a new FeeHandler
func NewFeeHandler(payouts service.PayoutService) *FeeHandler {
	return &FeeHandler{payouts: payouts}
}

// MyStatement handles GET /fees
func (h *FeeHandler) MyStatement(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	entries, err := h.payouts.AccountStatement(c.Request.Context(), accountID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromFeeEntries(entries))
}

// EventStatement handles GET /events/:id/fees
func (h *FeeHandler) EventStatement(c *gin.Context) {
	callerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	entries, err := h.payouts.EventStatement(c.Request.Context(), callerID, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromFeeEntries(entries))
}

// PlatformFees handles GET /fees/platform
func (h *FeeHandler) PlatformFees(c *gin.Context) {
	total, err := h.payouts.PlatformFees(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, &dto.PlatformFeesResponse{TotalFees: total})
}

// Withdraw handles POST /payouts/withdraw
func (h *FeeHandler) Withdraw(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	receipt, err := h.payouts.Withdraw(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, &dto.WithdrawResponse{
		TransactionID: receipt.TransactionID,
		Amount:        req.Amount,
	})
}
