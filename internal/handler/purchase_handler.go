package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Amity808/entrytagv1/internal/dto"
	"github.com/Amity808/entrytagv1/internal/service"
	"github.com/Amity808/entrytagv1/pkg/middleware"
	"github.com/Amity808/entrytagv1/pkg/response"
)

// PurchaseHandler handles primary market purchases
type PurchaseHandler struct {
	purchases service.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchases service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// Purchase handles POST /purchases
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	buyerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.purchases.Purchase(c.Request.Context(), buyerID, service.PurchaseParams{
		EventID:  req.EventID,
		TierName: req.TierName,
		Amount:   req.Amount,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Created(c, &dto.PurchaseResponse{
		Ticket: dto.FromTicket(result.Ticket),
		Fee:    dto.FromFeeEntry(result.FeeEntry),
	})
}
