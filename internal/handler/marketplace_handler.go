package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Amity808/entrytagv1/internal/dto"
	"github.com/Amity808/entrytagv1/internal/service"
	"github.com/Amity808/entrytagv1/pkg/middleware"
	"github.com/Amity808/entrytagv1/pkg/response"
)

// MarketplaceHandler handles resale listing HTTP requests
type MarketplaceHandler struct {
	market service.MarketplaceService
}

// NewMarketplaceHandler creates a new MarketplaceHandler
func NewMarketplaceHandler(market service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{market: market}
}

// Create handles POST /listings
func (h *MarketplaceHandler) Create(c *gin.Context) {
	sellerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	listing, err := h.market.ListTicket(c.Request.Context(), sellerID, req.TicketID, req.Price)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Created(c, dto.FromListing(listing))
}

// Get handles GET /listings/:id
func (h *MarketplaceHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	listing, err := h.market.GetListing(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromListing(listing))
}

// UpdatePrice handles PUT /listings/:id/price
func (h *MarketplaceHandler) UpdatePrice(c *gin.Context) {
	sellerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	listing, err := h.market.UpdatePrice(c.Request.Context(), sellerID, id, req.Price)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromListing(listing))
}

// Cancel handles POST /listings/:id/cancel
func (h *MarketplaceHandler) Cancel(c *gin.Context) {
	sellerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	listing, err := h.market.CancelListing(c.Request.Context(), sellerID, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromListing(listing))
}

// Buy handles POST /listings/:id/buy
func (h *MarketplaceHandler) Buy(c *gin.Context) {
	buyerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.BuyListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.market.Buy(c.Request.Context(), buyerID, id, req.Amount)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, &dto.ResaleResponse{
		Listing: dto.FromListing(result.Listing),
		Ticket:  dto.FromTicket(result.Ticket),
		Fee:     dto.FromFeeEntry(result.FeeEntry),
	})
}

// ListByEvent handles GET /events/:id/listings
func (h *MarketplaceHandler) ListByEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	listings, err := h.market.ListByEvent(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromListings(listings))
}

// ListMine handles GET /listings
func (h *MarketplaceHandler) ListMine(c *gin.Context) {
	sellerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	listings, err := h.market.ListBySeller(c.Request.Context(), sellerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromListings(listings))
}
