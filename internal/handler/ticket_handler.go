package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Amity808/entrytagv1/internal/dto"
	"github.com/Amity808/entrytagv1/internal/service"
	"github.com/Amity808/entrytagv1/pkg/middleware"
	"github.com/Amity808/entrytagv1/pkg/response"
)

// TicketHandler handles ticket HTTP requests
type TicketHandler struct {
	tickets service.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(tickets service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Get handles GET /tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromTicket(ticket))
}

// ListMine handles GET /tickets
func (h *TicketHandler) ListMine(c *gin.Context) {
	ownerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	tickets, err := h.tickets.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromTickets(tickets))
}

// ListByEvent handles GET /events/:id/tickets
func (h *TicketHandler) ListByEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	tickets, err := h.tickets.ListByEvent(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromTickets(tickets))
}

// Transfer handles POST /tickets/:id/transfer
func (h *TicketHandler) Transfer(c *gin.Context) {
	ownerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ticket, err := h.tickets.Transfer(c.Request.Context(), ownerID, id, req.ToAccountID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromTicket(ticket))
}

// Redeem handles POST /tickets/:id/redeem
func (h *TicketHandler) Redeem(c *gin.Context) {
	organizerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.tickets.Redeem(c.Request.Context(), organizerID, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromTicket(ticket))
}
