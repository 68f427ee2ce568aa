package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/dto"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/internal/service"
	"github.com/Amity808/entrytagv1/pkg/middleware"
	"github.com/Amity808/entrytagv1/pkg/response"
)

// EventHandler handles event lifecycle HTTP requests
type EventHandler struct {
	events service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(events service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	organizerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if valid, msg := req.Validate(); !valid {
		response.BadRequest(c, msg)
		return
	}

	event, err := h.events.CreateEvent(c.Request.Context(), organizerID, service.CreateEventParams{
		MetadataRef: req.MetadataRef,
		Category:    domain.EventCategory(req.Category),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Tiers:       req.DomainTiers(),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Created(c, dto.FromEvent(event))
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filter := repository.ListFilter{
		Status:      domain.EventStatus(c.Query("status")),
		Category:    domain.EventCategory(c.Query("category")),
		OrganizerID: c.Query("organizer_id"),
		Limit:       limit,
		Offset:      offset,
	}

	events, total, err := h.events.ListEvents(c.Request.Context(), filter)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromEvents(events, total, limit, offset))
}

// Activate handles POST /events/:id/activate
func (h *EventHandler) Activate(c *gin.Context) {
	organizerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.ActivateEvent(c.Request.Context(), organizerID, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}

// Complete handles POST /events/:id/complete
func (h *EventHandler) Complete(c *gin.Context) {
	organizerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.CompleteEvent(c.Request.Context(), organizerID, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}

// Cancel handles POST /events/:id/cancel
func (h *EventHandler) Cancel(c *gin.Context) {
	organizerID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.CancelEvent(c.Request.Context(), organizerID, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}
