package dto

import (
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// TierRequest describes one capacity tier on a new event
type TierRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int64  `json:"capacity" binding:"required,gt=0"`
	Price    int64  `json:"price" binding:"required,gt=0"`
}

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	MetadataRef string        `json:"metadata_ref,omitempty"`
	Category    string        `json:"category,omitempty"`
	StartTime   time.Time     `json:"start_time" binding:"required"`
	EndTime     time.Time     `json:"end_time" binding:"required"`
	Tiers       []TierRequest `json:"tiers" binding:"required,min=1,dive"`
}

// Validate checks the cross-field rules gin bindings cannot express
func (r *CreateEventRequest) Validate() (bool, string) {
	if !r.EndTime.After(r.StartTime) {
		return false, "end_time must be after start_time"
	}
	seen := make(map[string]bool, len(r.Tiers))
	for _, t := range r.Tiers {
		if seen[t.Name] {
			return false, "tier names must be unique"
		}
		seen[t.Name] = true
	}
	return true, ""
}

// DomainTiers converts the request tiers to domain tiers
func (r *CreateEventRequest) DomainTiers() []domain.Tier {
	tiers := make([]domain.Tier, 0, len(r.Tiers))
	for _, t := range r.Tiers {
		tiers = append(tiers, domain.Tier{Name: t.Name, Capacity: t.Capacity, Price: t.Price})
	}
	return tiers
}

// TierResponse is one tier with its remaining capacity
type TierResponse struct {
	Name      string `json:"name"`
	Capacity  int64  `json:"capacity"`
	Price     int64  `json:"price"`
	Sold      int64  `json:"sold"`
	Remaining int64  `json:"remaining"`
}

// EventResponse represents an event
type EventResponse struct {
	ID            int64          `json:"id"`
	OrganizerID   string         `json:"organizer_id"`
	MetadataRef   string         `json:"metadata_ref,omitempty"`
	Category      string         `json:"category"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Status        string         `json:"status"`
	Tiers         []TierResponse `json:"tiers"`
	TotalCapacity int64          `json:"total_capacity"`
	Sold          int64          `json:"sold"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// FromEvent converts a domain Event to EventResponse
func FromEvent(e *domain.Event) *EventResponse {
	tiers := make([]TierResponse, 0, len(e.Tiers))
	for i := range e.Tiers {
		t := &e.Tiers[i]
		tiers = append(tiers, TierResponse{
			Name:      t.Name,
			Capacity:  t.Capacity,
			Price:     t.Price,
			Sold:      t.Sold,
			Remaining: t.Remaining(),
		})
	}
	return &EventResponse{
		ID:            e.ID,
		OrganizerID:   e.OrganizerID,
		MetadataRef:   e.MetadataRef,
		Category:      string(e.Category),
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		Status:        e.Status.String(),
		Tiers:         tiers,
		TotalCapacity: e.TotalCapacity,
		Sold:          e.Sold,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// EventListResponse represents a page of events
type EventListResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// FromEvents converts a page of domain events
func FromEvents(events []*domain.Event, total int64, limit, offset int) *EventListResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	return &EventListResponse{Events: out, Total: total, Limit: limit, Offset: offset}
}
