package dto

import (
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// CreateListingRequest represents a request to list a ticket for resale
type CreateListingRequest struct {
	TicketID int64 `json:"ticket_id" binding:"required"`
	Price    int64 `json:"price" binding:"required,gt=0"`
}

// UpdatePriceRequest represents an asking price change
type UpdatePriceRequest struct {
	Price int64 `json:"price" binding:"required,gt=0"`
}

// BuyListingRequest represents a resale purchase. Amount must match the
// current asking price exactly.
type BuyListingRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// PricePointResponse is one entry of a listing's price history
type PricePointResponse struct {
	Price int64     `json:"price"`
	SetAt time.Time `json:"set_at"`
}

// ListingResponse represents a resale listing
type ListingResponse struct {
	ID           int64                `json:"id"`
	TicketID     int64                `json:"ticket_id"`
	EventID      int64                `json:"event_id"`
	SellerID     string               `json:"seller_id"`
	Price        int64                `json:"price"`
	Status       string               `json:"status"`
	PriceHistory []PricePointResponse `json:"price_history"`
	BuyerID      string               `json:"buyer_id,omitempty"`
	SoldAt       *time.Time           `json:"sold_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// FromListing converts a domain Listing to ListingResponse
func FromListing(l *domain.Listing) *ListingResponse {
	history := make([]PricePointResponse, 0, len(l.PriceHistory))
	for _, p := range l.PriceHistory {
		history = append(history, PricePointResponse{Price: p.Price, SetAt: p.SetAt})
	}
	return &ListingResponse{
		ID:           l.ID,
		TicketID:     l.TicketID,
		EventID:      l.EventID,
		SellerID:     l.SellerID,
		Price:        l.Price,
		Status:       l.Status.String(),
		PriceHistory: history,
		BuyerID:      l.BuyerID,
		SoldAt:       l.SoldAt,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// ListingListResponse represents a list of listings
type ListingListResponse struct {
	Listings []*ListingResponse `json:"listings"`
	Total    int                `json:"total"`
}

// FromListings converts a slice of domain listings
func FromListings(listings []*domain.Listing) *ListingListResponse {
	out := make([]*ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, FromListing(l))
	}
	return &ListingListResponse{Listings: out, Total: len(out)}
}

// ResaleResponse is the settled outcome of a resale purchase
type ResaleResponse struct {
	Listing *ListingResponse  `json:"listing"`
	Ticket  *TicketResponse   `json:"ticket"`
	Fee     *FeeEntryResponse `json:"fee"`
}
