package domain

import (
	"fmt"
	"time"
)

// ListingStatus represents the lifecycle state of a resale listing
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusCancelled ListingStatus = "cancelled"
)

// IsValid checks if the status is a valid ListingStatus
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ListingStatus
func (s ListingStatus) String() string {
	return string(s)
}

// PricePoint records one asking price in a listing's history
type PricePoint struct {
	Price int64     `json:"price"`
	SetAt time.Time `json:"set_at"`
}

// Listing is a resale offer escrowing exactly one ticket
type Listing struct {
	ID           int64         `json:"id"`
	TicketID     int64         `json:"ticket_id"`
	EventID      int64         `json:"event_id"`
	SellerID     string        `json:"seller_id"`
	Price        int64         `json:"price"`
	Status       ListingStatus `json:"status"`
	PriceHistory []PricePoint  `json:"price_history"`
	BuyerID      string        `json:"buyer_id,omitempty"`
	SoldAt       *time.Time    `json:"sold_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewListing creates an active listing at the given asking price
func NewListing(ticketID, eventID int64, sellerID string, price int64, now time.Time) (*Listing, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: asking price must be positive", ErrInvalidAmount)
	}
	return &Listing{
		TicketID:     ticketID,
		EventID:      eventID,
		SellerID:     sellerID,
		Price:        price,
		Status:       ListingStatusActive,
		PriceHistory: []PricePoint{{Price: price, SetAt: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdatePrice changes the asking price and appends to the price history
func (l *Listing) UpdatePrice(price int64, now time.Time) error {
	if l.Status != ListingStatusActive {
		return ErrListingNotActive
	}
	if price <= 0 {
		return fmt.Errorf("%w: asking price must be positive", ErrInvalidAmount)
	}
	l.Price = price
	l.PriceHistory = append(l.PriceHistory, PricePoint{Price: price, SetAt: now})
	l.UpdatedAt = now
	return nil
}

// MarkSold records the buyer and closes the listing
func (l *Listing) MarkSold(buyerID string, now time.Time) error {
	if l.Status != ListingStatusActive {
		return ErrListingNotActive
	}
	l.Status = ListingStatusSold
	l.BuyerID = buyerID
	soldAt := now
	l.SoldAt = &soldAt
	l.UpdatedAt = now
	return nil
}

// Cancel withdraws the listing and releases the escrowed ticket
func (l *Listing) Cancel(now time.Time) error {
	if l.Status != ListingStatusActive {
		return ErrListingNotActive
	}
	l.Status = ListingStatusCancelled
	l.UpdatedAt = now
	return nil
}

// Clone returns a deep copy of the listing
func (l *Listing) Clone() *Listing {
	cp := *l
	cp.PriceHistory = make([]PricePoint, len(l.PriceHistory))
	copy(cp.PriceHistory, l.PriceHistory)
	if l.SoldAt != nil {
		soldAt := *l.SoldAt
		cp.SoldAt = &soldAt
	}
	return &cp
}
