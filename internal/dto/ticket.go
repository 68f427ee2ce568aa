package dto

import (
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// PurchaseRequest represents a primary purchase. Amount must match the
// tier price exactly, minor units.
type PurchaseRequest struct {
	EventID  int64  `json:"event_id" binding:"required"`
	TierName string `json:"tier_name" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

// TransferRequest represents a free transfer of an owned ticket
type TransferRequest struct {
	ToAccountID string `json:"to_account_id" binding:"required"`
}

// TicketResponse represents a ticket
type TicketResponse struct {
	ID            int64     `json:"id"`
	EventID       int64     `json:"event_id"`
	TierName      string    `json:"tier_name"`
	OwnerID       string    `json:"owner_id"`
	Status        string    `json:"status"`
	PurchasePrice int64     `json:"purchase_price"`
	AcquiredAt    time.Time `json:"acquired_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FromTicket converts a domain Ticket to TicketResponse
func FromTicket(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:            t.ID,
		EventID:       t.EventID,
		TierName:      t.TierName,
		OwnerID:       t.OwnerID,
		Status:        t.Status.String(),
		PurchasePrice: t.PurchasePrice,
		AcquiredAt:    t.AcquiredAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// TicketListResponse represents a list of tickets
type TicketListResponse struct {
	Tickets []*TicketResponse `json:"tickets"`
	Total   int               `json:"total"`
}

// FromTickets converts a slice of domain tickets
func FromTickets(tickets []*domain.Ticket) *TicketListResponse {
	out := make([]*TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, FromTicket(t))
	}
	return &TicketListResponse{Tickets: out, Total: len(out)}
}

// PurchaseResponse is a minted ticket with its fee ledger entry
type PurchaseResponse struct {
	Ticket *TicketResponse   `json:"ticket"`
	Fee    *FeeEntryResponse `json:"fee"`
}
