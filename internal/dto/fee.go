package dto

import (
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// WithdrawRequest represents an ad-hoc payout to the caller's account
type WithdrawRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// FeeEntryResponse represents one fee ledger entry
type FeeEntryResponse struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"`
	EventID       int64     `json:"event_id"`
	TicketID      int64     `json:"ticket_id"`
	ListingID     int64     `json:"listing_id,omitempty"`
	PayerID       string    `json:"payer_id"`
	PayeeID       string    `json:"payee_id"`
	Gross         int64     `json:"gross"`
	Fee           int64     `json:"fee"`
	Payout        int64     `json:"payout"`
	FeeBps        int64     `json:"fee_bps"`
	SettlementRef string    `json:"settlement_ref"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromFeeEntry converts a domain FeeEntry to FeeEntryResponse
func FromFeeEntry(e *domain.FeeEntry) *FeeEntryResponse {
	return &FeeEntryResponse{
		ID:            e.ID,
		Kind:          string(e.Kind),
		EventID:       e.EventID,
		TicketID:      e.TicketID,
		ListingID:     e.ListingID,
		PayerID:       e.PayerID,
		PayeeID:       e.PayeeID,
		Gross:         e.Gross,
		Fee:           e.Fee,
		Payout:        e.Payout,
		FeeBps:        e.FeeBps,
		SettlementRef: e.SettlementRef,
		Currency:      e.Currency,
		CreatedAt:     e.CreatedAt,
	}
}

// StatementResponse represents a list of fee entries
type StatementResponse struct {
	Entries []*FeeEntryResponse `json:"entries"`
	Total   int                 `json:"total"`
}

// FromFeeEntries converts a slice of domain fee entries
func FromFeeEntries(entries []*domain.FeeEntry) *StatementResponse {
	out := make([]*FeeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromFeeEntry(e))
	}
	return &StatementResponse{Entries: out, Total: len(out)}
}

// PlatformFeesResponse reports the platform's accumulated cut
type PlatformFeesResponse struct {
	TotalFees int64 `json:"total_fees"`
}

// WithdrawResponse reports a settled withdrawal
type WithdrawResponse struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
}
