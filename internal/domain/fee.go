package domain

import (
	"fmt"
	"time"
)

// FeeEntryKind distinguishes the ledger entry types: credits from primary
// sales and resales, and debits for settled withdrawals.
type FeeEntryKind string

const (
	FeeKindPrimary FeeEntryKind = "primary"
	FeeKindResale  FeeEntryKind = "resale"
	FeeKindPayout  FeeEntryKind = "payout"
)

// FeeEntry records one settled sale and its split. Amounts are in minor
// currency units and always satisfy Gross == Fee + Payout.
type FeeEntry struct {
	ID            int64        `json:"id"`
	Kind          FeeEntryKind `json:"kind"`
	EventID       int64        `json:"event_id"`
	TicketID      int64        `json:"ticket_id"`
	ListingID     int64        `json:"listing_id,omitempty"`
	PayerID       string       `json:"payer_id"`
	PayeeID       string       `json:"payee_id"`
	Gross         int64        `json:"gross"`
	Fee           int64        `json:"fee"`
	Payout        int64        `json:"payout"`
	FeeBps        int64        `json:"fee_bps"`
	SettlementRef string       `json:"settlement_ref"`
	Currency      string       `json:"currency"`
	CreatedAt     time.Time    `json:"created_at"`
}

// SplitFee computes the platform cut and seller payout for a gross amount.
// The fee truncates toward zero so the payout absorbs the remainder and the
// two always sum back to gross exactly.
func SplitFee(gross, feeBps int64) (fee, payout int64, err error) {
	if gross <= 0 {
		return 0, 0, fmt.Errorf("%w: gross must be positive", ErrInvalidAmount)
	}
	if feeBps < 0 || feeBps > 10000 {
		return 0, 0, fmt.Errorf("%w: fee basis points out of range", ErrInvalidAmount)
	}
	fee = gross * feeBps / 10000
	payout = gross - fee
	return fee, payout, nil
}

// NewFeeEntry builds a ledger entry for a settled sale, computing the split
func NewFeeEntry(kind FeeEntryKind, eventID, ticketID, listingID int64, payerID, payeeID string, gross, feeBps int64, settlementRef, currency string, now time.Time) (*FeeEntry, error) {
	fee, payout, err := SplitFee(gross, feeBps)
	if err != nil {
		return nil, err
	}
	return &FeeEntry{
		Kind:          kind,
		EventID:       eventID,
		TicketID:      ticketID,
		ListingID:     listingID,
		PayerID:       payerID,
		PayeeID:       payeeID,
		Gross:         gross,
		Fee:           fee,
		Payout:        payout,
		FeeBps:        feeBps,
		SettlementRef: settlementRef,
		Currency:      currency,
		CreatedAt:     now,
	}, nil
}

// NewPayoutEntry builds a debit entry for a settled withdrawal. The whole
// gross leaves the account, so the platform takes no cut.
func NewPayoutEntry(accountID string, amount int64, settlementRef, currency string, now time.Time) (*FeeEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payout must be positive", ErrInvalidAmount)
	}
	return &FeeEntry{
		Kind:          FeeKindPayout,
		PayerID:       accountID,
		Gross:         amount,
		Fee:           0,
		Payout:        amount,
		SettlementRef: settlementRef,
		Currency:      currency,
		CreatedAt:     now,
	}, nil
}

// PayableTo returns the entry's contribution to an account's withdrawable
// balance: sale payouts credit the payee, payout entries debit the payer.
func (f *FeeEntry) PayableTo(accountID string) int64 {
	if f.Kind == FeeKindPayout {
		if f.PayerID == accountID {
			return -f.Gross
		}
		return 0
	}
	if f.PayeeID == accountID {
		return f.Payout
	}
	return 0
}

// Check verifies the conservation invariant on a stored entry
func (f *FeeEntry) Check() error {
	if f.Fee+f.Payout != f.Gross {
		return fmt.Errorf("%w: fee entry %d split %d+%d does not sum to gross %d", ErrIntegrity, f.ID, f.Fee, f.Payout, f.Gross)
	}
	if f.Fee < 0 || f.Payout < 0 {
		return fmt.Errorf("%w: fee entry %d has a negative component", ErrIntegrity, f.ID)
	}
	return nil
}
