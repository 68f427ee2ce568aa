package domain

import (
	"fmt"
	"time"
)

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusValid  TicketStatus = "valid"
	TicketStatusListed TicketStatus = "listed"
	TicketStatusUsed   TicketStatus = "used"
)

// IsValid checks if the status is a valid TicketStatus
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusValid, TicketStatusListed, TicketStatusUsed:
		return true
	}
	return false
}

// String returns the string representation of TicketStatus
func (s TicketStatus) String() string {
	return string(s)
}

// Ticket is a single admission right minted by a primary purchase
type Ticket struct {
	ID            int64        `json:"id"`
	EventID       int64        `json:"event_id"`
	TierName      string       `json:"tier_name"`
	OwnerID       string       `json:"owner_id"`
	Status        TicketStatus `json:"status"`
	PurchasePrice int64        `json:"purchase_price"`
	AcquiredAt    time.Time    `json:"acquired_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewTicket mints a ticket for a completed primary purchase
func NewTicket(eventID int64, tierName, ownerID string, price int64, now time.Time) *Ticket {
	return &Ticket{
		EventID:       eventID,
		TierName:      tierName,
		OwnerID:       ownerID,
		Status:        TicketStatusValid,
		PurchasePrice: price,
		AcquiredAt:    now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// TransferLockedUntil returns the instant the resale/transfer lock expires
func (t *Ticket) TransferLockedUntil(lock time.Duration) time.Time {
	return t.AcquiredAt.Add(lock)
}

// IsTransferLocked reports whether the ticket is still inside its lock window
func (t *Ticket) IsTransferLocked(now time.Time, lock time.Duration) bool {
	return now.Before(t.TransferLockedUntil(lock))
}

// CanTransfer checks every condition for a direct transfer or listing.
// The event decides time-based eligibility; used tickets never move.
func (t *Ticket) CanTransfer(event *Event, now time.Time, lock time.Duration) error {
	if t.Status == TicketStatusUsed {
		return ErrTicketUsed
	}
	if t.Status == TicketStatusListed {
		return ErrAlreadyListed
	}
	if event.Status == EventStatusCancelled || event.Status == EventStatusCompleted {
		return fmt.Errorf("%w: event is %s", ErrNotTransferable, event.Status)
	}
	if !now.Before(event.EndTime) {
		return fmt.Errorf("%w: event has ended", ErrNotTransferable)
	}
	if t.IsTransferLocked(now, lock) {
		return fmt.Errorf("%w: locked until %s", ErrTransferLocked, t.TransferLockedUntil(lock).Format(time.RFC3339))
	}
	return nil
}

// TransferTo moves ownership and restarts the lock window. The caller must
// have verified eligibility with CanTransfer.
func (t *Ticket) TransferTo(newOwner string, now time.Time) {
	t.OwnerID = newOwner
	t.AcquiredAt = now
	t.Status = TicketStatusValid
	t.UpdatedAt = now
}

// MarkListed flags the ticket as escrowed by an active listing
func (t *Ticket) MarkListed(now time.Time) error {
	if t.Status != TicketStatusValid {
		return fmt.Errorf("%w: cannot list from %s", ErrInvalidStatus, t.Status)
	}
	t.Status = TicketStatusListed
	t.UpdatedAt = now
	return nil
}

// Unlist returns a listed ticket to the valid state
func (t *Ticket) Unlist(now time.Time) error {
	if t.Status != TicketStatusListed {
		return fmt.Errorf("%w: cannot unlist from %s", ErrInvalidStatus, t.Status)
	}
	t.Status = TicketStatusValid
	t.UpdatedAt = now
	return nil
}

// Redeem consumes the ticket at the gate. One-way; a used ticket can never
// be transferred or listed again.
func (t *Ticket) Redeem(now time.Time) error {
	if t.Status == TicketStatusUsed {
		return ErrTicketUsed
	}
	if t.Status == TicketStatusListed {
		return fmt.Errorf("%w: ticket is escrowed by a listing", ErrInvalidStatus)
	}
	t.Status = TicketStatusUsed
	t.UpdatedAt = now
	return nil
}

// Clone returns a copy of the ticket
func (t *Ticket) Clone() *Ticket {
	cp := *t
	return &cp
}
