package domain

import "errors"

// Ledger error taxonomy. Every operation fails with exactly one of these;
// nothing is retried or swallowed internally.
var (
	// Lookup errors
	ErrEventNotFound   = errors.New("event not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrTierNotFound    = errors.New("tier not found")
	ErrOutboxNotFound  = errors.New("outbox message not found")

	// Event errors
	ErrNotPurchasable  = errors.New("event is not in a purchasable state")
	ErrInvalidSchedule = errors.New("invalid event schedule")
	ErrInvalidTiers    = errors.New("invalid tier configuration")
	ErrInvalidStatus   = errors.New("invalid status transition")

	// ErrConcurrentUpdate reports an optimistic-lock conflict: the entity
	// was modified after the writer loaded it.
	ErrConcurrentUpdate = errors.New("entity was modified concurrently")

	// Purchase errors
	ErrInvalidAmount = errors.New("payment amount does not match price")
	ErrSoldOut       = errors.New("tier is sold out")
	ErrPaymentFailed = errors.New("payment settlement failed")

	// Ticket errors
	ErrNotOwner        = errors.New("caller does not own the ticket")
	ErrTransferLocked  = errors.New("ticket transfer lock has not expired")
	ErrNotTransferable = errors.New("ticket is not transferable")
	ErrTicketUsed      = errors.New("ticket has already been used")

	// Marketplace errors
	ErrNotSeller        = errors.New("caller is not the listing seller")
	ErrAlreadyListed    = errors.New("ticket already has an active listing")
	ErrListingNotActive = errors.New("listing is not active")
	ErrStaleListing     = errors.New("listing seller no longer owns the ticket")

	// Fee ledger errors
	ErrFeeEntryNotFound    = errors.New("fee entry not found")
	ErrInsufficientBalance = errors.New("insufficient payable balance")

	// ErrIntegrity marks an internal consistency fault (for example a sold
	// counter exceeding capacity). It is never a business-rule failure and
	// must abort the surrounding operation.
	ErrIntegrity = errors.New("ledger integrity violation")
)
