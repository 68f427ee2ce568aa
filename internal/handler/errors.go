package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/pkg/response"
)

// writeDomainError maps ledger errors onto HTTP statuses with stable codes
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		response.NotFound(c, "Event not found")
	case errors.Is(err, domain.ErrTicketNotFound):
		response.NotFound(c, "Ticket not found")
	case errors.Is(err, domain.ErrListingNotFound):
		response.NotFound(c, "Listing not found")
	case errors.Is(err, domain.ErrTierNotFound):
		response.NotFound(c, "Tier not found")
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrNotSeller):
		response.Forbidden(c, "Caller does not own this resource")
	case errors.Is(err, domain.ErrInvalidSchedule),
		errors.Is(err, domain.ErrInvalidTiers),
		errors.Is(err, domain.ErrInvalidAmount):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrSoldOut):
		response.Conflict(c, "SOLD_OUT", "Tier is sold out")
	case errors.Is(err, domain.ErrNotPurchasable):
		response.Conflict(c, "NOT_PURCHASABLE", "Event is not open for purchase")
	case errors.Is(err, domain.ErrTransferLocked):
		response.Conflict(c, "TRANSFER_LOCKED", "Ticket is inside its transfer lock window")
	case errors.Is(err, domain.ErrNotTransferable):
		response.Conflict(c, "NOT_TRANSFERABLE", "Ticket can no longer change hands")
	case errors.Is(err, domain.ErrTicketUsed):
		response.Conflict(c, "TICKET_USED", "Ticket has been redeemed")
	case errors.Is(err, domain.ErrAlreadyListed):
		response.Conflict(c, "ALREADY_LISTED", "Ticket already has an active listing")
	case errors.Is(err, domain.ErrListingNotActive):
		response.Conflict(c, "LISTING_NOT_ACTIVE", "Listing is no longer active")
	case errors.Is(err, domain.ErrStaleListing):
		response.Conflict(c, "STALE_LISTING", "Listing no longer matches ticket ownership")
	case errors.Is(err, domain.ErrInvalidStatus):
		response.Conflict(c, "INVALID_STATUS", err.Error())
	case errors.Is(err, domain.ErrConcurrentUpdate):
		response.Conflict(c, "CONCURRENT_UPDATE", "Resource was modified concurrently, retry")
	case errors.Is(err, domain.ErrPaymentFailed):
		response.Error(c, http.StatusPaymentRequired, "PAYMENT_FAILED", "Settlement was declined", "")
	case errors.Is(err, domain.ErrInsufficientBalance):
		response.Error(c, http.StatusPaymentRequired, "INSUFFICIENT_BALANCE", "Amount exceeds the payable balance", "")
	default:
		response.InternalError(c, err)
	}
}
