package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/metrics"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/internal/settlement"
	"github.com/Amity808/entrytagv1/pkg/logger"
	"github.com/Amity808/entrytagv1/pkg/saga"
)

// MarketplaceService defines the resale flows: listing a held ticket,
// repricing or withdrawing the listing, and buying it out
type MarketplaceService interface {
	// ListTicket puts a held ticket up for resale
	ListTicket(ctx context.Context, sellerID string, ticketID int64, price int64) (*domain.Listing, error)

	// UpdatePrice changes the asking price of the caller's listing
	UpdatePrice(ctx context.Context, sellerID string, listingID int64, price int64) (*domain.Listing, error)

	// CancelListing withdraws the caller's listing and releases the ticket
	CancelListing(ctx context.Context, sellerID string, listingID int64) (*domain.Listing, error)

	// Buy settles a resale: payment in from the buyer, payout to the
	// seller minus the platform fee, ownership moved
	Buy(ctx context.Context, buyerID string, listingID int64, amount int64) (*ResaleResult, error)

	// GetListing retrieves a listing by ID
	GetListing(ctx context.Context, id int64) (*domain.Listing, error)

	// ListByEvent retrieves active listings for an event, cheapest first
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.Listing, error)

	// ListBySeller retrieves all of a seller's listings
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Listing, error)
}

// ResaleResult is the outcome of a settled resale
type ResaleResult struct {
	Listing  *domain.Listing
	Ticket   *domain.Ticket
	FeeEntry *domain.FeeEntry
}

type marketplaceService struct {
	events   repository.EventRepository
	tickets  repository.TicketRepository
	listings repository.ListingRepository
	fees     repository.FeeRepository
	outbox   repository.OutboxRepository
	settle   settlement.Adapter
	locks    *KeyedMutex
	policy   Policy
	recorder *metrics.Metrics
	now      func() time.Time
}

// NewMarketplaceService creates a new marketplace service
func NewMarketplaceService(
	events repository.EventRepository,
	tickets repository.TicketRepository,
	listings repository.ListingRepository,
	fees repository.FeeRepository,
	outbox repository.OutboxRepository,
	settle settlement.Adapter,
	locks *KeyedMutex,
	policy Policy,
	recorder *metrics.Metrics,
) MarketplaceService {
	return &marketplaceService{
		events:   events,
		tickets:  tickets,
		listings: listings,
		fees:     fees,
		outbox:   outbox,
		settle:   settle,
		locks:    locks,
		policy:   policy,
		recorder: recorder,
		now:      time.Now,
	}
}

// ListTicket puts a held ticket up for resale
func (s *marketplaceService) ListTicket(ctx context.Context, sellerID string, ticketID int64, price int64) (*domain.Listing, error) {
	unlock := s.locks.Lock(ticketID)
	defer unlock()

	now := s.now()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != sellerID {
		return nil, domain.ErrNotOwner
	}

	event, err := s.events.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	event.SyncClock(now)

	if err := ticket.CanTransfer(event, now, s.policy.TransferLock); err != nil {
		return nil, err
	}

	listing, err := domain.NewListing(ticket.ID, ticket.EventID, sellerID, price, now)
	if err != nil {
		return nil, err
	}

	if err := ticket.MarkListed(now); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		// release the escrow if the listing could not be stored
		_ = ticket.Unlist(now)
		_ = s.tickets.Update(ctx, ticket)
		return nil, err
	}

	logger.Get().Info("ticket listed",
		zap.Int64("listing_id", listing.ID),
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("price", price))

	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(listing.EventID), domain.EventTypeListingCreated, listing, now)
	return listing, nil
}

// UpdatePrice changes the asking price of the caller's listing
func (s *marketplaceService) UpdatePrice(ctx context.Context, sellerID string, listingID int64, price int64) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(listing.TicketID)
	defer unlock()

	// reload under the lock; the listing may have sold meanwhile
	listing, err = s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, domain.ErrNotSeller
	}

	now := s.now()
	if err := listing.UpdatePrice(price, now); err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}

	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(listing.EventID), domain.EventTypeListingPriced, listing, now)
	return listing, nil
}

// CancelListing withdraws the caller's listing and releases the ticket
func (s *marketplaceService) CancelListing(ctx context.Context, sellerID string, listingID int64) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(listing.TicketID)
	defer unlock()

	listing, err = s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, domain.ErrNotSeller
	}

	now := s.now()
	if err := listing.Cancel(now); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, listing.TicketID)
	if err != nil {
		return nil, err
	}
	if err := ticket.Unlist(now); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}

	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(listing.EventID), domain.EventTypeListingDropped, listing, now)
	return listing, nil
}

// Buy settles a resale under the ticket lock
func (s *marketplaceService) Buy(ctx context.Context, buyerID string, listingID int64, amount int64) (*ResaleResult, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(listing.TicketID)
	defer unlock()

	listing, err = s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.ListingStatusActive {
		return nil, domain.ErrListingNotActive
	}
	if amount != listing.Price {
		return nil, fmt.Errorf("%w: offered %d, asking price is %d", domain.ErrInvalidAmount, amount, listing.Price)
	}

	now := s.now()

	ticket, err := s.tickets.GetByID(ctx, listing.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != listing.SellerID {
		// ownership diverged from the listing; withdraw it
		_ = listing.Cancel(now)
		_ = s.listings.Update(ctx, listing)
		return nil, domain.ErrStaleListing
	}

	event, err := s.events.GetByID(ctx, listing.EventID)
	if err != nil {
		return nil, err
	}
	event.SyncClock(now)
	if event.Status == domain.EventStatusCancelled || event.Status == domain.EventStatusCompleted {
		return nil, fmt.Errorf("%w: event is %s", domain.ErrNotTransferable, event.Status)
	}
	if !now.Before(event.EndTime) {
		return nil, fmt.Errorf("%w: event has ended", domain.ErrNotTransferable)
	}

	fee, payout, err := domain.SplitFee(listing.Price, s.policy.PlatformFeeBps)
	if err != nil {
		return nil, err
	}

	reference := uuid.New().String()
	var (
		receipt     *settlement.Receipt
		feeEntry    *domain.FeeEntry
		prevTicket  *domain.Ticket
		prevListing *domain.Listing
	)
	sellerID := listing.SellerID

	def := saga.NewDefinition("resale_purchase").
		AddStep(&saga.Step{
			Name: "collect_payment",
			Execute: func(ctx context.Context) error {
				start := s.now()
				receipt, err = s.settle.TransferIn(ctx, &settlement.TransferRequest{
					Reference:   reference,
					AccountID:   buyerID,
					Amount:      listing.Price,
					Currency:    s.policy.Currency,
					Description: fmt.Sprintf("resale purchase listing %d", listing.ID),
					Metadata:    map[string]string{"listing_id": eventKey(listing.ID)},
				})
				s.recorder.RecordSettlementLatency(ctx, s.now().Sub(start).Seconds(), s.settle.Name())
				if err != nil {
					return err
				}
				if !receipt.Settled {
					return fmt.Errorf("%w: %s", domain.ErrPaymentFailed, receipt.FailureReason)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				_, refundErr := s.settle.TransferOut(ctx, &settlement.TransferRequest{
					Reference:   reference + ":refund",
					AccountID:   buyerID,
					Amount:      listing.Price,
					Currency:    s.policy.Currency,
					Description: "resale rollback refund",
				})
				return refundErr
			},
		}).
		AddStep(&saga.Step{
			Name: "pay_seller",
			Execute: func(ctx context.Context) error {
				out, payErr := s.settle.TransferOut(ctx, &settlement.TransferRequest{
					Reference:   reference + ":payout",
					AccountID:   sellerID,
					Amount:      payout,
					Currency:    s.policy.Currency,
					Description: fmt.Sprintf("resale payout listing %d", listing.ID),
				})
				if payErr != nil {
					return payErr
				}
				if !out.Settled {
					return fmt.Errorf("%w: payout declined: %s", domain.ErrPaymentFailed, out.FailureReason)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				_, clawErr := s.settle.TransferIn(ctx, &settlement.TransferRequest{
					Reference:   reference + ":clawback",
					AccountID:   sellerID,
					Amount:      payout,
					Currency:    s.policy.Currency,
					Description: "resale rollback clawback",
				})
				return clawErr
			},
		}).
		AddStep(&saga.Step{
			Name: "transfer_ownership",
			Execute: func(ctx context.Context) error {
				prevTicket = ticket.Clone()
				prevListing = listing.Clone()
				if err := listing.MarkSold(buyerID, now); err != nil {
					return err
				}
				ticket.TransferTo(buyerID, now)
				if err := s.tickets.Update(ctx, ticket); err != nil {
					return err
				}
				if err := s.listings.Update(ctx, listing); err != nil {
					// the ticket write landed without the listing; pull it back
					if revertErr := s.tickets.Update(ctx, prevTicket); revertErr != nil {
						logger.Get().Error("ticket revert failed",
							zap.Int64("ticket_id", ticket.ID),
							zap.Error(revertErr))
					}
					return err
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				if err := s.tickets.Update(ctx, prevTicket); err != nil {
					return err
				}
				return s.listings.Update(ctx, prevListing)
			},
		}).
		AddStep(&saga.Step{
			Name: "record_fee",
			Execute: func(ctx context.Context) error {
				feeEntry, err = domain.NewFeeEntry(
					domain.FeeKindResale, listing.EventID, ticket.ID, listing.ID,
					buyerID, sellerID,
					listing.Price, s.policy.PlatformFeeBps,
					receipt.TransactionID, s.policy.Currency, now,
				)
				if err != nil {
					return err
				}
				return s.fees.Create(ctx, feeEntry)
			},
		})

	if err := saga.Run(ctx, def); err != nil {
		var compErr *saga.CompensationError
		if errors.As(err, &compErr) {
			logger.Get().Error("resale rollback failed",
				zap.Int64("listing_id", listingID),
				zap.String("step", compErr.Step),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", domain.ErrIntegrity, err)
		}
		return nil, err
	}

	logger.Get().Info("resale settled",
		zap.Int64("listing_id", listing.ID),
		zap.Int64("ticket_id", ticket.ID),
		zap.String("seller_id", sellerID),
		zap.String("buyer_id", buyerID),
		zap.Int64("gross", listing.Price),
		zap.Int64("fee", fee))

	s.recorder.RecordResale(ctx, fee)
	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(listing.EventID), domain.EventTypeTicketResold, map[string]any{
		"listing_id": listing.ID,
		"ticket_id":  ticket.ID,
		"seller_id":  sellerID,
		"buyer_id":   buyerID,
		"gross":      listing.Price,
		"fee":        fee,
		"payout":     payout,
	}, now)

	return &ResaleResult{Listing: listing, Ticket: ticket, FeeEntry: feeEntry}, nil
}

// GetListing retrieves a listing by ID
func (s *marketplaceService) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// ListByEvent retrieves active listings for an event
func (s *marketplaceService) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Listing, error) {
	return s.listings.ListActiveByEvent(ctx, eventID)
}

// ListBySeller retrieves all of a seller's listings
func (s *marketplaceService) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Listing, error) {
	return s.listings.ListBySeller(ctx, sellerID)
}
