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

// PurchaseParams describes a primary purchase request
type PurchaseParams struct {
	EventID  int64
	TierName string

	// Amount is the payment offered by the buyer. It must match the tier
	// price exactly; there is no implicit refund of overpayment.
	Amount int64
}

// PurchaseResult is the outcome of a settled purchase
type PurchaseResult struct {
	Ticket   *domain.Ticket
	FeeEntry *domain.FeeEntry
}

// PurchaseService runs the primary sale flow: reserve a tier slot, settle
// payment, mint the ticket and record the fee split. Any failure after the
// reservation releases it.
type PurchaseService interface {
	Purchase(ctx context.Context, buyerID string, params PurchaseParams) (*PurchaseResult, error)
}

type purchaseService struct {
	events   repository.EventRepository
	tickets  repository.TicketRepository
	fees     repository.FeeRepository
	outbox   repository.OutboxRepository
	settle   settlement.Adapter
	locks    *KeyedMutex
	policy   Policy
	recorder *metrics.Metrics
	now      func() time.Time
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	events repository.EventRepository,
	tickets repository.TicketRepository,
	fees repository.FeeRepository,
	outbox repository.OutboxRepository,
	settle settlement.Adapter,
	locks *KeyedMutex,
	policy Policy,
	recorder *metrics.Metrics,
) PurchaseService {
	return &purchaseService{
		events:   events,
		tickets:  tickets,
		fees:     fees,
		outbox:   outbox,
		settle:   settle,
		locks:    locks,
		policy:   policy,
		recorder: recorder,
		now:      time.Now,
	}
}

// Purchase executes a primary purchase under the event lock
func (s *purchaseService) Purchase(ctx context.Context, buyerID string, params PurchaseParams) (*PurchaseResult, error) {
	unlock := s.locks.Lock(params.EventID)
	defer unlock()

	now := s.now()

	event, err := s.events.GetByID(ctx, params.EventID)
	if err != nil {
		s.recorder.RecordPurchaseError(ctx, "event_not_found")
		return nil, err
	}
	if event.SyncClock(now) {
		if err := s.events.Update(ctx, event); err != nil {
			return nil, err
		}
	}

	// price check before touching inventory
	tier, err := event.Tier(params.TierName)
	if err != nil {
		s.recorder.RecordPurchaseError(ctx, "tier_not_found")
		return nil, err
	}
	if params.Amount != tier.Price {
		s.recorder.RecordPurchaseError(ctx, "amount_mismatch")
		return nil, fmt.Errorf("%w: offered %d, tier price is %d", domain.ErrInvalidAmount, params.Amount, tier.Price)
	}

	reference := uuid.New().String()
	var (
		price    int64
		receipt  *settlement.Receipt
		ticket   *domain.Ticket
		feeEntry *domain.FeeEntry
	)

	def := saga.NewDefinition("primary_purchase").
		AddStep(&saga.Step{
			Name: "reserve_slot",
			Execute: func(ctx context.Context) error {
				price, err = event.ReserveTier(params.TierName, now)
				if err != nil {
					return err
				}
				return s.events.Update(ctx, event)
			},
			Compensate: func(ctx context.Context) error {
				if err := event.ReleaseTier(params.TierName, s.now()); err != nil {
					return err
				}
				return s.events.Update(ctx, event)
			},
		}).
		AddStep(&saga.Step{
			Name: "settle_payment",
			Execute: func(ctx context.Context) error {
				start := s.now()
				receipt, err = s.settle.TransferIn(ctx, &settlement.TransferRequest{
					Reference:   reference,
					AccountID:   buyerID,
					Amount:      price,
					Currency:    s.policy.Currency,
					Description: fmt.Sprintf("ticket purchase event %d tier %s", event.ID, params.TierName),
					Metadata:    map[string]string{"event_id": eventKey(event.ID)},
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
			// runs only after a settled transfer; a decline fails the
			// Execute and moves no money
			Compensate: func(ctx context.Context) error {
				_, refundErr := s.settle.TransferOut(ctx, &settlement.TransferRequest{
					Reference:   reference + ":refund",
					AccountID:   buyerID,
					Amount:      price,
					Currency:    s.policy.Currency,
					Description: "purchase rollback refund",
				})
				return refundErr
			},
		}).
		AddStep(&saga.Step{
			Name: "mint_ticket",
			Execute: func(ctx context.Context) error {
				ticket = domain.NewTicket(event.ID, params.TierName, buyerID, price, now)
				return s.tickets.Create(ctx, ticket)
			},
			Compensate: func(ctx context.Context) error {
				return s.tickets.Delete(ctx, ticket.ID)
			},
		}).
		AddStep(&saga.Step{
			Name: "record_fee",
			Execute: func(ctx context.Context) error {
				feeEntry, err = domain.NewFeeEntry(
					domain.FeeKindPrimary, event.ID, ticket.ID, 0,
					buyerID, event.OrganizerID,
					price, s.policy.PlatformFeeBps,
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
			// rollback itself failed; the ledger may be inconsistent
			logger.Get().Error("purchase rollback failed",
				zap.Int64("event_id", params.EventID),
				zap.String("step", compErr.Step),
				zap.Error(err))
			s.recorder.RecordPurchaseError(ctx, "rollback_failed")
			return nil, fmt.Errorf("%w: %v", domain.ErrIntegrity, err)
		}
		s.recorder.RecordPurchaseError(ctx, "purchase_failed")
		return nil, err
	}

	logger.Get().Info("purchase settled",
		zap.Int64("event_id", event.ID),
		zap.Int64("ticket_id", ticket.ID),
		zap.String("tier", params.TierName),
		zap.String("buyer_id", buyerID),
		zap.Int64("gross", price))

	s.recorder.RecordPurchase(ctx, params.TierName, feeEntry.Fee)
	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(event.ID), domain.EventTypeTicketPurchased, map[string]any{
		"ticket_id": ticket.ID,
		"event_id":  event.ID,
		"tier":      params.TierName,
		"buyer_id":  buyerID,
		"gross":     price,
		"fee":       feeEntry.Fee,
	}, now)

	return &PurchaseResult{Ticket: ticket, FeeEntry: feeEntry}, nil
}
