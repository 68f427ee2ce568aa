package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/pkg/logger"
)

// TicketService defines ticket ownership and redemption logic
type TicketService interface {
	// GetTicket retrieves a ticket by ID
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)

	// ListByOwner retrieves the caller's tickets
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Ticket, error)

	// ListByEvent retrieves all tickets minted for an event
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ticket, error)

	// Transfer moves a ticket to another account without payment
	Transfer(ctx context.Context, callerID string, ticketID int64, toAccountID string) (*domain.Ticket, error)

	// Redeem consumes a ticket at the gate. Organizer only.
	Redeem(ctx context.Context, callerID string, ticketID int64) (*domain.Ticket, error)
}

type ticketService struct {
	events  repository.EventRepository
	tickets repository.TicketRepository
	outbox  repository.OutboxRepository
	locks   *KeyedMutex
	policy  Policy
	now     func() time.Time
}

// NewTicketService creates a new ticket service
func NewTicketService(events repository.EventRepository, tickets repository.TicketRepository, outbox repository.OutboxRepository, locks *KeyedMutex, policy Policy) TicketService {
	return &ticketService{
		events:  events,
		tickets: tickets,
		outbox:  outbox,
		locks:   locks,
		policy:  policy,
		now:     time.Now,
	}
}

// GetTicket retrieves a ticket by ID
func (s *ticketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ListByOwner retrieves the caller's tickets
func (s *ticketService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Ticket, error) {
	return s.tickets.ListByOwner(ctx, ownerID)
}

// ListByEvent retrieves all tickets minted for an event
func (s *ticketService) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ticket, error) {
	return s.tickets.ListByEvent(ctx, eventID)
}

// Transfer moves a ticket to another account without payment. The transfer
// lock restarts for the recipient.
func (s *ticketService) Transfer(ctx context.Context, callerID string, ticketID int64, toAccountID string) (*domain.Ticket, error) {
	unlock := s.locks.Lock(ticketID)
	defer unlock()

	now := s.now()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != callerID {
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

	from := ticket.OwnerID
	ticket.TransferTo(toAccountID, now)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	logger.Get().Info("ticket transferred",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("from", from),
		zap.String("to", toAccountID))

	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(ticket.EventID), domain.EventTypeTicketTransfer, map[string]any{
		"ticket_id": ticket.ID,
		"from":      from,
		"to":        toAccountID,
	}, now)

	return ticket, nil
}

// Redeem consumes a ticket at the gate. Only the event organizer may redeem.
func (s *ticketService) Redeem(ctx context.Context, callerID string, ticketID int64) (*domain.Ticket, error) {
	unlock := s.locks.Lock(ticketID)
	defer unlock()

	now := s.now()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrNotOwner
	}
	event.SyncClock(now)
	if event.Status == domain.EventStatusCancelled || event.Status == domain.EventStatusCompleted {
		return nil, fmt.Errorf("%w: event is %s", domain.ErrInvalidStatus, event.Status)
	}

	if err := ticket.Redeem(now); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	logger.Get().Info("ticket redeemed",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("event_id", ticket.EventID))

	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(ticket.EventID), domain.EventTypeTicketRedeemed, map[string]any{
		"ticket_id": ticket.ID,
		"event_id":  ticket.EventID,
	}, now)

	return ticket, nil
}
