package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/internal/settlement"
)

// testClock is a controllable time source shared by a test stack
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stack wires every service against in-memory repositories and the mock
// settlement adapter
type stack struct {
	clock    *testClock
	events   *repository.MemoryEventRepository
	tickets  *repository.MemoryTicketRepository
	listings *repository.MemoryListingRepository
	fees     *repository.MemoryFeeRepository
	outbox   *repository.MemoryOutboxRepository
	adapter  *settlement.MockAdapter
	policy   Policy

	eventSvc  EventService
	purchase  PurchaseService
	market    MarketplaceService
	ticketSvc TicketService
	payout    PayoutService
}

func newStack(t *testing.T) *stack {
	t.Helper()

	s := &stack{
		clock:    newTestClock(),
		events:   repository.NewMemoryEventRepository(),
		tickets:  repository.NewMemoryTicketRepository(),
		listings: repository.NewMemoryListingRepository(),
		fees:     repository.NewMemoryFeeRepository(),
		outbox:   repository.NewMemoryOutboxRepository(),
		adapter:  settlement.NewMockAdapter(&settlement.MockConfig{SuccessRate: 1.0}),
		policy:   DefaultPolicy(),
	}

	locks := NewKeyedMutex()
	s.eventSvc = NewEventService(s.events, s.outbox, locks, s.policy)
	s.purchase = NewPurchaseService(s.events, s.tickets, s.fees, s.outbox, s.adapter, locks, s.policy, nil)
	s.market = NewMarketplaceService(s.events, s.tickets, s.listings, s.fees, s.outbox, s.adapter, locks, s.policy, nil)
	s.ticketSvc = NewTicketService(s.events, s.tickets, s.outbox, locks, s.policy)
	s.payout = NewPayoutService(s.events, s.fees, s.outbox, s.adapter, s.policy)

	now := s.clock.Now
	s.eventSvc.(*eventService).now = now
	s.purchase.(*purchaseService).now = now
	s.market.(*marketplaceService).now = now
	s.ticketSvc.(*ticketService).now = now
	s.payout.(*payoutService).now = now

	return s
}

// failingFeeRepo rejects every Create so rollback paths past settlement
// can be exercised
type failingFeeRepo struct {
	repository.FeeRepository
}

func (f *failingFeeRepo) Create(context.Context, *domain.FeeEntry) error {
	return errors.New("ledger unavailable")
}

func defaultTiers() []domain.Tier {
	return []domain.Tier{
		{Name: "general", Capacity: 100, Price: 5000},
		{Name: "vip", Capacity: 5, Price: 20000},
	}
}

// createEvent registers an event starting 2h from the stack clock
func (s *stack) createEvent(t *testing.T, organizerID string, tiers []domain.Tier) *domain.Event {
	t.Helper()
	now := s.clock.Now()
	event, err := s.eventSvc.CreateEvent(t.Context(), organizerID, CreateEventParams{
		MetadataRef: "ipfs://meta",
		Category:    domain.CategoryConcert,
		StartTime:   now.Add(2 * time.Hour),
		EndTime:     now.Add(6 * time.Hour),
		Tiers:       tiers,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return event
}

// buyTicket runs a purchase and fails the test on error
func (s *stack) buyTicket(t *testing.T, buyerID string, eventID int64, tier string, amount int64) *domain.Ticket {
	t.Helper()
	result, err := s.purchase.Purchase(t.Context(), buyerID, PurchaseParams{
		EventID:  eventID,
		TierName: tier,
		Amount:   amount,
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	return result.Ticket
}
