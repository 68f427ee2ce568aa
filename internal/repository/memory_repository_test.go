package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
)

func testEvent(t *testing.T) *domain.Event {
	t.Helper()
	now := time.Now()
	ev, err := domain.NewEvent(domain.EventParams{
		OrganizerID: "org-1",
		Category:    domain.CategoryConcert,
		StartTime:   now.Add(2 * time.Hour),
		EndTime:     now.Add(5 * time.Hour),
		Tiers: []domain.Tier{
			{Name: "general", Capacity: 100, Price: 5000},
		},
	}, now, time.Hour, 30*time.Minute)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return ev
}

func TestMemoryEventRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()

	ev := testEvent(t)
	if err := repo.Create(ctx, ev); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ev.ID != 1 {
		t.Errorf("expected assigned ID 1, got %d", ev.ID)
	}

	second := testEvent(t)
	_ = repo.Create(ctx, second)
	if second.ID != 2 {
		t.Errorf("expected monotonic ID 2, got %d", second.ID)
	}

	got, err := repo.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	// mutating the returned copy must not leak into the store
	got.Tiers[0].Sold = 99
	again, _ := repo.GetByID(ctx, ev.ID)
	if again.Tiers[0].Sold != 0 {
		t.Error("repository must return independent copies")
	}

	got.Tiers[0].Sold = 5
	got.Sold = 5
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := repo.GetByID(ctx, ev.ID)
	if updated.Sold != 5 {
		t.Errorf("expected sold 5, got %d", updated.Sold)
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestMemoryEventRepository_VersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	ev := testEvent(t)
	_ = repo.Create(ctx, ev)

	first, _ := repo.GetByID(ctx, ev.ID)
	second, _ := repo.GetByID(ctx, ev.ID)

	first.Sold = 1
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// the writer's copy is bumped so it can keep writing
	first.Sold = 2
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("second Update: %v", err)
	}

	// the copy loaded before the first write is behind and must not win
	second.Sold = 99
	if err := repo.Update(ctx, second); !errors.Is(err, domain.ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
	stored, _ := repo.GetByID(ctx, ev.ID)
	if stored.Sold != 2 {
		t.Errorf("stale write must not clobber the counter, sold %d", stored.Sold)
	}
}

func TestMemoryEventRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()

	first := testEvent(t)
	_ = repo.Create(ctx, first)
	second := testEvent(t)
	second.OrganizerID = "org-2"
	second.Category = domain.CategorySports
	_ = repo.Create(ctx, second)

	all, total, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected 2 events, got %d (total %d)", len(all), total)
	}
	if all[0].ID != 2 {
		t.Error("expected newest-first ordering")
	}

	byOrg, _, _ := repo.List(ctx, ListFilter{OrganizerID: "org-2"})
	if len(byOrg) != 1 || byOrg[0].ID != second.ID {
		t.Errorf("organizer filter failed: %+v", byOrg)
	}

	byCat, _, _ := repo.List(ctx, ListFilter{Category: domain.CategoryConcert})
	if len(byCat) != 1 || byCat[0].ID != first.ID {
		t.Errorf("category filter failed: %+v", byCat)
	}

	paged, total, _ := repo.List(ctx, ListFilter{Limit: 1, Offset: 1})
	if total != 2 || len(paged) != 1 || paged[0].ID != 1 {
		t.Errorf("pagination failed: %+v (total %d)", paged, total)
	}
}

func TestMemoryTicketRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()
	now := time.Now()

	tk := domain.NewTicket(1, "general", "acct-1", 5000, now)
	if err := repo.Create(ctx, tk); err != nil {
		t.Fatalf("Create: %v", err)
	}
	other := domain.NewTicket(2, "general", "acct-2", 5000, now)
	_ = repo.Create(ctx, other)

	got, err := repo.GetByID(ctx, tk.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got.TransferTo("acct-2", now)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	owned, _ := repo.ListByOwner(ctx, "acct-2")
	if len(owned) != 2 {
		t.Errorf("expected 2 tickets for acct-2, got %d", len(owned))
	}
	byEvent, _ := repo.ListByEvent(ctx, 1)
	if len(byEvent) != 1 || byEvent[0].ID != tk.ID {
		t.Errorf("event listing failed: %+v", byEvent)
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, other.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, other.ID); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Fatalf("deleted ticket must not resolve, got %v", err)
	}
	if err := repo.Delete(ctx, other.ID); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Fatalf("double delete: expected ErrTicketNotFound, got %v", err)
	}
}

func TestMemoryListingRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryListingRepository()
	now := time.Now()

	cheap, _ := domain.NewListing(1, 10, "acct-1", 8000, now)
	_ = repo.Create(ctx, cheap)
	dear, _ := domain.NewListing(2, 10, "acct-2", 12000, now)
	_ = repo.Create(ctx, dear)

	byTicket, err := repo.GetActiveByTicket(ctx, 1)
	if err != nil {
		t.Fatalf("GetActiveByTicket: %v", err)
	}
	if byTicket.ID != cheap.ID {
		t.Errorf("expected listing %d, got %d", cheap.ID, byTicket.ID)
	}

	active, _ := repo.ListActiveByEvent(ctx, 10)
	if len(active) != 2 || active[0].Price != 8000 {
		t.Errorf("expected cheapest-first ordering: %+v", active)
	}

	got, _ := repo.GetByID(ctx, cheap.ID)
	_ = got.Cancel(now)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := repo.GetActiveByTicket(ctx, 1); !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("cancelled listing must not resolve as active, got %v", err)
	}

	bySeller, _ := repo.ListBySeller(ctx, "acct-1")
	if len(bySeller) != 1 {
		t.Errorf("expected 1 listing for acct-1, got %d", len(bySeller))
	}
}

func TestMemoryFeeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFeeRepository()
	now := time.Now()

	first, _ := domain.NewFeeEntry(domain.FeeKindPrimary, 1, 1, 0, "buyer-1", "org-1", 10000, 500, "ref-1", "USD", now)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, _ := domain.NewFeeEntry(domain.FeeKindResale, 1, 1, 1, "buyer-2", "buyer-1", 15000, 500, "ref-2", "USD", now)
	_ = repo.Create(ctx, second)

	broken, _ := domain.NewFeeEntry(domain.FeeKindPrimary, 1, 2, 0, "buyer-3", "org-1", 10000, 500, "ref-3", "USD", now)
	broken.Payout++
	if err := repo.Create(ctx, broken); !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity for broken split, got %v", err)
	}

	byEvent, _ := repo.ListByEvent(ctx, 1)
	if len(byEvent) != 2 {
		t.Errorf("expected 2 entries, got %d", len(byEvent))
	}

	byAccount, _ := repo.ListByAccount(ctx, "buyer-1")
	if len(byAccount) != 2 {
		t.Errorf("buyer-1 pays once and is paid once, got %d entries", len(byAccount))
	}

	total, _ := repo.TotalFees(ctx)
	if total != 500+750 {
		t.Errorf("expected total fees 1250, got %d", total)
	}
}

func TestMemoryOutboxRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOutboxRepository()
	now := time.Now()

	older, err := domain.NewOutboxMessage("ledger.events", "1", domain.EventTypeTicketPurchased, map[string]int64{"ticket_id": 1}, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("NewOutboxMessage: %v", err)
	}
	_ = repo.Create(ctx, older)
	newer, _ := domain.NewOutboxMessage("ledger.events", "2", domain.EventTypeTicketResold, map[string]int64{"ticket_id": 2}, now)
	_ = repo.Create(ctx, newer)

	pending, err := repo.FetchPending(ctx, 10)
	if err != nil {
		t.Fatalf("FetchPending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != older.ID {
		t.Errorf("expected oldest-first pending fetch: %+v", pending)
	}

	if err := repo.MarkPublished(ctx, older.ID, now); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}
	if err := repo.MarkFailed(ctx, newer.ID, "broker unreachable"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	pending, _ = repo.FetchPending(ctx, 10)
	if len(pending) != 1 || pending[0].ID != newer.ID {
		t.Errorf("published message must drop out of pending: %+v", pending)
	}
	if pending[0].Attempts != 1 || pending[0].LastError == "" {
		t.Errorf("failure must be recorded: %+v", pending[0])
	}

	if err := repo.MarkPublished(ctx, "missing", now); !errors.Is(err, domain.ErrOutboxNotFound) {
		t.Fatalf("expected ErrOutboxNotFound, got %v", err)
	}
}
