package service

import (
	"errors"
	"testing"

	"github.com/Amity808/entrytagv1/internal/domain"
)

func TestAccountStatement(t *testing.T) {
	s := newStack(t)
	_, ticket := sellableTicket(t, s, "alice")

	listing, err := s.market.ListTicket(t.Context(), "alice", ticket.ID, 8000)
	if err != nil {
		t.Fatalf("ListTicket: %v", err)
	}
	if _, err := s.market.Buy(t.Context(), "bob", listing.ID, 8000); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	// alice paid for the primary and collected the resale payout
	entries, err := s.payout.AccountStatement(t.Context(), "alice")
	if err != nil {
		t.Fatalf("AccountStatement: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	kinds := map[domain.FeeEntryKind]bool{}
	for _, e := range entries {
		kinds[e.Kind] = true
	}
	if !kinds[domain.FeeKindPrimary] || !kinds[domain.FeeKindResale] {
		t.Errorf("expected one primary and one resale entry, got %+v", entries)
	}

	entries, err = s.payout.AccountStatement(t.Context(), "nobody")
	if err != nil {
		t.Fatalf("AccountStatement empty: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestEventStatement(t *testing.T) {
	s := newStack(t)
	event := longEvent(t, s, "org-1")
	s.buyTicket(t, "alice", event.ID, "general", 5000)
	s.buyTicket(t, "bob", event.ID, "general", 5000)

	t.Run("organizer only", func(t *testing.T) {
		if _, err := s.payout.EventStatement(t.Context(), "alice", event.ID); !errors.Is(err, domain.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("entries", func(t *testing.T) {
		entries, err := s.payout.EventStatement(t.Context(), "org-1", event.ID)
		if err != nil {
			t.Fatalf("EventStatement: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for _, e := range entries {
			if err := e.Check(); err != nil {
				t.Errorf("entry %d fails conservation: %v", e.ID, err)
			}
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		if _, err := s.payout.EventStatement(t.Context(), "org-1", 999); !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})
}

func TestPlatformFees(t *testing.T) {
	s := newStack(t)
	event := longEvent(t, s, "org-1")
	s.buyTicket(t, "alice", event.ID, "general", 5000)

	_, ticket := sellableTicket(t, s, "bob")
	listing, err := s.market.ListTicket(t.Context(), "bob", ticket.ID, 10000)
	if err != nil {
		t.Fatalf("ListTicket: %v", err)
	}
	if _, err := s.market.Buy(t.Context(), "carol", listing.ID, 10000); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	total, err := s.payout.PlatformFees(t.Context())
	if err != nil {
		t.Fatalf("PlatformFees: %v", err)
	}
	// 5% of the 5000 primary twice plus 5% of the 10000 resale
	want := int64(250 + 250 + 500)
	if total != want {
		t.Errorf("expected %d, got %d", want, total)
	}
}

func TestWithdraw(t *testing.T) {
	s := newStack(t)
	event := longEvent(t, s, "org-1")
	s.buyTicket(t, "alice", event.ID, "general", 5000)
	// org-1 now holds the 4750 primary payout after the 5% fee

	receipt, err := s.payout.Withdraw(t.Context(), "org-1", 4000)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if !receipt.Settled || receipt.TransactionID == "" {
		t.Errorf("expected settled receipt, got %+v", receipt)
	}

	entries, err := s.payout.AccountStatement(t.Context(), "org-1")
	if err != nil {
		t.Fatalf("AccountStatement: %v", err)
	}
	var payout *domain.FeeEntry
	for _, e := range entries {
		if e.Kind == domain.FeeKindPayout {
			payout = e
		}
	}
	if payout == nil {
		t.Fatalf("expected a payout entry, got %+v", entries)
	}
	if payout.Gross != 4000 || payout.SettlementRef != receipt.TransactionID {
		t.Errorf("payout entry mismatch: %+v", payout)
	}

	t.Run("balance debited", func(t *testing.T) {
		// 750 remains after the first withdrawal
		if _, err := s.payout.Withdraw(t.Context(), "org-1", 1000); !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		if _, err := s.payout.Withdraw(t.Context(), "org-1", 750); err != nil {
			t.Fatalf("withdraw remainder: %v", err)
		}
	})

	t.Run("non positive amount", func(t *testing.T) {
		for _, amount := range []int64{0, -100} {
			if _, err := s.payout.Withdraw(t.Context(), "org-1", amount); !errors.Is(err, domain.ErrInvalidAmount) {
				t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
			}
		}
	})

	t.Run("declined", func(t *testing.T) {
		s.buyTicket(t, "bob", event.ID, "general", 5000)
		s.adapter.FailNextOut("provider_unavailable")
		if _, err := s.payout.Withdraw(t.Context(), "org-1", 1000); !errors.Is(err, domain.ErrPaymentFailed) {
			t.Fatalf("expected ErrPaymentFailed, got %v", err)
		}
		// the decline left the ledger untouched, so the same amount clears
		if _, err := s.payout.Withdraw(t.Context(), "org-1", 1000); err != nil {
			t.Fatalf("retry after decline: %v", err)
		}
	})

	t.Run("unfunded account", func(t *testing.T) {
		if _, err := s.payout.Withdraw(t.Context(), "stranger", 1_000_000_000); !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		entries, err := s.payout.AccountStatement(t.Context(), "stranger")
		if err != nil {
			t.Fatalf("AccountStatement: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no ledger entries for a refused withdrawal, got %d", len(entries))
		}
	})
}
