package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
)

func TestTransfer(t *testing.T) {
	s := newStack(t)
	_, ticket := sellableTicket(t, s, "alice")

	got, err := s.ticketSvc.Transfer(t.Context(), "alice", ticket.ID, "bob")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got.OwnerID != "bob" {
		t.Errorf("expected owner bob, got %s", got.OwnerID)
	}

	// the lock restarts for the recipient
	if _, err := s.ticketSvc.Transfer(t.Context(), "bob", ticket.ID, "carol"); !errors.Is(err, domain.ErrTransferLocked) {
		t.Fatalf("expected ErrTransferLocked, got %v", err)
	}
	s.clock.Advance(s.policy.TransferLock + time.Minute)
	if _, err := s.ticketSvc.Transfer(t.Context(), "bob", ticket.ID, "carol"); err != nil {
		t.Fatalf("transfer after lock expiry: %v", err)
	}
}

func TestTransfer_OnlyOwner(t *testing.T) {
	s := newStack(t)
	_, ticket := sellableTicket(t, s, "alice")

	if _, err := s.ticketSvc.Transfer(t.Context(), "mallory", ticket.ID, "mallory"); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestTransfer_InsideLockWindow(t *testing.T) {
	s := newStack(t)
	event := longEvent(t, s, "org-1")
	ticket := s.buyTicket(t, "alice", event.ID, "general", 5000)

	if _, err := s.ticketSvc.Transfer(t.Context(), "alice", ticket.ID, "bob"); !errors.Is(err, domain.ErrTransferLocked) {
		t.Fatalf("expected ErrTransferLocked, got %v", err)
	}
}

func TestTransfer_ClosedEvent(t *testing.T) {
	s := newStack(t)
	_, ticket := sellableTicket(t, s, "alice")

	if _, err := s.eventSvc.CancelEvent(t.Context(), "org-1", ticket.EventID); err != nil {
		t.Fatalf("CancelEvent: %v", err)
	}
	if _, err := s.ticketSvc.Transfer(t.Context(), "alice", ticket.ID, "bob"); !errors.Is(err, domain.ErrNotTransferable) {
		t.Fatalf("expected ErrNotTransferable, got %v", err)
	}
}

func TestRedeem(t *testing.T) {
	s := newStack(t)
	event := longEvent(t, s, "org-1")
	ticket := s.buyTicket(t, "alice", event.ID, "general", 5000)

	t.Run("organizer only", func(t *testing.T) {
		if _, err := s.ticketSvc.Redeem(t.Context(), "alice", ticket.ID); !errors.Is(err, domain.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("redeem", func(t *testing.T) {
		got, err := s.ticketSvc.Redeem(t.Context(), "org-1", ticket.ID)
		if err != nil {
			t.Fatalf("Redeem: %v", err)
		}
		if got.Status != domain.TicketStatusUsed {
			t.Errorf("expected used, got %s", got.Status)
		}
	})

	t.Run("double redeem", func(t *testing.T) {
		if _, err := s.ticketSvc.Redeem(t.Context(), "org-1", ticket.ID); !errors.Is(err, domain.ErrTicketUsed) {
			t.Fatalf("expected ErrTicketUsed, got %v", err)
		}
	})

	t.Run("used tickets never move", func(t *testing.T) {
		s.clock.Advance(s.policy.TransferLock + time.Minute)
		if _, err := s.ticketSvc.Transfer(t.Context(), "alice", ticket.ID, "bob"); !errors.Is(err, domain.ErrTicketUsed) {
			t.Fatalf("expected ErrTicketUsed, got %v", err)
		}
		if _, err := s.market.ListTicket(t.Context(), "alice", ticket.ID, 8000); !errors.Is(err, domain.ErrTicketUsed) {
			t.Fatalf("expected ErrTicketUsed on listing, got %v", err)
		}
	})
}

func TestRedeem_CancelledEvent(t *testing.T) {
	s := newStack(t)
	event := longEvent(t, s, "org-1")
	ticket := s.buyTicket(t, "alice", event.ID, "general", 5000)

	if _, err := s.eventSvc.CancelEvent(t.Context(), "org-1", event.ID); err != nil {
		t.Fatalf("CancelEvent: %v", err)
	}
	if _, err := s.ticketSvc.Redeem(t.Context(), "org-1", ticket.ID); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRedeem_CompletedEvent(t *testing.T) {
	s := newStack(t)
	event := longEvent(t, s, "org-1")
	ticket := s.buyTicket(t, "alice", event.ID, "general", 5000)

	// past the end time the clock completes the event; its tickets can
	// no longer be redeemed
	s.clock.Advance(31 * 24 * time.Hour)
	if _, err := s.ticketSvc.Redeem(t.Context(), "org-1", ticket.ID); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestListTickets(t *testing.T) {
	s := newStack(t)
	event := longEvent(t, s, "org-1")
	tk1 := s.buyTicket(t, "alice", event.ID, "general", 5000)
	s.buyTicket(t, "bob", event.ID, "general", 5000)

	owned, err := s.ticketSvc.ListByOwner(t.Context(), "alice")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != tk1.ID {
		t.Errorf("owner listing failed: %+v", owned)
	}

	minted, err := s.ticketSvc.ListByEvent(t.Context(), event.ID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(minted) != 2 {
		t.Errorf("expected 2 tickets, got %d", len(minted))
	}
}
