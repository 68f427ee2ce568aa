package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/repository"
)

func TestEventService_CreateEvent(t *testing.T) {
	s := newStack(t)

	event := s.createEvent(t, "org-1", defaultTiers())
	if event.ID == 0 {
		t.Error("event must receive an ID")
	}
	if event.Status != domain.EventStatusCreated {
		t.Errorf("expected created, got %s", event.Status)
	}
	if event.TotalCapacity != 105 {
		t.Errorf("expected capacity 105, got %d", event.TotalCapacity)
	}

	pending, _ := s.outbox.FetchPending(t.Context(), 10)
	if len(pending) != 1 || pending[0].EventType != domain.EventTypeEventCreated {
		t.Errorf("expected a staged created event, got %+v", pending)
	}
}

func TestEventService_CreateEvent_RejectsBadSchedule(t *testing.T) {
	s := newStack(t)
	now := s.clock.Now()

	_, err := s.eventSvc.CreateEvent(t.Context(), "org-1", CreateEventParams{
		StartTime: now.Add(10 * time.Minute),
		EndTime:   now.Add(3 * time.Hour),
		Tiers:     defaultTiers(),
	})
	if !errors.Is(err, domain.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestEventService_GetEvent_SettlesClockTransitions(t *testing.T) {
	s := newStack(t)
	event := s.createEvent(t, "org-1", defaultTiers())

	s.clock.Advance(3 * time.Hour) // past start

	got, err := s.eventSvc.GetEvent(t.Context(), event.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Status != domain.EventStatusActive {
		t.Errorf("expected active, got %s", got.Status)
	}

	// the transition was persisted, not just computed on the copy
	stored, _ := s.events.GetByID(t.Context(), event.ID)
	if stored.Status != domain.EventStatusActive {
		t.Errorf("transition must persist, stored status %s", stored.Status)
	}

	s.clock.Advance(4 * time.Hour) // past end
	got, _ = s.eventSvc.GetEvent(t.Context(), event.ID)
	if got.Status != domain.EventStatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
}

func TestEventService_CancelEvent(t *testing.T) {
	s := newStack(t)
	event := s.createEvent(t, "org-1", defaultTiers())

	t.Run("organizer only", func(t *testing.T) {
		if _, err := s.eventSvc.CancelEvent(t.Context(), "org-2", event.ID); !errors.Is(err, domain.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		cancelled, err := s.eventSvc.CancelEvent(t.Context(), "org-1", event.ID)
		if err != nil {
			t.Fatalf("CancelEvent: %v", err)
		}
		if cancelled.Status != domain.EventStatusCancelled {
			t.Errorf("expected cancelled, got %s", cancelled.Status)
		}
	})

	t.Run("cancel is terminal", func(t *testing.T) {
		if _, err := s.eventSvc.CancelEvent(t.Context(), "org-1", event.ID); !errors.Is(err, domain.ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
		// the clock never resurrects a cancelled event
		s.clock.Advance(10 * time.Hour)
		got, _ := s.eventSvc.GetEvent(t.Context(), event.ID)
		if got.Status != domain.EventStatusCancelled {
			t.Errorf("cancelled must stay cancelled, got %s", got.Status)
		}
	})
}

func TestEventService_ActivateEvent(t *testing.T) {
	s := newStack(t)
	event := s.createEvent(t, "org-1", defaultTiers())

	if _, err := s.eventSvc.ActivateEvent(t.Context(), "org-2", event.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	activated, err := s.eventSvc.ActivateEvent(t.Context(), "org-1", event.ID)
	if err != nil {
		t.Fatalf("ActivateEvent: %v", err)
	}
	if activated.Status != domain.EventStatusActive {
		t.Errorf("expected active, got %s", activated.Status)
	}
}

func TestEventService_CompleteEvent(t *testing.T) {
	s := newStack(t)
	event := s.createEvent(t, "org-1", defaultTiers())

	// not yet started, nothing to complete
	if _, err := s.eventSvc.CompleteEvent(t.Context(), "org-1", event.ID); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	s.clock.Advance(3 * time.Hour) // inside the event window, now active

	if _, err := s.eventSvc.CompleteEvent(t.Context(), "org-2", event.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	completed, err := s.eventSvc.CompleteEvent(t.Context(), "org-1", event.ID)
	if err != nil {
		t.Fatalf("CompleteEvent: %v", err)
	}
	if completed.Status != domain.EventStatusCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}

	if _, err := s.eventSvc.CancelEvent(t.Context(), "org-1", event.ID); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus cancelling a completed event, got %v", err)
	}
}

func TestEventService_ListEvents(t *testing.T) {
	s := newStack(t)
	s.createEvent(t, "org-1", defaultTiers())
	s.createEvent(t, "org-2", defaultTiers())

	events, total, err := s.eventSvc.ListEvents(t.Context(), repository.ListFilter{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if total != 2 || len(events) != 2 {
		t.Fatalf("expected 2 events, got %d (total %d)", len(events), total)
	}

	filtered, _, _ := s.eventSvc.ListEvents(t.Context(), repository.ListFilter{OrganizerID: "org-2"})
	if len(filtered) != 1 {
		t.Errorf("organizer filter failed, got %d events", len(filtered))
	}
}
