package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/pkg/logger"
)

// CreateEventParams are the caller-supplied fields for a new event.
// The organizer comes from the authenticated caller, never the payload.
type CreateEventParams struct {
	MetadataRef string
	Category    domain.EventCategory
	StartTime   time.Time
	EndTime     time.Time
	Tiers       []domain.Tier
}

// EventService defines the interface for event lifecycle logic
type EventService interface {
	// CreateEvent registers a new event for the organizer
	CreateEvent(ctx context.Context, organizerID string, params CreateEventParams) (*domain.Event, error)

	// GetEvent retrieves an event, applying any due clock transitions
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)

	// ListEvents retrieves events matching the filter
	ListEvents(ctx context.Context, filter repository.ListFilter) ([]*domain.Event, int64, error)

	// ActivateEvent moves a created event to active ahead of its start time
	ActivateEvent(ctx context.Context, callerID string, eventID int64) (*domain.Event, error)

	// CancelEvent irreversibly cancels an event. Organizer only.
	CancelEvent(ctx context.Context, callerID string, eventID int64) (*domain.Event, error)

	// CompleteEvent closes out an event ahead of the lazy clock
	// transition. Organizer only.
	CompleteEvent(ctx context.Context, callerID string, eventID int64) (*domain.Event, error)
}

type eventService struct {
	events repository.EventRepository
	outbox repository.OutboxRepository
	locks  *KeyedMutex
	policy Policy
	now    func() time.Time
}

// NewEventService creates a new event service
func NewEventService(events repository.EventRepository, outbox repository.OutboxRepository, locks *KeyedMutex, policy Policy) EventService {
	return &eventService{
		events: events,
		outbox: outbox,
		locks:  locks,
		policy: policy,
		now:    time.Now,
	}
}

// CreateEvent registers a new event for the organizer
func (s *eventService) CreateEvent(ctx context.Context, organizerID string, params CreateEventParams) (*domain.Event, error) {
	now := s.now()

	event, err := domain.NewEvent(domain.EventParams{
		OrganizerID: organizerID,
		MetadataRef: params.MetadataRef,
		Category:    params.Category,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Tiers:       params.Tiers,
	}, now, s.policy.MinStartLead, s.policy.MinEventDuration)
	if err != nil {
		return nil, err
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	logger.Get().Info("event created",
		zap.Int64("event_id", event.ID),
		zap.String("organizer_id", organizerID),
		zap.Int64("total_capacity", event.TotalCapacity))

	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(event.ID), domain.EventTypeEventCreated, event, now)
	return event, nil
}

// GetEvent retrieves an event, applying any due clock transitions
func (s *eventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return s.syncedEvent(ctx, id)
}

// ListEvents retrieves events matching the filter. Clock transitions are
// applied to the returned copies without persisting; the next write or
// single-event read settles them.
func (s *eventService) ListEvents(ctx context.Context, filter repository.ListFilter) ([]*domain.Event, int64, error) {
	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for _, ev := range events {
		ev.SyncClock(now)
	}
	return events, total, nil
}

// ActivateEvent moves a created event to active ahead of its start time
func (s *eventService) ActivateEvent(ctx context.Context, callerID string, eventID int64) (*domain.Event, error) {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	event, err := s.loadSynced(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrNotOwner
	}
	if err := event.Activate(s.now()); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// CancelEvent irreversibly cancels an event
func (s *eventService) CancelEvent(ctx context.Context, callerID string, eventID int64) (*domain.Event, error) {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	event, err := s.loadSynced(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrNotOwner
	}

	now := s.now()
	if err := event.Cancel(now); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	logger.Get().Info("event cancelled",
		zap.Int64("event_id", event.ID),
		zap.String("organizer_id", callerID))

	stageOutbox(ctx, s.outbox, s.policy.OutboxTopic, eventKey(event.ID), domain.EventTypeEventCancelled, event, now)
	return event, nil
}

// CompleteEvent closes out an event ahead of the lazy clock transition
func (s *eventService) CompleteEvent(ctx context.Context, callerID string, eventID int64) (*domain.Event, error) {
	unlock := s.locks.Lock(eventID)
	defer unlock()

	event, err := s.loadSynced(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrNotOwner
	}
	if err := event.Complete(s.now()); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// syncedEvent loads an event under its lock and persists any due clock
// transition before returning it
func (s *eventService) syncedEvent(ctx context.Context, id int64) (*domain.Event, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.loadSynced(ctx, id)
}

// loadSynced loads an event and settles clock transitions. The caller must
// hold the event lock.
func (s *eventService) loadSynced(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.SyncClock(s.now()) {
		if err := s.events.Update(ctx, event); err != nil {
			return nil, err
		}
	}
	return event, nil
}

func eventKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
