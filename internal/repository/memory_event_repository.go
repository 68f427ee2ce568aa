package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// MemoryEventRepository is an in-memory EventRepository for tests and
// single-node deployments
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events map[int64]*domain.Event
	nextID int64
}

// NewMemoryEventRepository creates an empty in-memory event repository
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events: make(map[int64]*domain.Event),
		nextID: 1,
	}
}

// Create assigns a monotonic ID and stores a copy of the event
func (r *MemoryEventRepository) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.nextID
	r.nextID++
	r.events[event.ID] = event.Clone()
	return nil
}

// GetByID returns a copy of the event
func (r *MemoryEventRepository) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return event.Clone(), nil
}

// Update overwrites the stored event. The write carries the version the
// caller loaded; a mismatch means another writer got there first.
func (r *MemoryEventRepository) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.events[event.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if stored.Version != event.Version {
		return fmt.Errorf("%w: event %d version %d is behind %d", domain.ErrConcurrentUpdate, event.ID, event.Version, stored.Version)
	}
	event.Version++
	r.events[event.ID] = event.Clone()
	return nil
}

// List returns events matching the filter, newest first
func (r *MemoryEventRepository) List(_ context.Context, filter ListFilter) ([]*domain.Event, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Event, 0)
	for _, ev := range r.events {
		if filter.Status != "" && ev.Status != filter.Status {
			continue
		}
		if filter.Category != "" && ev.Category != filter.Category {
			continue
		}
		if filter.OrganizerID != "" && ev.OrganizerID != filter.OrganizerID {
			continue
		}
		matched = append(matched, ev.Clone())
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*domain.Event{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}
