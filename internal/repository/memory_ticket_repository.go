package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// MemoryTicketRepository is an in-memory TicketRepository
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[int64]*domain.Ticket
	nextID  int64
}

// NewMemoryTicketRepository creates an empty in-memory ticket repository
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		tickets: make(map[int64]*domain.Ticket),
		nextID:  1,
	}
}

// Create assigns a monotonic ID and stores a copy of the ticket
func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket.ID = r.nextID
	r.nextID++
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

// GetByID returns a copy of the ticket
func (r *MemoryTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return ticket.Clone(), nil
}

// Update overwrites the stored ticket
func (r *MemoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[ticket.ID]; !ok {
		return domain.ErrTicketNotFound
	}
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

// Delete removes the stored ticket
func (r *MemoryTicketRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.tickets, id)
	return nil
}

// ListByOwner returns the account's tickets ordered by ID
func (r *MemoryTicketRepository) ListByOwner(_ context.Context, ownerID string) ([]*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Ticket, 0)
	for _, tk := range r.tickets {
		if tk.OwnerID == ownerID {
			out = append(out, tk.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListByEvent returns all tickets minted for an event ordered by ID
func (r *MemoryTicketRepository) ListByEvent(_ context.Context, eventID int64) ([]*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Ticket, 0)
	for _, tk := range r.tickets {
		if tk.EventID == eventID {
			out = append(out, tk.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
