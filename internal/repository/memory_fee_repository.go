package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// MemoryFeeRepository is an in-memory FeeRepository
type MemoryFeeRepository struct {
	mu      sync.RWMutex
	entries map[int64]*domain.FeeEntry
	nextID  int64
}

// NewMemoryFeeRepository creates an empty in-memory fee ledger
func NewMemoryFeeRepository() *MemoryFeeRepository {
	return &MemoryFeeRepository{
		entries: make(map[int64]*domain.FeeEntry),
		nextID:  1,
	}
}

// Create assigns a monotonic ID and stores the entry. Entries are
// append-only; there is no update.
func (r *MemoryFeeRepository) Create(_ context.Context, entry *domain.FeeEntry) error {
	if err := entry.Check(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = r.nextID
	r.nextID++
	stored := *entry
	r.entries[entry.ID] = &stored
	return nil
}

// GetByID returns a copy of the entry
func (r *MemoryFeeRepository) GetByID(_ context.Context, id int64) (*domain.FeeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrFeeEntryNotFound
	}
	cp := *entry
	return &cp, nil
}

// ListByEvent returns all entries for an event ordered by ID
func (r *MemoryFeeRepository) ListByEvent(_ context.Context, eventID int64) ([]*domain.FeeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.FeeEntry, 0)
	for _, e := range r.entries {
		if e.EventID == eventID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListByAccount returns entries where the account paid or was paid
func (r *MemoryFeeRepository) ListByAccount(_ context.Context, accountID string) ([]*domain.FeeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.FeeEntry, 0)
	for _, e := range r.entries {
		if e.PayerID == accountID || e.PayeeID == accountID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// TotalFees sums the platform cut across all entries
func (r *MemoryFeeRepository) TotalFees(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, e := range r.entries {
		total += e.Fee
	}
	return total, nil
}
