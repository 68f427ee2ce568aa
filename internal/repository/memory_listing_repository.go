package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// MemoryListingRepository is an in-memory ListingRepository
type MemoryListingRepository struct {
	mu       sync.RWMutex
	listings map[int64]*domain.Listing
	nextID   int64
}

// NewMemoryListingRepository creates an empty in-memory listing repository
func NewMemoryListingRepository() *MemoryListingRepository {
	return &MemoryListingRepository{
		listings: make(map[int64]*domain.Listing),
		nextID:   1,
	}
}

// Create assigns a monotonic ID and stores a copy of the listing
func (r *MemoryListingRepository) Create(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing.ID = r.nextID
	r.nextID++
	r.listings[listing.ID] = listing.Clone()
	return nil
}

// GetByID returns a copy of the listing
func (r *MemoryListingRepository) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return listing.Clone(), nil
}

// GetActiveByTicket returns the active listing escrowing a ticket, if any
func (r *MemoryListingRepository) GetActiveByTicket(_ context.Context, ticketID int64) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.listings {
		if l.TicketID == ticketID && l.Status == domain.ListingStatusActive {
			return l.Clone(), nil
		}
	}
	return nil, domain.ErrListingNotFound
}

// Update overwrites the stored listing
func (r *MemoryListingRepository) Update(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listing.ID]; !ok {
		return domain.ErrListingNotFound
	}
	r.listings[listing.ID] = listing.Clone()
	return nil
}

// ListActiveByEvent returns active listings for an event ordered by price
func (r *MemoryListingRepository) ListActiveByEvent(_ context.Context, eventID int64) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Listing, 0)
	for _, l := range r.listings {
		if l.EventID == eventID && l.Status == domain.ListingStatusActive {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListBySeller returns all of a seller's listings ordered by ID
func (r *MemoryListingRepository) ListBySeller(_ context.Context, sellerID string) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Listing, 0)
	for _, l := range r.listings {
		if l.SellerID == sellerID {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
