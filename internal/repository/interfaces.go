package repository

import (
	"context"
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// ListFilter narrows event queries
type ListFilter struct {
	Status      domain.EventStatus
	Category    domain.EventCategory
	OrganizerID string
	Limit       int
	Offset      int
}

// EventRepository persists events and their tier inventory
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	List(ctx context.Context, filter ListFilter) ([]*domain.Event, int64, error)
}

// TicketRepository persists minted tickets
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error

	// Delete removes a ticket. Only saga compensation uses it, to void a
	// mint whose surrounding purchase failed to commit.
	Delete(ctx context.Context, id int64) error

	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ticket, error)
}

// ListingRepository persists resale listings
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	GetActiveByTicket(ctx context.Context, ticketID int64) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	ListActiveByEvent(ctx context.Context, eventID int64) ([]*domain.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Listing, error)
}

// FeeRepository records settled sales and aggregates the platform's take
type FeeRepository interface {
	Create(ctx context.Context, entry *domain.FeeEntry) error
	GetByID(ctx context.Context, id int64) (*domain.FeeEntry, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.FeeEntry, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.FeeEntry, error)
	TotalFees(ctx context.Context) (int64, error)
}

// OutboxRepository stages domain events for asynchronous publication
type OutboxRepository interface {
	Create(ctx context.Context, msg *domain.OutboxMessage) error
	FetchPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
