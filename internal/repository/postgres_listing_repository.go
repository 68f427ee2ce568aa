package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/pkg/telemetry"
)

// PostgresListingRepository implements ListingRepository using PostgreSQL with pgxpool
type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresListingRepository creates a new PostgresListingRepository
func NewPostgresListingRepository(pool *pgxpool.Pool) *PostgresListingRepository {
	return &PostgresListingRepository{pool: pool}
}

// Create inserts a new listing and returns the assigned ID. A partial
// unique index on (ticket_id) WHERE status = 'active' backs the
// one-active-listing-per-ticket rule at the storage layer.
func (r *PostgresListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("ticket_id", listing.TicketID),
		attribute.String("seller_id", listing.SellerID),
	)

	history, err := json.Marshal(listing.PriceHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal price history: %w", err)
	}

	query := `
		INSERT INTO listings (
			ticket_id, event_id, seller_id, price, status,
			price_history, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		listing.TicketID,
		listing.EventID,
		listing.SellerID,
		listing.Price,
		listing.Status.String(),
		history,
		listing.CreatedAt,
		listing.UpdatedAt,
	).Scan(&listing.ID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create listing: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a listing by its ID
func (r *PostgresListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("listing_id", id))

	listing, err := scanListing(r.pool.QueryRow(ctx, listingSelect+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

// GetActiveByTicket retrieves the active listing escrowing a ticket
func (r *PostgresListingRepository) GetActiveByTicket(ctx context.Context, ticketID int64) (*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.get_active_by_ticket")
	defer span.End()

	span.SetAttributes(attribute.Int64("ticket_id", ticketID))

	listing, err := scanListing(r.pool.QueryRow(ctx,
		listingSelect+" WHERE ticket_id = $1 AND status = 'active'", ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get active listing: %w", err)
	}
	return listing, nil
}

// Update overwrites the mutable fields of a listing
func (r *PostgresListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.update")
	defer span.End()

	span.SetAttributes(attribute.Int64("listing_id", listing.ID))

	history, err := json.Marshal(listing.PriceHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal price history: %w", err)
	}

	query := `
		UPDATE listings SET
			price = $2,
			status = $3,
			price_history = $4,
			buyer_id = $5,
			sold_at = $6,
			updated_at = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		listing.ID,
		listing.Price,
		listing.Status.String(),
		history,
		nullString(listing.BuyerID),
		listing.SoldAt,
		listing.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListActiveByEvent retrieves active listings for an event cheapest first
func (r *PostgresListingRepository) ListActiveByEvent(ctx context.Context, eventID int64) ([]*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.list_active_by_event")
	defer span.End()

	return r.queryListings(ctx,
		listingSelect+" WHERE event_id = $1 AND status = 'active' ORDER BY price, id", eventID)
}

// ListBySeller retrieves all of a seller's listings
func (r *PostgresListingRepository) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Listing, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.listing.list_by_seller")
	defer span.End()

	return r.queryListings(ctx, listingSelect+" WHERE seller_id = $1 ORDER BY id", sellerID)
}

const listingSelect = `
	SELECT
		id, ticket_id, event_id, seller_id, price, status,
		price_history, buyer_id, sold_at, created_at, updated_at
	FROM listings`

func (r *PostgresListingRepository) queryListings(ctx context.Context, query string, args ...any) ([]*domain.Listing, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}
	return listings, nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	listing := &domain.Listing{}
	var (
		status  string
		history []byte
		buyerID *string
		soldAt  *time.Time
	)

	err := row.Scan(
		&listing.ID,
		&listing.TicketID,
		&listing.EventID,
		&listing.SellerID,
		&listing.Price,
		&status,
		&history,
		&buyerID,
		&soldAt,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	listing.Status = domain.ListingStatus(status)
	if err := json.Unmarshal(history, &listing.PriceHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price history: %w", err)
	}
	if buyerID != nil {
		listing.BuyerID = *buyerID
	}
	listing.SoldAt = soldAt
	return listing, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresListingRepository implements ListingRepository
var _ ListingRepository = (*PostgresListingRepository)(nil)
