package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/pkg/telemetry"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// Create inserts a new ticket and returns the assigned ID
func (r *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", ticket.EventID),
		attribute.String("owner_id", ticket.OwnerID),
	)

	query := `
		INSERT INTO tickets (
			event_id, tier_name, owner_id, status, purchase_price,
			acquired_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		ticket.EventID,
		ticket.TierName,
		ticket.OwnerID,
		ticket.Status.String(),
		ticket.PurchasePrice,
		ticket.AcquiredAt,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a ticket by its ID
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("ticket_id", id))

	ticket, err := scanTicket(r.pool.QueryRow(ctx, ticketSelect+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// Update overwrites the mutable fields of a ticket
func (r *PostgresTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.update")
	defer span.End()

	span.SetAttributes(attribute.Int64("ticket_id", ticket.ID))

	query := `
		UPDATE tickets SET
			owner_id = $2,
			status = $3,
			acquired_at = $4,
			updated_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.OwnerID,
		ticket.Status.String(),
		ticket.AcquiredAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a ticket row. Saga compensation only.
func (r *PostgresTicketRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("ticket_id", id))

	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByOwner retrieves all tickets held by an account
func (r *PostgresTicketRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_by_owner")
	defer span.End()

	return r.queryTickets(ctx, ticketSelect+" WHERE owner_id = $1 ORDER BY id", ownerID)
}

// ListByEvent retrieves all tickets minted for an event
func (r *PostgresTicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_by_event")
	defer span.End()

	return r.queryTickets(ctx, ticketSelect+" WHERE event_id = $1 ORDER BY id", eventID)
}

const ticketSelect = `
	SELECT
		id, event_id, tier_name, owner_id, status, purchase_price,
		acquired_at, created_at, updated_at
	FROM tickets`

func (r *PostgresTicketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}
	return tickets, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	var status string

	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.TierName,
		&ticket.OwnerID,
		&status,
		&ticket.PurchasePrice,
		&ticket.AcquiredAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	return ticket, nil
}

// Ensure PostgresTicketRepository implements TicketRepository
var _ TicketRepository = (*PostgresTicketRepository)(nil)
