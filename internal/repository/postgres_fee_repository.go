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

// PostgresFeeRepository implements FeeRepository using PostgreSQL with pgxpool
type PostgresFeeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFeeRepository creates a new PostgresFeeRepository
func NewPostgresFeeRepository(pool *pgxpool.Pool) *PostgresFeeRepository {
	return &PostgresFeeRepository{pool: pool}
}

// Create appends a fee entry. The ledger is insert-only.
func (r *PostgresFeeRepository) Create(ctx context.Context, entry *domain.FeeEntry) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.fee.create")
	defer span.End()

	if err := entry.Check(); err != nil {
		return err
	}

	span.SetAttributes(
		attribute.Int64("event_id", entry.EventID),
		attribute.Int64("gross", entry.Gross),
	)

	query := `
		INSERT INTO fee_entries (
			kind, event_id, ticket_id, listing_id, payer_id, payee_id,
			gross, fee, payout, fee_bps, settlement_ref, currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		string(entry.Kind),
		entry.EventID,
		entry.TicketID,
		entry.ListingID,
		entry.PayerID,
		entry.PayeeID,
		entry.Gross,
		entry.Fee,
		entry.Payout,
		entry.FeeBps,
		entry.SettlementRef,
		entry.Currency,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create fee entry: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a fee entry by its ID
func (r *PostgresFeeRepository) GetByID(ctx context.Context, id int64) (*domain.FeeEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.fee.get_by_id")
	defer span.End()

	entry, err := scanFeeEntry(r.pool.QueryRow(ctx, feeSelect+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFeeEntryNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get fee entry: %w", err)
	}
	return entry, nil
}

// ListByEvent retrieves all entries recorded against an event
func (r *PostgresFeeRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.FeeEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.fee.list_by_event")
	defer span.End()

	return r.queryEntries(ctx, feeSelect+" WHERE event_id = $1 ORDER BY id", eventID)
}

// ListByAccount retrieves entries where the account paid or was paid
func (r *PostgresFeeRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.FeeEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.fee.list_by_account")
	defer span.End()

	return r.queryEntries(ctx, feeSelect+" WHERE payer_id = $1 OR payee_id = $1 ORDER BY id", accountID)
}

// TotalFees sums the platform cut across the ledger
func (r *PostgresFeeRepository) TotalFees(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.fee.total_fees")
	defer span.End()

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COALESCE(SUM(fee), 0) FROM fee_entries").Scan(&total)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to sum fees: %w", err)
	}
	return total, nil
}

const feeSelect = `
	SELECT
		id, kind, event_id, ticket_id, listing_id, payer_id, payee_id,
		gross, fee, payout, fee_bps, settlement_ref, currency, created_at
	FROM fee_entries`

func (r *PostgresFeeRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*domain.FeeEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.FeeEntry
	for rows.Next() {
		entry, err := scanFeeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fee entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fee entries: %w", err)
	}
	return entries, nil
}

func scanFeeEntry(row pgx.Row) (*domain.FeeEntry, error) {
	entry := &domain.FeeEntry{}
	var kind string

	err := row.Scan(
		&entry.ID,
		&kind,
		&entry.EventID,
		&entry.TicketID,
		&entry.ListingID,
		&entry.PayerID,
		&entry.PayeeID,
		&entry.Gross,
		&entry.Fee,
		&entry.Payout,
		&entry.FeeBps,
		&entry.SettlementRef,
		&entry.Currency,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Kind = domain.FeeEntryKind(kind)
	return entry, nil
}

// Ensure PostgresFeeRepository implements FeeRepository
var _ FeeRepository = (*PostgresFeeRepository)(nil)
