package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/pkg/telemetry"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Create inserts a new event and returns the assigned ID. Tiers are stored
// as a JSONB document alongside the aggregate counters.
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(attribute.String("organizer_id", event.OrganizerID))

	tiers, err := json.Marshal(event.Tiers)
	if err != nil {
		return fmt.Errorf("failed to marshal tiers: %w", err)
	}

	query := `
		INSERT INTO events (
			organizer_id, metadata_ref, category, start_time, end_time,
			status, tiers, total_capacity, sold, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, $12
		)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		event.OrganizerID,
		event.MetadataRef,
		string(event.Category),
		event.StartTime,
		event.EndTime,
		event.Status.String(),
		tiers,
		event.TotalCapacity,
		event.Sold,
		event.Version,
		event.CreatedAt,
		event.UpdatedAt,
	).Scan(&event.ID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", id))

	query := `
		SELECT
			id, organizer_id, metadata_ref, category, start_time, end_time,
			status, tiers, total_capacity, sold, version, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// Update overwrites the mutable fields of an event. The write is guarded by
// the version the caller loaded; a mismatch means another writer advanced
// the row and the caller must reload.
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", event.ID))

	tiers, err := json.Marshal(event.Tiers)
	if err != nil {
		return fmt.Errorf("failed to marshal tiers: %w", err)
	}

	query := `
		UPDATE events SET
			status = $2,
			tiers = $3,
			sold = $4,
			version = version + 1,
			updated_at = $5
		WHERE id = $1 AND version = $6
	`

	tag, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Status.String(),
		tiers,
		event.Sold,
		event.UpdatedAt,
		event.Version,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, event.ID).Scan(&exists); checkErr == nil && exists {
			return fmt.Errorf("%w: event %d version %d", domain.ErrConcurrentUpdate, event.ID, event.Version)
		}
		return domain.ErrEventNotFound
	}
	event.Version++

	span.SetStatus(codes.Ok, "")
	return nil
}

// List retrieves events matching the filter, newest first
func (r *PostgresEventRepository) List(ctx context.Context, filter ListFilter) ([]*domain.Event, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	where := " WHERE 1=1"
	args := []any{}
	idx := 1
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, filter.Status.String())
		idx++
	}
	if filter.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, string(filter.Category))
		idx++
	}
	if filter.OrganizerID != "" {
		where += fmt.Sprintf(" AND organizer_id = $%d", idx)
		args = append(args, filter.OrganizerID)
		idx++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `
		SELECT
			id, organizer_id, metadata_ref, category, start_time, end_time,
			status, tiers, total_capacity, sold, version, created_at, updated_at
		FROM events` + where + " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, filter.Limit)
		idx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating events: %w", err)
	}
	return events, total, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var (
		category string
		status   string
		tiers    []byte
	)

	err := row.Scan(
		&event.ID,
		&event.OrganizerID,
		&event.MetadataRef,
		&category,
		&event.StartTime,
		&event.EndTime,
		&status,
		&tiers,
		&event.TotalCapacity,
		&event.Sold,
		&event.Version,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Category = domain.EventCategory(category)
	event.Status = domain.EventStatus(status)
	if err := json.Unmarshal(tiers, &event.Tiers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tiers: %w", err)
	}
	return event, nil
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
