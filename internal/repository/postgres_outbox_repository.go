package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/pkg/telemetry"
)

// PostgresOutboxRepository implements OutboxRepository using PostgreSQL with pgxpool
type PostgresOutboxRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOutboxRepository creates a new PostgresOutboxRepository
func NewPostgresOutboxRepository(pool *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{pool: pool}
}

// Create stages a message for publication
func (r *PostgresOutboxRepository) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.create")
	defer span.End()

	query := `
		INSERT INTO outbox_messages (
			id, topic, key, event_type, payload, status, attempts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		msg.ID,
		msg.Topic,
		msg.Key,
		msg.EventType,
		msg.Payload,
		msg.Status,
		msg.Attempts,
		msg.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// FetchPending locks and returns unpublished messages oldest first.
// SKIP LOCKED lets multiple worker replicas drain the table without
// stepping on each other.
func (r *PostgresOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.fetch_pending")
	defer span.End()

	query := `
		SELECT id, topic, key, event_type, payload, status, attempts,
		       COALESCE(last_error, ''), created_at, published_at
		FROM outbox_messages
		WHERE status != 'published'
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch pending messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg := &domain.OutboxMessage{}
		var status string
		err := rows.Scan(
			&msg.ID,
			&msg.Topic,
			&msg.Key,
			&msg.EventType,
			&msg.Payload,
			&status,
			&msg.Attempts,
			&msg.LastError,
			&msg.CreatedAt,
			&msg.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.Status = domain.OutboxStatus(status)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return messages, nil
}

// MarkPublished records a successful delivery
func (r *PostgresOutboxRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.mark_published")
	defer span.End()

	query := `
		UPDATE outbox_messages SET
			status = 'published',
			published_at = $2
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark message published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOutboxNotFound
	}
	return nil
}

// MarkFailed records a failed delivery attempt
func (r *PostgresOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.outbox.mark_failed")
	defer span.End()

	query := `
		UPDATE outbox_messages SET
			status = 'failed',
			attempts = attempts + 1,
			last_error = $2
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, reason)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark message failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOutboxNotFound
	}
	return nil
}

// Ensure PostgresOutboxRepository implements OutboxRepository
var _ OutboxRepository = (*PostgresOutboxRepository)(nil)
