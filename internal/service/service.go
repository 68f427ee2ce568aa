package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/pkg/logger"
)

// Policy holds the ledger-wide business parameters
type Policy struct {
	// PlatformFeeBps is the platform cut in basis points of gross
	PlatformFeeBps int64

	// TransferLock is how long after acquisition a ticket cannot move
	TransferLock time.Duration

	// MinStartLead is the minimum gap between creation and event start
	MinStartLead time.Duration

	// MinEventDuration is the minimum event length
	MinEventDuration time.Duration

	Currency string

	// OutboxTopic is the broker topic ledger events are staged for
	OutboxTopic string
}

// DefaultPolicy returns the standard ledger parameters
func DefaultPolicy() Policy {
	return Policy{
		PlatformFeeBps:   500,
		TransferLock:     24 * time.Hour,
		MinStartLead:     time.Hour,
		MinEventDuration: 30 * time.Minute,
		Currency:         "USD",
		OutboxTopic:      "ledger.events",
	}
}

// stageOutbox writes a domain event to the outbox. Staging failures are
// logged and swallowed; the business operation has already committed and
// event delivery is best-effort at this level.
func stageOutbox(ctx context.Context, outbox repository.OutboxRepository, topic, key, eventType string, payload any, now time.Time) {
	if outbox == nil {
		return
	}
	msg, err := domain.NewOutboxMessage(topic, key, eventType, payload, now)
	if err != nil {
		logger.Get().Warn("failed to build outbox message",
			zap.String("event_type", eventType),
			zap.Error(err))
		return
	}
	if err := outbox.Create(ctx, msg); err != nil {
		logger.Get().Warn("failed to stage outbox message",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
