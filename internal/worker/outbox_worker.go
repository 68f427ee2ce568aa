package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Amity808/entrytagv1/internal/domain"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/pkg/kafka"
	"github.com/Amity808/entrytagv1/pkg/logger"
	"github.com/Amity808/entrytagv1/pkg/retry"
	"github.com/Amity808/entrytagv1/pkg/telemetry"
)

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polls for pending messages
	PollInterval time.Duration
	// BatchSize is the number of messages to fetch in each poll
	BatchSize int
	// MaxAttempts is the number of delivery attempts before a message is
	// left in the failed state for operator attention
	MaxAttempts int
	// PublishRetry bounds the in-process retries of a single produce call
	// before the message is marked failed and left for the next poll
	PublishRetry *retry.Config
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval: 200 * time.Millisecond,
		BatchSize:    100,
		MaxAttempts:  5,
		PublishRetry: &retry.Config{
			MaxRetries:      2,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
	}
}

// OutboxWorker drains staged ledger events to the broker. FetchPending
// returns both never-attempted and previously failed messages, so a single
// poll loop covers delivery and retry.
type OutboxWorker struct {
	outbox    repository.OutboxRepository
	publisher kafka.Publisher
	config    *OutboxWorkerConfig
	log       *logger.Logger
	now       func() time.Time
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// NewOutboxWorker creates a new outbox worker
func NewOutboxWorker(outbox repository.OutboxRepository, publisher kafka.Publisher, config *OutboxWorkerConfig) *OutboxWorker {
	if config == nil {
		config = DefaultOutboxWorkerConfig()
	}
	return &OutboxWorker{
		outbox:    outbox,
		publisher: publisher,
		config:    config,
		log:       logger.Get(),
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start starts the poll loop. It returns an error if the worker is
// already running.
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("starting outbox worker",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))

	w.wg.Add(1)
	go w.poll(ctx)
	return nil
}

// Stop signals the poll loop and waits for it to drain
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("outbox worker stopped")
}

func (w *OutboxWorker) poll(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain fetches one batch of pending messages and pushes each to the
// broker, recording the outcome per message. It returns the number of
// messages published.
func (w *OutboxWorker) Drain(ctx context.Context) int {
	ctx, span := telemetry.StartSpan(ctx, "worker.outbox.drain")
	defer span.End()

	messages, err := w.outbox.FetchPending(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error("failed to fetch pending outbox messages", zap.Error(err))
		return 0
	}

	published := 0
	for _, msg := range messages {
		if !msg.Retryable(w.config.MaxAttempts) {
			continue
		}

		if err := w.publish(ctx, msg); err != nil {
			w.log.Warn("failed to publish outbox message",
				zap.String("message_id", msg.ID),
				zap.String("event_type", msg.EventType),
				zap.Int("attempts", msg.Attempts+1),
				zap.Error(err))
			if markErr := w.outbox.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				w.log.Error("failed to mark outbox message failed",
					zap.String("message_id", msg.ID), zap.Error(markErr))
			}
			continue
		}

		if markErr := w.outbox.MarkPublished(ctx, msg.ID, w.now()); markErr != nil {
			// delivered but not recorded, the message will be re-sent
			// on the next poll (consumers must tolerate duplicates)
			w.log.Error("failed to mark outbox message published",
				zap.String("message_id", msg.ID), zap.Error(markErr))
			continue
		}
		published++
	}
	return published
}

func (w *OutboxWorker) publish(ctx context.Context, msg *domain.OutboxMessage) error {
	return retry.Do(ctx, w.config.PublishRetry, func(ctx context.Context) error {
		return w.publishOnce(ctx, msg)
	})
}

func (w *OutboxWorker) publishOnce(ctx context.Context, msg *domain.OutboxMessage) error {
	return w.publisher.Publish(ctx, &kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Payload: msg.Payload,
		Headers: map[string]string{
			"event_type":   msg.EventType,
			"content_type": "application/json",
			"source":       "outbox-worker",
		},
	})
}
