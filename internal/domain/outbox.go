package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the delivery state of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Ledger event types emitted through the outbox
const (
	EventTypeEventCreated    = "event.created"
	EventTypeEventCancelled  = "event.cancelled"
	EventTypeTicketPurchased = "ticket.purchased"
	EventTypeTicketResold    = "ticket.resold"
	EventTypeTicketTransfer  = "ticket.transferred"
	EventTypeTicketRedeemed  = "ticket.redeemed"
	EventTypeListingCreated  = "listing.created"
	EventTypeListingPriced   = "listing.price_updated"
	EventTypeListingDropped  = "listing.cancelled"
	EventTypePayoutRequested = "payout.requested"
)

// OutboxMessage is a domain event staged for asynchronous publication.
// Messages are written in the same transaction as the state change and a
// worker drains them to the broker.
type OutboxMessage struct {
	ID          string       `json:"id"`
	Topic       string       `json:"topic"`
	Key         string       `json:"key"`
	EventType   string       `json:"event_type"`
	Payload     []byte       `json:"payload"`
	Status      OutboxStatus `json:"status"`
	Attempts    int          `json:"attempts"`
	LastError   string       `json:"last_error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
}

// NewOutboxMessage stages a domain event for publication. The payload is
// marshaled immediately so a serialization fault surfaces at write time.
func NewOutboxMessage(topic, key, eventType string, payload any, now time.Time) (*OutboxMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxMessage{
		ID:        uuid.New().String(),
		Topic:     topic,
		Key:       key,
		EventType: eventType,
		Payload:   body,
		Status:    OutboxStatusPending,
		CreatedAt: now,
	}, nil
}

// MarkPublished records a successful delivery
func (m *OutboxMessage) MarkPublished(now time.Time) {
	m.Status = OutboxStatusPublished
	publishedAt := now
	m.PublishedAt = &publishedAt
}

// MarkFailed records a delivery attempt that did not reach the broker
func (m *OutboxMessage) MarkFailed(reason string) {
	m.Status = OutboxStatusFailed
	m.Attempts++
	m.LastError = reason
}

// Retryable reports whether a failed message should be attempted again
func (m *OutboxMessage) Retryable(maxAttempts int) bool {
	return m.Status != OutboxStatusPublished && m.Attempts < maxAttempts
}
