package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Amity808/entrytagv1/internal/domain"
)

// MemoryOutboxRepository is an in-memory OutboxRepository
type MemoryOutboxRepository struct {
	mu       sync.RWMutex
	messages map[string]*domain.OutboxMessage
}

// NewMemoryOutboxRepository creates an empty in-memory outbox
func NewMemoryOutboxRepository() *MemoryOutboxRepository {
	return &MemoryOutboxRepository{
		messages: make(map[string]*domain.OutboxMessage),
	}
}

// Create stores a staged message
func (r *MemoryOutboxRepository) Create(_ context.Context, msg *domain.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *msg
	r.messages[msg.ID] = &cp
	return nil
}

// FetchPending returns unpublished messages oldest first, up to limit
func (r *MemoryOutboxRepository) FetchPending(_ context.Context, limit int) ([]*domain.OutboxMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.OutboxMessage, 0)
	for _, m := range r.messages {
		if m.Status == domain.OutboxStatusPublished {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// MarkPublished records a successful delivery
func (r *MemoryOutboxRepository) MarkPublished(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return domain.ErrOutboxNotFound
	}
	m.MarkPublished(at)
	return nil
}

// MarkFailed records a failed delivery attempt
func (r *MemoryOutboxRepository) MarkFailed(_ context.Context, id string, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return domain.ErrOutboxNotFound
	}
	m.MarkFailed(reason)
	return nil
}
