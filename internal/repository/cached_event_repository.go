package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Amity808/entrytagv1/internal/domain"
)

const (
	eventDetailKeyPrefix = "event:detail:"
	eventListKeyPrefix   = "event:list:"

	eventCacheTTL = 5 * time.Minute
)

// CachedEventRepository wraps an EventRepository with Redis caching.
// Writes go through to the backing repository and invalidate; reads are
// served from cache when possible. Cache failures are ignored so Redis
// going down degrades to uncached reads instead of failing requests. A
// stale cached read cannot clobber the backing store: its version is
// behind, so the backing Update rejects it with ErrConcurrentUpdate.
type CachedEventRepository struct {
	repo  EventRepository
	cache redis.Cmdable
}

// NewCachedEventRepository creates a new CachedEventRepository
func NewCachedEventRepository(repo EventRepository, cache redis.Cmdable) *CachedEventRepository {
	return &CachedEventRepository{
		repo:  repo,
		cache: cache,
	}
}

// Create creates an event and invalidates list caches
func (r *CachedEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Create(ctx, event); err != nil {
		return err
	}
	r.invalidateListCaches(ctx)
	return nil
}

// GetByID retrieves an event by ID with caching
func (r *CachedEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	cacheKey := fmt.Sprintf("%s%d", eventDetailKeyPrefix, id)
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var event domain.Event
		if err := json.Unmarshal([]byte(cached), &event); err == nil {
			return &event, nil
		}
	}

	event, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(event); err == nil {
		r.cache.Set(ctx, cacheKey, string(data), eventCacheTTL)
	}
	return event, nil
}

// Update updates an event and invalidates its caches. A failed invalidation
// leaves stale reads until the TTL expires; writers retrying off such a read
// fail the version guard rather than oversell.
func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Update(ctx, event); err != nil {
		return err
	}
	r.cache.Del(ctx, fmt.Sprintf("%s%d", eventDetailKeyPrefix, event.ID))
	r.invalidateListCaches(ctx)
	return nil
}

// List retrieves events with caching for unfiltered page queries only.
// Filtered queries bypass the cache.
func (r *CachedEventRepository) List(ctx context.Context, filter ListFilter) ([]*domain.Event, int64, error) {
	if filter.Status != "" || filter.Category != "" || filter.OrganizerID != "" {
		return r.repo.List(ctx, filter)
	}

	cacheKey := fmt.Sprintf("%s%d:%d", eventListKeyPrefix, filter.Limit, filter.Offset)
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var result cachedEventList
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result.Events, result.Total, nil
		}
	}

	events, total, err := r.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(cachedEventList{Events: events, Total: total}); err == nil {
		r.cache.Set(ctx, cacheKey, string(data), eventCacheTTL)
	}
	return events, total, nil
}

type cachedEventList struct {
	Events []*domain.Event `json:"events"`
	Total  int64           `json:"total"`
}

func (r *CachedEventRepository) invalidateListCaches(ctx context.Context) {
	iter := r.cache.Scan(ctx, 0, eventListKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		r.cache.Del(ctx, iter.Val())
	}
}

// Ensure CachedEventRepository implements EventRepository
var _ EventRepository = (*CachedEventRepository)(nil)
