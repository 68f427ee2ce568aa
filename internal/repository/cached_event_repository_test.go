package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amity808/entrytagv1/internal/domain"
)

func TestCachedEventRepository_GetByID_CacheHit(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryEventRepository()
	client, mock := redismock.NewClientMock()
	repo := NewCachedEventRepository(backing, client)

	ev := testEvent(t)
	ev.ID = 1
	data, _ := json.Marshal(ev)

	mock.ExpectGet(eventDetailKeyPrefix + "1").SetVal(string(data))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ev.OrganizerID, got.OrganizerID, "expected cached event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedEventRepository_GetByID_CacheMiss(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryEventRepository()
	client, mock := redismock.NewClientMock()
	repo := NewCachedEventRepository(backing, client)

	ev := testEvent(t)
	require.NoError(t, backing.Create(ctx, ev))
	stored, _ := backing.GetByID(ctx, ev.ID)
	data, _ := json.Marshal(stored)

	key := fmt.Sprintf("%s%d", eventDetailKeyPrefix, ev.ID)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, string(data), 5*time.Minute).SetVal("OK")

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedEventRepository_GetByID_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryEventRepository()
	client, mock := redismock.NewClientMock()
	repo := NewCachedEventRepository(backing, client)

	ev := testEvent(t)
	_ = backing.Create(ctx, ev)

	key := fmt.Sprintf("%s%d", eventDetailKeyPrefix, ev.ID)
	mock.ExpectGet(key).SetErr(fmt.Errorf("connection refused"))
	stored, _ := backing.GetByID(ctx, ev.ID)
	data, _ := json.Marshal(stored)
	mock.ExpectSet(key, string(data), 5*time.Minute).SetErr(fmt.Errorf("connection refused"))

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err, "read must survive a cache outage")
	assert.Equal(t, ev.ID, got.ID)
}

func TestCachedEventRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryEventRepository()
	client, mock := redismock.NewClientMock()
	repo := NewCachedEventRepository(backing, client)

	mock.ExpectGet(eventDetailKeyPrefix + "42").RedisNil()

	_, err := repo.GetByID(ctx, 42)
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestCachedEventRepository_ListFilteredBypassesCache(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryEventRepository()
	client, mock := redismock.NewClientMock()
	repo := NewCachedEventRepository(backing, client)

	ev := testEvent(t)
	_ = backing.Create(ctx, ev)

	// no redis expectations set: a cache access would fail the test
	events, total, err := repo.List(ctx, ListFilter{OrganizerID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
