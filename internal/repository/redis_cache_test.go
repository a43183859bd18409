package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

func newTestCache(t *testing.T) (*RedisCacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCacheRepositoryWithClient(client, logger.NewNop()), mr
}

func TestSubscriptionCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	sub := &domain.Subscription{
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		PlanID:    uuid.NewString(),
		PlanName:  "Monthly",
	}

	require.NoError(t, cache.CacheSubscription(ctx, sub))

	got, err := cache.GetCachedSubscription(ctx, sub.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sub.UserID, got.UserID)
	assert.Equal(t, sub.PlanName, got.PlanName)
	assert.True(t, sub.ExpiresAt.Equal(got.ExpiresAt))
}

func TestSubscriptionCacheMissReturnsNil(t *testing.T) {
	cache, _ := newTestCache(t)

	got, err := cache.GetCachedSubscription(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSubscriptionCacheTTLClampedToExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	// До истечения подписки меньше, чем стандартный TTL кеша
	sub := &domain.Subscription{
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(30 * time.Second),
	}
	require.NoError(t, cache.CacheSubscription(ctx, sub))

	key := "subscription:" + sub.UserID.String()
	ttl := mr.TTL(key)
	assert.LessOrEqual(t, ttl, 30*time.Second)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSubscriptionCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	sub := &domain.Subscription{UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, cache.CacheSubscription(ctx, sub))
	require.NoError(t, cache.InvalidateSubscriptionCache(ctx, sub.UserID))

	got, err := cache.GetCachedSubscription(ctx, sub.UserID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActivePlansCache(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	plans := []domain.Plan{
		{ID: uuid.New(), Name: "Monthly", DurationSeconds: 2592000, Status: domain.PlanStatusActive},
		{ID: uuid.New(), Name: "Yearly", DurationSeconds: 31536000, Status: domain.PlanStatusActive},
	}

	// Пустой кеш отдает nil без ошибки
	got, err := cache.GetCachedActivePlans(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.CacheActivePlans(ctx, plans))

	got, err = cache.GetCachedActivePlans(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Monthly", got[0].Name)

	require.NoError(t, cache.InvalidateActivePlansCache(ctx))

	got, err = cache.GetCachedActivePlans(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
