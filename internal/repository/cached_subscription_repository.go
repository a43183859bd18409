package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

// CachedSubscriptionRepository реализует SubscriptionRepository с кешированием
type CachedSubscriptionRepository struct {
	repo  SubscriptionRepository
	cache *RedisCacheRepository
	log   *logger.Logger
}

// NewCachedSubscriptionRepository создает новый репозиторий с кешированием
func NewCachedSubscriptionRepository(
	repo SubscriptionRepository,
	cache *RedisCacheRepository,
	log *logger.Logger,
) SubscriptionRepository {
	return &CachedSubscriptionRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetByUserID получает подписку (сначала из кеша, потом из БД)
func (r *CachedSubscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	// Пытаемся получить из кеша
	cachedSub, err := r.cache.GetCachedSubscription(ctx, userID)
	if err != nil {
		r.log.Warnw("Error getting subscription from cache", "error", err, "userID", userID)
		// Продолжаем выполнение при ошибке кеша
	}

	// Если нашли в кеше, возвращаем
	if cachedSub != nil {
		r.log.Debugw("Subscription found in cache", "userID", userID)
		return cachedSub, nil
	}

	// Если не нашли в кеше, ищем в БД
	sub, err := r.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Кешируем найденную подписку
	if sub != nil {
		if err := r.cache.CacheSubscription(ctx, sub); err != nil {
			r.log.Warnw("Failed to cache subscription after fetching", "error", err, "userID", userID)
		}
	}

	return sub, nil
}

// Subscribe продлевает подписку в БД и обновляет кеш
func (r *CachedSubscriptionRepository) Subscribe(ctx context.Context, userID uuid.UUID, planID, planName string, durationSeconds int64, now time.Time) (*domain.Subscription, error) {
	sub, err := r.repo.Subscribe(ctx, userID, planID, planName, durationSeconds, now)
	if err != nil {
		return nil, err
	}

	if err := r.cache.CacheSubscription(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after subscribe", "error", err, "userID", userID)
		// Продолжаем выполнение, несмотря на ошибку кеширования
	}

	return sub, nil
}

// SetExpiry задает срок в БД и обновляет кеш
func (r *CachedSubscriptionRepository) SetExpiry(ctx context.Context, userID uuid.UUID, expiresAt time.Time, now time.Time) (*domain.Subscription, error) {
	sub, err := r.repo.SetExpiry(ctx, userID, expiresAt, now)
	if err != nil {
		return nil, err
	}

	if err := r.cache.CacheSubscription(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after expiry update", "error", err, "userID", userID)
	}

	return sub, nil
}

// ExtendByDays продлевает подписку в БД и обновляет кеш
func (r *CachedSubscriptionRepository) ExtendByDays(ctx context.Context, userID uuid.UUID, days int, now time.Time) (*domain.Subscription, error) {
	sub, err := r.repo.ExtendByDays(ctx, userID, days, now)
	if err != nil {
		return nil, err
	}

	if err := r.cache.CacheSubscription(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after extension", "error", err, "userID", userID)
	}

	return sub, nil
}
