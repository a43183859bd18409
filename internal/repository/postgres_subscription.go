package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

// postgresSubscriptionRepo реализует SubscriptionRepository для PostgreSQL.
type postgresSubscriptionRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresSubscriptionRepository создает репозиторий подписок для PostgreSQL.
func NewPostgresSubscriptionRepository(db *sqlx.DB, log *logger.Logger) SubscriptionRepository {
	return &postgresSubscriptionRepo{db: db, log: log}
}

const subscriptionColumns = `user_id, expires_at, plan_id, plan_name, created_at, updated_at`

// GetByUserID возвращает запись о подписке пользователя.
func (r *postgresSubscriptionRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	query := `SELECT ` + subscriptionColumns + ` FROM time_subscriptions WHERE user_id = $1`

	err := r.db.GetContext(ctx, &sub, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugw("Subscription not found", "userID", userID)
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to get subscription from DB", "error", err, "userID", userID)
		return nil, fmt.Errorf("repository: failed to get subscription: %w", err)
	}

	return &sub, nil
}

// Subscribe создает или продлевает подписку одним атомарным запросом.
// GREATEST гарантирует, что при гонке двух продлений ни одно оплаченное
// время не потеряется: каждое продление добавляет свою длительность поверх
// результата предыдущего, а истекшая подписка начинается заново от now.
// created_at выставляется только при первой вставке.
func (r *postgresSubscriptionRepo) Subscribe(ctx context.Context, userID uuid.UUID, planID, planName string, durationSeconds int64, now time.Time) (*domain.Subscription, error) {
	query := `
        INSERT INTO time_subscriptions (user_id, expires_at, plan_id, plan_name, created_at, updated_at)
        VALUES ($1, $2 + make_interval(secs => $3), $4, $5, $2, $2)
        ON CONFLICT (user_id) DO UPDATE SET
            expires_at = GREATEST(time_subscriptions.expires_at, $2) + make_interval(secs => $3),
            plan_id    = EXCLUDED.plan_id,
            plan_name  = EXCLUDED.plan_name,
            updated_at = $2
        RETURNING ` + subscriptionColumns

	var sub domain.Subscription
	err := r.db.GetContext(ctx, &sub, query, userID, now, durationSeconds, planID, planName)
	if err != nil {
		r.log.Errorw("Failed to upsert subscription in DB", "error", err, "userID", userID, "planID", planID)
		return nil, fmt.Errorf("repository: failed to subscribe: %w", err)
	}

	r.log.Debugw("Subscription upserted", "userID", userID, "planID", planID, "expiresAt", sub.ExpiresAt)
	return &sub, nil
}

// SetExpiry напрямую задает срок подписки. Создает запись, если ее нет;
// поля плана существующей записи не трогает.
func (r *postgresSubscriptionRepo) SetExpiry(ctx context.Context, userID uuid.UUID, expiresAt time.Time, now time.Time) (*domain.Subscription, error) {
	query := `
        INSERT INTO time_subscriptions (user_id, expires_at, plan_id, plan_name, created_at, updated_at)
        VALUES ($1, $2, '', '', $3, $3)
        ON CONFLICT (user_id) DO UPDATE SET
            expires_at = EXCLUDED.expires_at,
            updated_at = EXCLUDED.updated_at
        RETURNING ` + subscriptionColumns

	var sub domain.Subscription
	err := r.db.GetContext(ctx, &sub, query, userID, expiresAt, now)
	if err != nil {
		r.log.Errorw("Failed to set subscription expiry in DB", "error", err, "userID", userID)
		return nil, fmt.Errorf("repository: failed to set subscription expiry: %w", err)
	}

	return &sub, nil
}

// ExtendByDays продлевает существующую подписку на days дней от максимума
// из текущего expires_at и now. Подписки без записи не продлеваются.
func (r *postgresSubscriptionRepo) ExtendByDays(ctx context.Context, userID uuid.UUID, days int, now time.Time) (*domain.Subscription, error) {
	query := `
        UPDATE time_subscriptions SET
            expires_at = GREATEST(expires_at, $2) + make_interval(days => $3),
            updated_at = $2
        WHERE user_id = $1
        RETURNING ` + subscriptionColumns

	var sub domain.Subscription
	err := r.db.GetContext(ctx, &sub, query, userID, now, days)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnw("Cannot extend: subscription not found", "userID", userID)
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to extend subscription in DB", "error", err, "userID", userID, "days", days)
		return nil, fmt.Errorf("repository: failed to extend subscription: %w", err)
	}

	r.log.Debugw("Subscription extended", "userID", userID, "days", days, "expiresAt", sub.ExpiresAt)
	return &sub, nil
}
