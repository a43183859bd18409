package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func subscriptionRows(sub domain.Subscription) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "expires_at", "plan_id", "plan_name", "created_at", "updated_at"}).
		AddRow(sub.UserID, sub.ExpiresAt, sub.PlanID, sub.PlanName, sub.CreatedAt, sub.UpdatedAt)
}

func TestPostgresSubscriptionGetByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubscriptionRepository(db, logger.NewNop())

	userID := uuid.New()
	now := time.Now().UTC()
	expected := domain.Subscription{
		UserID:    userID,
		ExpiresAt: now.Add(time.Hour),
		PlanID:    uuid.NewString(),
		PlanName:  "Monthly",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery(`SELECT user_id, expires_at, plan_id, plan_name, created_at, updated_at FROM time_subscriptions WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(subscriptionRows(expected))

	sub, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, expected.PlanName, sub.PlanName)
	assert.True(t, expected.ExpiresAt.Equal(sub.ExpiresAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubscriptionGetByUserIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubscriptionRepository(db, logger.NewNop())

	userID := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM time_subscriptions WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserID(context.Background(), userID)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubscriptionSubscribeUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubscriptionRepository(db, logger.NewNop())

	userID := uuid.New()
	planID := uuid.NewString()
	now := time.Now().UTC()
	returned := domain.Subscription{
		UserID:    userID,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
		PlanID:    planID,
		PlanName:  "Monthly",
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Апсерт с GREATEST: гонка продлений не теряет оплаченное время
	mock.ExpectQuery(`INSERT INTO time_subscriptions .+ ON CONFLICT \(user_id\) DO UPDATE SET\s+expires_at = GREATEST\(time_subscriptions\.expires_at, \$2\) \+ make_interval\(secs => \$3\)`).
		WithArgs(userID, now, int64(2592000), planID, "Monthly").
		WillReturnRows(subscriptionRows(returned))

	sub, err := repo.Subscribe(context.Background(), userID, planID, "Monthly", 2592000, now)
	require.NoError(t, err)
	assert.True(t, returned.ExpiresAt.Equal(sub.ExpiresAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubscriptionSetExpiry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubscriptionRepository(db, logger.NewNop())

	userID := uuid.New()
	now := time.Now().UTC()
	target := now.Add(90 * 24 * time.Hour)
	returned := domain.Subscription{UserID: userID, ExpiresAt: target, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`INSERT INTO time_subscriptions .+ ON CONFLICT \(user_id\) DO UPDATE SET\s+expires_at = EXCLUDED\.expires_at`).
		WithArgs(userID, target, now).
		WillReturnRows(subscriptionRows(returned))

	sub, err := repo.SetExpiry(context.Background(), userID, target, now)
	require.NoError(t, err)
	assert.True(t, target.Equal(sub.ExpiresAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubscriptionExtendByDays(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresSubscriptionRepository(db, logger.NewNop())

	userID := uuid.New()
	now := time.Now().UTC()

	t.Run("extends existing record", func(t *testing.T) {
		returned := domain.Subscription{UserID: userID, ExpiresAt: now.AddDate(0, 0, 7), UpdatedAt: now}

		mock.ExpectQuery(`UPDATE time_subscriptions SET\s+expires_at = GREATEST\(expires_at, \$2\) \+ make_interval\(days => \$3\)`).
			WithArgs(userID, now, 7).
			WillReturnRows(subscriptionRows(returned))

		sub, err := repo.ExtendByDays(context.Background(), userID, 7, now)
		require.NoError(t, err)
		assert.True(t, returned.ExpiresAt.Equal(sub.ExpiresAt))
	})

	t.Run("missing record", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE time_subscriptions SET`).
			WithArgs(userID, now, 7).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.ExtendByDays(context.Background(), userID, 7, now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
