package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

func planRows(plan domain.Plan) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "legacy_key", "duration_seconds", "price", "currency",
		"tags", "description", "status", "created_by", "created_at", "updated_at",
	}).AddRow(
		plan.ID, plan.Name, plan.LegacyKey, plan.DurationSeconds, plan.Price, plan.Currency,
		[]byte(`["loved"]`), plan.Description, plan.Status, plan.CreatedBy, plan.CreatedAt, plan.UpdatedAt,
	)
}

func monthlyPlanRow() domain.Plan {
	now := time.Now().UTC()
	return domain.Plan{
		ID:              uuid.New(),
		Name:            "Monthly",
		LegacyKey:       "monthly",
		DurationSeconds: 30 * 24 * 3600,
		Price:           9.99,
		Currency:        "USD",
		Status:          domain.PlanStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestPostgresPlanResolveByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlanRepository(db, logger.NewNop())

	expected := monthlyPlanRow()
	mock.ExpectQuery(`SELECT .+ FROM subscription_plans WHERE id = \$1 AND status = 'active'`).
		WithArgs(expected.ID).
		WillReturnRows(planRows(expected))

	plan, err := repo.Resolve(context.Background(), expected.ID.String())
	require.NoError(t, err)
	assert.Equal(t, expected.ID, plan.ID)
	assert.Equal(t, "Monthly", plan.Name)
	assert.Equal(t, domain.StringList{"loved"}, plan.Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlanResolveByLegacyKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlanRepository(db, logger.NewNop())

	// Не-UUID ключ сразу уходит во второй запрос: по id поиска нет
	expected := monthlyPlanRow()
	mock.ExpectQuery(`SELECT .+ FROM subscription_plans\s+WHERE \(legacy_key = \$1 OR name = \$1\) AND status = 'active'\s+ORDER BY created_at\s+LIMIT 1`).
		WithArgs("monthly").
		WillReturnRows(planRows(expected))

	plan, err := repo.Resolve(context.Background(), "monthly")
	require.NoError(t, err)
	assert.Equal(t, expected.ID, plan.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlanResolveFallsBackOnUnknownID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlanRepository(db, logger.NewNop())

	// UUID без активного плана пробует второй путь и только потом сдается
	key := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM subscription_plans WHERE id = \$1 AND status = 'active'`).
		WithArgs(key).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM subscription_plans\s+WHERE \(legacy_key = \$1 OR name = \$1\) AND status = 'active'`).
		WithArgs(key.String()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Resolve(context.Background(), key.String())
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlanResolveExcludesInactive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlanRepository(db, logger.NewNop())

	// Оба запроса фильтруют по status = 'active': деактивированный план
	// не находится ни по ключу, ни по имени
	mock.ExpectQuery(`SELECT .+ FROM subscription_plans\s+WHERE \(legacy_key = \$1 OR name = \$1\) AND status = 'active'`).
		WithArgs("yearly").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Resolve(context.Background(), "yearly")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
