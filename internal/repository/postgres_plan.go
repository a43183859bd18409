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

// postgresPlanRepo реализует PlanRepository для PostgreSQL.
type postgresPlanRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresPlanRepository создает репозиторий каталога планов для PostgreSQL.
func NewPostgresPlanRepository(db *sqlx.DB, log *logger.Logger) PlanRepository {
	return &postgresPlanRepo{db: db, log: log}
}

const planColumns = `id, name, legacy_key, duration_seconds, price, currency, tags, description, status, created_by, created_at, updated_at`

// Resolve находит активный план: сначала по UUID, затем по legacy-ключу
// или имени. Ключи, не являющиеся UUID, сразу идут вторым путем.
func (r *postgresPlanRepo) Resolve(ctx context.Context, key string) (*domain.Plan, error) {
	if id, err := uuid.Parse(key); err == nil {
		var plan domain.Plan
		query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1 AND status = 'active'`
		err := r.db.GetContext(ctx, &plan, query, id)
		if err == nil {
			return &plan, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			r.log.Errorw("Failed to resolve plan by ID", "error", err, "planID", key)
			return nil, fmt.Errorf("repository: failed to resolve plan: %w", err)
		}
	}

	var plan domain.Plan
	query := `
        SELECT ` + planColumns + `
        FROM subscription_plans
        WHERE (legacy_key = $1 OR name = $1) AND status = 'active'
        ORDER BY created_at
        LIMIT 1`

	err := r.db.GetContext(ctx, &plan, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugw("Plan not found", "key", key)
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to resolve plan by key", "error", err, "key", key)
		return nil, fmt.Errorf("repository: failed to resolve plan: %w", err)
	}

	return &plan, nil
}

// GetByID возвращает план по UUID независимо от статуса.
func (r *postgresPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	var plan domain.Plan
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`

	err := r.db.GetContext(ctx, &plan, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to get plan by ID", "error", err, "planID", id)
		return nil, fmt.Errorf("repository: failed to get plan: %w", err)
	}

	return &plan, nil
}

// ListActive возвращает активные планы, отсортированные по длительности.
func (r *postgresPlanRepo) ListActive(ctx context.Context) ([]domain.Plan, error) {
	var plans []domain.Plan
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE status = 'active' ORDER BY duration_seconds`

	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		r.log.Errorw("Failed to list active plans", "error", err)
		return nil, fmt.Errorf("repository: failed to list active plans: %w", err)
	}
	if plans == nil {
		plans = []domain.Plan{}
	}

	return plans, nil
}

// ListAll возвращает все планы для админ-панели.
func (r *postgresPlanRepo) ListAll(ctx context.Context) ([]domain.Plan, error) {
	var plans []domain.Plan
	query := `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		r.log.Errorw("Failed to list plans", "error", err)
		return nil, fmt.Errorf("repository: failed to list plans: %w", err)
	}
	if plans == nil {
		plans = []domain.Plan{}
	}

	return plans, nil
}

// Create сохраняет новый план.
func (r *postgresPlanRepo) Create(ctx context.Context, plan *domain.Plan) error {
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	query := `
        INSERT INTO subscription_plans (
            id, name, legacy_key, duration_seconds, price, currency,
            tags, description, status, created_by, created_at, updated_at
        ) VALUES (
            :id, :name, :legacy_key, :duration_seconds, :price, :currency,
            :tags, :description, :status, :created_by, :created_at, :updated_at
        )`

	_, err := r.db.NamedExecContext(ctx, query, plan)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnw("Plan with this name already exists", "name", plan.Name)
			return ErrDuplicate
		}
		r.log.Errorw("Failed to create plan in DB", "error", err, "name", plan.Name)
		return fmt.Errorf("repository: failed to create plan: %w", err)
	}

	r.log.Debugw("Plan created", "planID", plan.ID, "name", plan.Name)
	return nil
}

// Update обновляет существующий план. created_at и created_by не меняются.
func (r *postgresPlanRepo) Update(ctx context.Context, plan *domain.Plan) error {
	plan.UpdatedAt = time.Now()

	query := `
        UPDATE subscription_plans SET
            name = :name,
            legacy_key = :legacy_key,
            duration_seconds = :duration_seconds,
            price = :price,
            currency = :currency,
            tags = :tags,
            description = :description,
            status = :status,
            updated_at = :updated_at
        WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, plan)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.log.Errorw("Failed to update plan in DB", "error", err, "planID", plan.ID)
		return fmt.Errorf("repository: failed to update plan: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Deactivate переводит план в статус inactive.
func (r *postgresPlanRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE subscription_plans SET status = 'inactive', updated_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.log.Errorw("Failed to deactivate plan", "error", err, "planID", id)
		return fmt.Errorf("repository: failed to deactivate plan: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	r.log.Debugw("Plan deactivated", "planID", id)
	return nil
}

// Stats возвращает агрегированную статистику каталога планов.
func (r *postgresPlanRepo) Stats(ctx context.Context) (*domain.PlanStats, error) {
	var stats domain.PlanStats
	query := `
        SELECT
            COUNT(*)                                                    AS total_plans,
            COUNT(*) FILTER (WHERE status = 'active')                   AS active_plans,
            COUNT(*) FILTER (WHERE status = 'inactive')                 AS inactive_plans,
            COALESCE(SUM(price) FILTER (WHERE status = 'active'), 0)    AS active_plans_price_total
        FROM subscription_plans`

	err := r.db.QueryRowxContext(ctx, query).Scan(
		&stats.TotalPlans, &stats.ActivePlans, &stats.InactivePlans, &stats.ActivePlansPrice,
	)
	if err != nil {
		r.log.Errorw("Failed to get plan stats", "error", err)
		return nil, fmt.Errorf("repository: failed to get plan stats: %w", err)
	}

	return &stats, nil
}
