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

// postgresTaxonomyRepo реализует TaxonomyRepository для PostgreSQL.
type postgresTaxonomyRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresTaxonomyRepository создает репозиторий таксономии для PostgreSQL.
func NewPostgresTaxonomyRepository(db *sqlx.DB, log *logger.Logger) TaxonomyRepository {
	return &postgresTaxonomyRepo{db: db, log: log}
}

const categoryColumns = `id, name, slug, description, display_order, is_active, video_count, created_at, updated_at`

// CreateCategory сохраняет новую категорию.
func (r *postgresTaxonomyRepo) CreateCategory(ctx context.Context, category *domain.Category) error {
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `
        INSERT INTO categories (id, name, slug, description, display_order, is_active, created_at, updated_at)
        VALUES (:id, :name, :slug, :description, :display_order, :is_active, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		if isUniqueViolation(err) {
			r.log.Warnw("Category with this slug already exists", "slug", category.Slug)
			return ErrDuplicate
		}
		r.log.Errorw("Failed to create category in DB", "error", err, "slug", category.Slug)
		return fmt.Errorf("repository: failed to create category: %w", err)
	}

	return nil
}

// UpdateCategory обновляет категорию.
func (r *postgresTaxonomyRepo) UpdateCategory(ctx context.Context, category *domain.Category) error {
	category.UpdatedAt = time.Now()

	query := `
        UPDATE categories SET
            name = :name,
            slug = :slug,
            description = :description,
            display_order = :display_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, category)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.log.Errorw("Failed to update category in DB", "error", err, "categoryID", category.ID)
		return fmt.Errorf("repository: failed to update category: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteCategory удаляет категорию.
func (r *postgresTaxonomyRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.log.Errorw("Failed to delete category from DB", "error", err, "categoryID", id)
		return fmt.Errorf("repository: failed to delete category: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetCategoryBySlug возвращает категорию по slug.
func (r *postgresTaxonomyRepo) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`

	err := r.db.GetContext(ctx, &category, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to get category from DB", "error", err, "slug", slug)
		return nil, fmt.Errorf("repository: failed to get category: %w", err)
	}

	return &category, nil
}

// ListCategories возвращает категории в порядке display_order.
func (r *postgresTaxonomyRepo) ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY display_order, name`

	var categories []domain.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		r.log.Errorw("Failed to list categories", "error", err)
		return nil, fmt.Errorf("repository: failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	return categories, nil
}

// CreateTag сохраняет новый тег.
func (r *postgresTaxonomyRepo) CreateTag(ctx context.Context, tag *domain.Tag) error {
	tag.CreatedAt = time.Now()

	query := `
        INSERT INTO tags (id, name, slug, is_active, created_at)
        VALUES (:id, :name, :slug, :is_active, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, tag); err != nil {
		if isUniqueViolation(err) {
			r.log.Warnw("Tag with this slug already exists", "slug", tag.Slug)
			return ErrDuplicate
		}
		r.log.Errorw("Failed to create tag in DB", "error", err, "slug", tag.Slug)
		return fmt.Errorf("repository: failed to create tag: %w", err)
	}

	return nil
}

// DeleteTag удаляет тег.
func (r *postgresTaxonomyRepo) DeleteTag(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		r.log.Errorw("Failed to delete tag from DB", "error", err, "tagID", id)
		return fmt.Errorf("repository: failed to delete tag: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListTags возвращает теги по убыванию использования.
func (r *postgresTaxonomyRepo) ListTags(ctx context.Context, limit int) ([]domain.Tag, error) {
	var tags []domain.Tag
	query := `
        SELECT id, name, slug, is_active, video_count, created_at
        FROM tags
        WHERE is_active
        ORDER BY video_count DESC, name
        LIMIT $1`

	if err := r.db.SelectContext(ctx, &tags, query, limit); err != nil {
		r.log.Errorw("Failed to list tags", "error", err)
		return nil, fmt.Errorf("repository: failed to list tags: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}

	return tags, nil
}
