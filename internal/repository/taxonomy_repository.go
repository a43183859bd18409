package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
)

// TaxonomyRepository хранилище категорий и тегов каталога.
type TaxonomyRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// ListCategories возвращает категории в порядке display_order.
	// Неактивные включаются только при includeInactive.
	ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error)

	CreateTag(ctx context.Context, tag *domain.Tag) error
	DeleteTag(ctx context.Context, id uuid.UUID) error

	// ListTags возвращает теги по убыванию использования.
	ListTags(ctx context.Context, limit int) ([]domain.Tag, error)
}
