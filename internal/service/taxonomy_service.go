package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"
)

// TaxonomyService интерфейс сервиса категорий и тегов.
type TaxonomyService interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	CreateCategory(ctx context.Context, req domain.CategoryRequest) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req domain.CategoryRequest) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListTags(ctx context.Context, limit int) ([]domain.Tag, error)
	CreateTag(ctx context.Context, req domain.TagRequest) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
}

type taxonomyService struct {
	taxonomyRepo repository.TaxonomyRepository
	log          *logger.Logger
}

// NewTaxonomyService создает новый сервис таксономии.
func NewTaxonomyService(taxonomyRepo repository.TaxonomyRepository, log *logger.Logger) TaxonomyService {
	return &taxonomyService{
		taxonomyRepo: taxonomyRepo,
		log:          log,
	}
}

// ListCategories возвращает категории каталога.
func (s *taxonomyService) ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	categories, err := s.taxonomyRepo.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategoryBySlug возвращает категорию по slug.
func (s *taxonomyService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.taxonomyRepo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("category", slug)
		}
		return nil, fmt.Errorf("service: failed to get category: %w", err)
	}
	return category, nil
}

// CreateCategory создает новую категорию.
func (s *taxonomyService) CreateCategory(ctx context.Context, req domain.CategoryRequest) (*domain.Category, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := &domain.Category{
		ID:           uuid.New(),
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     isActive,
	}

	if err := s.taxonomyRepo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}

	s.log.Infow("Category created", "categoryID", category.ID, "slug", category.Slug)
	return category, nil
}

// UpdateCategory обновляет категорию.
func (s *taxonomyService) UpdateCategory(ctx context.Context, id uuid.UUID, req domain.CategoryRequest) (*domain.Category, error) {
	category := &domain.Category{
		ID:           id,
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.taxonomyRepo.UpdateCategory(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.NewNotFoundError("category", id.String())
		case errors.Is(err, repository.ErrDuplicate):
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("service: failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory удаляет категорию.
func (s *taxonomyService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.taxonomyRepo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError("category", id.String())
		}
		return fmt.Errorf("service: failed to delete category: %w", err)
	}
	return nil
}

// ListTags возвращает популярные теги.
func (s *taxonomyService) ListTags(ctx context.Context, limit int) ([]domain.Tag, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	tags, err := s.taxonomyRepo.ListTags(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list tags: %w", err)
	}
	return tags, nil
}

// CreateTag создает новый тег.
func (s *taxonomyService) CreateTag(ctx context.Context, req domain.TagRequest) (*domain.Tag, error) {
	tag := &domain.Tag{
		ID:       uuid.New(),
		Name:     req.Name,
		Slug:     req.Slug,
		IsActive: true,
	}

	if err := s.taxonomyRepo.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("service: failed to create tag: %w", err)
	}

	return tag, nil
}

// DeleteTag удаляет тег.
func (s *taxonomyService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if err := s.taxonomyRepo.DeleteTag(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError("tag", id.String())
		}
		return fmt.Errorf("service: failed to delete tag: %w", err)
	}
	return nil
}
