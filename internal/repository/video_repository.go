package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
)

// VideoRepository хранилище каталога видео.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	Update(ctx context.Context, video *domain.Video) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает страницу опубликованных видео с фильтрами.
	List(ctx context.Context, q domain.VideoListQuery) ([]domain.Video, error)

	// ListByUploader возвращает видео пользователя, новые первыми.
	ListByUploader(ctx context.Context, uploaderID uuid.UUID, skip, limit int) ([]domain.Video, error)

	// ListHot возвращает опубликованные видео по убыванию вовлеченности:
	// likes + 2*comments + 3*shares.
	ListHot(ctx context.Context, skip, limit int) ([]domain.Video, error)

	// ListTrending возвращает видео, опубликованные за последние дни,
	// по убыванию просмотров.
	ListTrending(ctx context.Context, since time.Time, skip, limit int) ([]domain.Video, error)

	// ListRecommended возвращает непросмотренные видео из категорий,
	// которые пользователь уже смотрел.
	ListRecommended(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error)

	// ListFeatured возвращает избранные видео.
	ListFeatured(ctx context.Context, skip, limit int) ([]domain.Video, error)

	// ListFeed возвращает видео авторов, на которых подписан пользователь.
	ListFeed(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error)

	// RecordView сохраняет просмотр, инкрементирует счетчик видео и
	// обновляет историю просмотров для аутентифицированных пользователей.
	RecordView(ctx context.Context, view *domain.ViewRecord) error

	// ViewStats возвращает агрегированную статистику просмотров видео.
	ViewStats(ctx context.Context, videoID uuid.UUID) (*domain.VideoViewStats, error)

	// WatchHistory возвращает историю просмотров пользователя.
	WatchHistory(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.WatchHistoryEntry, error)
}
