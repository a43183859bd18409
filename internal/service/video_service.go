package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/integration/cloudinary"
	"github.com/videohub/videohub-api/internal/kafka"
	"github.com/videohub/videohub-api/internal/metrics"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"
)

// VideoService интерфейс сервиса каталога видео.
type VideoService interface {
	// UploadMedia загружает файл на медиа-хост и возвращает результат.
	UploadMedia(ctx context.Context, file io.Reader, filename, resourceType string) (*cloudinary.UploadResult, error)

	Create(ctx context.Context, uploaderID uuid.UUID, req domain.VideoCreateRequest) (*domain.Video, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	Update(ctx context.Context, principal *domain.Principal, id uuid.UUID, req domain.VideoUpdateRequest) (*domain.Video, error)
	Delete(ctx context.Context, principal *domain.Principal, id uuid.UUID) error

	List(ctx context.Context, q domain.VideoListQuery) ([]domain.Video, error)
	ListHot(ctx context.Context, skip, limit int) ([]domain.Video, error)
	ListTrending(ctx context.Context, skip, limit int) ([]domain.Video, error)
	ListFeatured(ctx context.Context, skip, limit int) ([]domain.Video, error)
	ListByUploader(ctx context.Context, uploaderID uuid.UUID, skip, limit int) ([]domain.Video, error)
	ListFeed(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error)
	ListRecommended(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error)

	// RecordView регистрирует просмотр; userID nil для анонимных.
	RecordView(ctx context.Context, videoID uuid.UUID, userID *uuid.UUID, watchDuration float64) error

	ViewStats(ctx context.Context, videoID uuid.UUID) (*domain.VideoViewStats, error)
	WatchHistory(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.WatchHistoryEntry, error)
}

type videoService struct {
	videoRepo repository.VideoRepository
	mediaHost cloudinary.MediaHost
	producer  kafka.Producer
	metrics   metrics.PlatformMetrics
	log       *logger.Logger
	now       func() time.Time
}

// NewVideoService создает новый сервис видео.
func NewVideoService(
	videoRepo repository.VideoRepository,
	mediaHost cloudinary.MediaHost,
	producer kafka.Producer,
	platformMetrics metrics.PlatformMetrics,
	log *logger.Logger,
) VideoService {
	return &videoService{
		videoRepo: videoRepo,
		mediaHost: mediaHost,
		producer:  producer,
		metrics:   platformMetrics,
		log:       log,
		now:       time.Now,
	}
}

// UploadMedia загружает файл на медиа-хост. Ошибка загрузки фатальна
// для операции: без файла записи в каталоге делать нечего.
func (s *videoService) UploadMedia(ctx context.Context, file io.Reader, filename, resourceType string) (*cloudinary.UploadResult, error) {
	result, err := s.mediaHost.Upload(ctx, file, filename, resourceType)
	if err != nil {
		return nil, fmt.Errorf("service: failed to upload media: %w", err)
	}
	return result, nil
}

// Create сохраняет запись видео. Видео сразу публикуется: обработка
// файла уже выполнена медиа-хостом на загрузке.
func (s *videoService) Create(ctx context.Context, uploaderID uuid.UUID, req domain.VideoCreateRequest) (*domain.Video, error) {
	now := s.now()
	video := &domain.Video{
		ID:           uuid.New(),
		UploaderID:   uploaderID,
		Title:        req.Title,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		Width:        req.Width,
		Height:       req.Height,
		Status:       domain.VideoStatusPublished,
		Category:     req.Category,
		Tags:         domain.StringList(req.Tags),
		PublishedAt:  &now,
	}
	if video.Tags == nil {
		video.Tags = domain.StringList{}
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("service: failed to create video: %w", err)
	}

	s.metrics.IncVideoUploaded(video.Category)
	if err := s.producer.PublishVideoEvent(ctx, kafka.TopicVideoPublished, video); err != nil {
		s.log.Warnw("Failed to publish video event", "error", err, "videoID", video.ID)
	}

	s.log.Infow("Video created", "videoID", video.ID, "uploaderID", uploaderID)
	return video, nil
}

// Get возвращает видео по идентификатору.
func (s *videoService) Get(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("service: failed to get video: %w", err)
	}
	return video, nil
}

// Update обновляет видео. Разрешено автору и администраторам; статус и
// флаг is_featured меняют только администраторы.
func (s *videoService) Update(ctx context.Context, principal *domain.Principal, id uuid.UUID, req domain.VideoUpdateRequest) (*domain.Video, error) {
	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if video.UploaderID != principal.UserID && !principal.IsAdmin {
		return nil, domain.ErrUnauthorized
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.ThumbnailURL != nil {
		old := video.ThumbnailURL
		video.ThumbnailURL = *req.ThumbnailURL
		if old != "" && old != video.ThumbnailURL {
			s.discardMediaAsset(ctx, old, "image")
		}
	}
	if req.Category != nil {
		video.Category = *req.Category
	}
	if req.Tags != nil {
		video.Tags = domain.StringList(*req.Tags)
	}
	if req.Status != nil {
		if !principal.IsAdmin {
			return nil, domain.ErrUnauthorized
		}
		newStatus := domain.VideoStatus(*req.Status)
		if newStatus == domain.VideoStatusPublished && video.PublishedAt == nil {
			now := s.now()
			video.PublishedAt = &now
		}
		video.Status = newStatus
	}
	if req.IsFeatured != nil {
		if !principal.IsAdmin {
			return nil, domain.ErrUnauthorized
		}
		video.IsFeatured = *req.IsFeatured
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("service: failed to update video: %w", err)
	}

	return video, nil
}

// Delete удаляет видео и его файлы с медиа-хоста.
func (s *videoService) Delete(ctx context.Context, principal *domain.Principal, id uuid.UUID) error {
	video, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if video.UploaderID != principal.UserID && !principal.IsAdmin {
		return domain.ErrUnauthorized
	}

	if err := s.videoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrVideoNotFound
		}
		return fmt.Errorf("service: failed to delete video: %w", err)
	}

	s.discardMediaAsset(ctx, video.VideoURL, "video")
	s.discardMediaAsset(ctx, video.ThumbnailURL, "image")

	if err := s.producer.PublishVideoEvent(ctx, kafka.TopicVideoDeleted, video); err != nil {
		s.log.Warnw("Failed to publish video deletion event", "error", err, "videoID", id)
	}

	s.log.Infow("Video deleted", "videoID", id, "by", principal.UserID)
	return nil
}

// List возвращает страницу опубликованных видео.
func (s *videoService) List(ctx context.Context, q domain.VideoListQuery) ([]domain.Video, error) {
	normalizePage(&q.Skip, &q.Limit)
	videos, err := s.videoRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list videos: %w", err)
	}
	return videos, nil
}

// ListHot возвращает видео по убыванию вовлеченности.
func (s *videoService) ListHot(ctx context.Context, skip, limit int) ([]domain.Video, error) {
	normalizePage(&skip, &limit)
	videos, err := s.videoRepo.ListHot(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list hot videos: %w", err)
	}
	return videos, nil
}

// trendingWindow горизонт выборки трендовых видео.
const trendingWindow = 7 * 24 * time.Hour

// ListTrending возвращает видео недели по убыванию просмотров.
func (s *videoService) ListTrending(ctx context.Context, skip, limit int) ([]domain.Video, error) {
	normalizePage(&skip, &limit)
	videos, err := s.videoRepo.ListTrending(ctx, s.now().Add(-trendingWindow), skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list trending videos: %w", err)
	}
	return videos, nil
}

// ListFeatured возвращает избранные видео.
func (s *videoService) ListFeatured(ctx context.Context, skip, limit int) ([]domain.Video, error) {
	normalizePage(&skip, &limit)
	videos, err := s.videoRepo.ListFeatured(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list featured videos: %w", err)
	}
	return videos, nil
}

// ListByUploader возвращает видео пользователя.
func (s *videoService) ListByUploader(ctx context.Context, uploaderID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	normalizePage(&skip, &limit)
	videos, err := s.videoRepo.ListByUploader(ctx, uploaderID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list uploader videos: %w", err)
	}
	return videos, nil
}

// ListFeed возвращает ленту подписок пользователя.
func (s *videoService) ListFeed(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	normalizePage(&skip, &limit)
	videos, err := s.videoRepo.ListFeed(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list feed: %w", err)
	}
	return videos, nil
}

// ListRecommended возвращает рекомендации по истории просмотров.
func (s *videoService) ListRecommended(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	normalizePage(&skip, &limit)
	videos, err := s.videoRepo.ListRecommended(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list recommended videos: %w", err)
	}
	return videos, nil
}

// RecordView регистрирует просмотр видео.
func (s *videoService) RecordView(ctx context.Context, videoID uuid.UUID, userID *uuid.UUID, watchDuration float64) error {
	video, err := s.Get(ctx, videoID)
	if err != nil {
		return err
	}

	completion := 0.0
	if video.Duration > 0 {
		completion = watchDuration / video.Duration * 100
		if completion > 100 {
			completion = 100
		}
	}

	view := &domain.ViewRecord{
		ID:                   uuid.New(),
		VideoID:              videoID,
		UserID:               userID,
		WatchDuration:        watchDuration,
		CompletionPercentage: completion,
		IsCompleted:          completion >= 90,
		StartedAt:            s.now(),
	}

	if err := s.videoRepo.RecordView(ctx, view); err != nil {
		return fmt.Errorf("service: failed to record view: %w", err)
	}

	s.metrics.IncVideoViewed(video.Category)
	return nil
}

// ViewStats возвращает статистику просмотров видео.
func (s *videoService) ViewStats(ctx context.Context, videoID uuid.UUID) (*domain.VideoViewStats, error) {
	stats, err := s.videoRepo.ViewStats(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get view stats: %w", err)
	}
	return stats, nil
}

// WatchHistory возвращает историю просмотров пользователя.
func (s *videoService) WatchHistory(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.WatchHistoryEntry, error) {
	normalizePage(&skip, &limit)
	entries, err := s.videoRepo.WatchHistory(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watch history: %w", err)
	}
	return entries, nil
}

func (s *videoService) discardMediaAsset(ctx context.Context, rawURL, resourceType string) {
	if rawURL == "" {
		return
	}
	publicID := s.mediaHost.ExtractPublicID(rawURL)
	if publicID == "" {
		return
	}
	if err := s.mediaHost.Destroy(ctx, publicID, resourceType); err != nil {
		s.log.Warnw("Failed to destroy media asset", "error", err, "publicID", publicID)
	}
}

// normalizePage приводит параметры пагинации к допустимым значениям.
func normalizePage(skip, limit *int) {
	if *skip < 0 {
		*skip = 0
	}
	if *limit <= 0 {
		*limit = 20
	}
	if *limit > 100 {
		*limit = 100
	}
}
