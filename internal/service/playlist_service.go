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

// PlaylistService интерфейс сервиса плейлистов.
type PlaylistService interface {
	Create(ctx context.Context, userID uuid.UUID, req domain.PlaylistCreateRequest) (*domain.Playlist, error)

	// Get возвращает плейлист. Приватный плейлист видит только владелец.
	Get(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.Playlist, error)

	Update(ctx context.Context, principal *domain.Principal, id uuid.UUID, req domain.PlaylistUpdateRequest) (*domain.Playlist, error)
	Delete(ctx context.Context, principal *domain.Principal, id uuid.UUID) error
	ListByUser(ctx context.Context, principal *domain.Principal, userID uuid.UUID, skip, limit int) ([]domain.Playlist, error)

	AddVideo(ctx context.Context, principal *domain.Principal, playlistID, videoID uuid.UUID) error
	RemoveVideo(ctx context.Context, principal *domain.Principal, playlistID, videoID uuid.UUID) error
	Videos(ctx context.Context, principal *domain.Principal, playlistID uuid.UUID, skip, limit int) ([]domain.Video, error)
}

type playlistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
	log          *logger.Logger
}

// NewPlaylistService создает новый сервис плейлистов.
func NewPlaylistService(
	playlistRepo repository.PlaylistRepository,
	videoRepo repository.VideoRepository,
	log *logger.Logger,
) PlaylistService {
	return &playlistService{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		log:          log,
	}
}

// Create создает плейлист. Видимость по умолчанию — public.
func (s *playlistService) Create(ctx context.Context, userID uuid.UUID, req domain.PlaylistCreateRequest) (*domain.Playlist, error) {
	privacy := req.Privacy
	if privacy == "" {
		privacy = domain.PlaylistPrivacyPublic
	}

	playlist := &domain.Playlist{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Privacy:     privacy,
	}

	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, fmt.Errorf("service: failed to create playlist: %w", err)
	}

	return playlist, nil
}

// Get возвращает плейлист с учетом видимости.
func (s *playlistService) Get(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("playlist", id.String())
		}
		return nil, fmt.Errorf("service: failed to get playlist: %w", err)
	}

	if playlist.Privacy == domain.PlaylistPrivacyPrivate && !s.canView(principal, playlist) {
		// Приватный плейлист для посторонних неотличим от несуществующего
		return nil, domain.NewNotFoundError("playlist", id.String())
	}

	return playlist, nil
}

// Update обновляет плейлист. Разрешено только владельцу.
func (s *playlistService) Update(ctx context.Context, principal *domain.Principal, id uuid.UUID, req domain.PlaylistUpdateRequest) (*domain.Playlist, error) {
	playlist, err := s.getOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		playlist.Title = *req.Title
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.Privacy != nil {
		playlist.Privacy = *req.Privacy
	}

	if err := s.playlistRepo.Update(ctx, playlist); err != nil {
		return nil, fmt.Errorf("service: failed to update playlist: %w", err)
	}

	return playlist, nil
}

// Delete удаляет плейлист. Разрешено владельцу и администраторам.
func (s *playlistService) Delete(ctx context.Context, principal *domain.Principal, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, principal, id); err != nil {
		return err
	}

	if err := s.playlistRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete playlist: %w", err)
	}

	return nil
}

// ListByUser возвращает плейлисты пользователя; приватные видит только владелец.
func (s *playlistService) ListByUser(ctx context.Context, principal *domain.Principal, userID uuid.UUID, skip, limit int) ([]domain.Playlist, error) {
	normalizePage(&skip, &limit)
	includePrivate := principal != nil && (principal.UserID == userID || principal.IsAdmin)

	playlists, err := s.playlistRepo.ListByUser(ctx, userID, includePrivate, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list playlists: %w", err)
	}
	return playlists, nil
}

// AddVideo добавляет видео в плейлист владельца.
func (s *playlistService) AddVideo(ctx context.Context, principal *domain.Principal, playlistID, videoID uuid.UUID) error {
	if _, err := s.getOwned(ctx, principal, playlistID); err != nil {
		return err
	}

	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrVideoNotFound
		}
		return fmt.Errorf("service: failed to check video: %w", err)
	}

	if err := s.playlistRepo.AddVideo(ctx, playlistID, videoID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Видео уже в плейлисте
			return nil
		}
		return fmt.Errorf("service: failed to add video to playlist: %w", err)
	}

	return nil
}

// RemoveVideo убирает видео из плейлиста владельца.
func (s *playlistService) RemoveVideo(ctx context.Context, principal *domain.Principal, playlistID, videoID uuid.UUID) error {
	if _, err := s.getOwned(ctx, principal, playlistID); err != nil {
		return err
	}

	if err := s.playlistRepo.RemoveVideo(ctx, playlistID, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("service: failed to remove video from playlist: %w", err)
	}

	return nil
}

// Videos возвращает видео плейлиста с учетом видимости.
func (s *playlistService) Videos(ctx context.Context, principal *domain.Principal, playlistID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	if _, err := s.Get(ctx, principal, playlistID); err != nil {
		return nil, err
	}

	normalizePage(&skip, &limit)
	videos, err := s.playlistRepo.Videos(ctx, playlistID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list playlist videos: %w", err)
	}
	return videos, nil
}

func (s *playlistService) canView(principal *domain.Principal, playlist *domain.Playlist) bool {
	return principal != nil && (principal.UserID == playlist.UserID || principal.IsAdmin)
}

func (s *playlistService) getOwned(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("playlist", id.String())
		}
		return nil, fmt.Errorf("service: failed to get playlist: %w", err)
	}

	if playlist.UserID != principal.UserID && !principal.IsAdmin {
		return nil, domain.ErrUnauthorized
	}

	return playlist, nil
}
