package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
)

// PlaylistRepository хранилище плейлистов.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *domain.Playlist) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Playlist, error)
	Update(ctx context.Context, playlist *domain.Playlist) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser возвращает плейлисты пользователя. Приватные плейлисты
	// включаются только при includePrivate.
	ListByUser(ctx context.Context, userID uuid.UUID, includePrivate bool, skip, limit int) ([]domain.Playlist, error)

	// AddVideo добавляет видео в конец плейлиста. Повторное добавление — ErrDuplicate.
	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error

	// RemoveVideo убирает видео и уплотняет позиции оставшихся.
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error

	// Videos возвращает видео плейлиста в порядке позиций.
	Videos(ctx context.Context, playlistID uuid.UUID, skip, limit int) ([]domain.Video, error)
}
