package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
)

// SocialRepository хранилище социального графа: подписки на авторов,
// реакции и сохраненные видео.
type SocialRepository interface {
	// Follow создает подписку на автора. Возвращает ErrDuplicate,
	// если подписка уже существует.
	Follow(ctx context.Context, follow *domain.Follow) error

	// Unfollow удаляет подписку. Возвращает ErrNotFound, если ее не было.
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error

	// IsFollowing проверяет наличие подписки.
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)

	// Followers возвращает подписчиков пользователя.
	Followers(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.User, error)

	// Following возвращает авторов, на которых подписан пользователь.
	Following(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.User, error)

	// ToggleLike ставит, переключает или снимает реакцию: та же реакция
	// повторно — снятие, противоположная — переключение. Счетчики видео
	// обновляются в той же транзакции.
	ToggleLike(ctx context.Context, userID, videoID uuid.UUID, likeType domain.LikeType) (*domain.LikeResult, error)

	// LikeStatus возвращает текущую реакцию пользователя на видео.
	LikeStatus(ctx context.Context, userID, videoID uuid.UUID) (*domain.LikeStatus, error)

	// SaveVideo добавляет видео в сохраненные. Повторное сохранение — ErrDuplicate.
	SaveVideo(ctx context.Context, userID, videoID uuid.UUID) error

	// UnsaveVideo убирает видео из сохраненных.
	UnsaveVideo(ctx context.Context, userID, videoID uuid.UUID) error

	// SavedVideos возвращает сохраненные видео пользователя.
	SavedVideos(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error)

	// IsSaved проверяет, сохранено ли видео пользователем.
	IsSaved(ctx context.Context, userID, videoID uuid.UUID) (bool, error)
}
