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

// SocialService интерфейс сервиса социального графа.
type SocialService interface {
	Follow(ctx context.Context, followerID, followingID uuid.UUID, notify bool) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Followers(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.User, error)
	Following(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.User, error)

	ToggleLike(ctx context.Context, userID, videoID uuid.UUID, likeType domain.LikeType) (*domain.LikeResult, error)
	LikeStatus(ctx context.Context, userID, videoID uuid.UUID) (*domain.LikeStatus, error)

	SaveVideo(ctx context.Context, userID, videoID uuid.UUID) error
	UnsaveVideo(ctx context.Context, userID, videoID uuid.UUID) error
	SavedVideos(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error)
	IsSaved(ctx context.Context, userID, videoID uuid.UUID) (bool, error)
}

type socialService struct {
	socialRepo repository.SocialRepository
	userRepo   repository.UserRepository
	videoRepo  repository.VideoRepository
	log        *logger.Logger
}

// NewSocialService создает новый сервис социального графа.
func NewSocialService(
	socialRepo repository.SocialRepository,
	userRepo repository.UserRepository,
	videoRepo repository.VideoRepository,
	log *logger.Logger,
) SocialService {
	return &socialService{
		socialRepo: socialRepo,
		userRepo:   userRepo,
		videoRepo:  videoRepo,
		log:        log,
	}
}

// Follow подписывает пользователя на автора. Самоподписка запрещена.
func (s *socialService) Follow(ctx context.Context, followerID, followingID uuid.UUID, notify bool) error {
	if followerID == followingID {
		return domain.NewValidationError("following_id", "cannot follow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("service: failed to check followed user: %w", err)
	}

	follow := &domain.Follow{
		ID:             uuid.New(),
		FollowerID:     followerID,
		FollowingID:    followingID,
		NotifyOnUpload: notify,
	}
	if err := s.socialRepo.Follow(ctx, follow); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Повторная подписка идемпотентна
			return nil
		}
		return fmt.Errorf("service: failed to follow: %w", err)
	}

	if err := s.userRepo.AdjustFollowerCounts(ctx, followerID, followingID, 1); err != nil {
		s.log.Warnw("Failed to adjust follower counts", "error", err, "followerID", followerID)
	}

	s.log.Debugw("User followed", "followerID", followerID, "followingID", followingID)
	return nil
}

// Unfollow отписывает пользователя от автора.
func (s *socialService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if err := s.socialRepo.Unfollow(ctx, followerID, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("service: failed to unfollow: %w", err)
	}

	if err := s.userRepo.AdjustFollowerCounts(ctx, followerID, followingID, -1); err != nil {
		s.log.Warnw("Failed to adjust follower counts", "error", err, "followerID", followerID)
	}

	return nil
}

// IsFollowing проверяет наличие подписки.
func (s *socialService) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	following, err := s.socialRepo.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("service: failed to check follow: %w", err)
	}
	return following, nil
}

// Followers возвращает подписчиков пользователя.
func (s *socialService) Followers(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.User, error) {
	normalizePage(&skip, &limit)
	users, err := s.socialRepo.Followers(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list followers: %w", err)
	}
	return users, nil
}

// Following возвращает авторов, на которых подписан пользователь.
func (s *socialService) Following(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.User, error) {
	normalizePage(&skip, &limit)
	users, err := s.socialRepo.Following(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list following: %w", err)
	}
	return users, nil
}

// ToggleLike ставит, переключает или снимает реакцию на видео.
func (s *socialService) ToggleLike(ctx context.Context, userID, videoID uuid.UUID, likeType domain.LikeType) (*domain.LikeResult, error) {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("service: failed to check video: %w", err)
	}

	result, err := s.socialRepo.ToggleLike(ctx, userID, videoID, likeType)
	if err != nil {
		return nil, fmt.Errorf("service: failed to toggle like: %w", err)
	}

	return result, nil
}

// LikeStatus возвращает текущую реакцию пользователя на видео.
func (s *socialService) LikeStatus(ctx context.Context, userID, videoID uuid.UUID) (*domain.LikeStatus, error) {
	status, err := s.socialRepo.LikeStatus(ctx, userID, videoID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get like status: %w", err)
	}
	return status, nil
}

// SaveVideo добавляет видео в сохраненные (идемпотентно).
func (s *socialService) SaveVideo(ctx context.Context, userID, videoID uuid.UUID) error {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrVideoNotFound
		}
		return fmt.Errorf("service: failed to check video: %w", err)
	}

	if err := s.socialRepo.SaveVideo(ctx, userID, videoID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("service: failed to save video: %w", err)
	}

	return nil
}

// UnsaveVideo убирает видео из сохраненных.
func (s *socialService) UnsaveVideo(ctx context.Context, userID, videoID uuid.UUID) error {
	if err := s.socialRepo.UnsaveVideo(ctx, userID, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("service: failed to unsave video: %w", err)
	}
	return nil
}

// SavedVideos возвращает сохраненные видео пользователя.
func (s *socialService) SavedVideos(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	normalizePage(&skip, &limit)
	videos, err := s.socialRepo.SavedVideos(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list saved videos: %w", err)
	}
	return videos, nil
}

// IsSaved проверяет, сохранено ли видео пользователем.
func (s *socialService) IsSaved(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	saved, err := s.socialRepo.IsSaved(ctx, userID, videoID)
	if err != nil {
		return false, fmt.Errorf("service: failed to check saved video: %w", err)
	}
	return saved, nil
}
