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

// CommentService интерфейс сервиса комментариев.
type CommentService interface {
	Create(ctx context.Context, userID, videoID uuid.UUID, req domain.CommentCreateRequest) (*domain.Comment, error)
	Update(ctx context.Context, principal *domain.Principal, commentID uuid.UUID, req domain.CommentUpdateRequest) (*domain.Comment, error)
	Delete(ctx context.Context, principal *domain.Principal, commentID uuid.UUID) error
	ListByVideo(ctx context.Context, videoID uuid.UUID, skip, limit int) ([]domain.Comment, error)
	ListReplies(ctx context.Context, parentID uuid.UUID, skip, limit int) ([]domain.Comment, error)

	// SetPinned закрепляет комментарий; разрешено автору видео и администраторам.
	SetPinned(ctx context.Context, principal *domain.Principal, commentID uuid.UUID, pinned bool) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	log         *logger.Logger
}

// NewCommentService создает новый сервис комментариев.
func NewCommentService(
	commentRepo repository.CommentRepository,
	videoRepo repository.VideoRepository,
	log *logger.Logger,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		log:         log,
	}
}

// Create добавляет комментарий или ответ. Ответы на ответы запрещены:
// древовидность ограничена одним уровнем.
func (s *commentService) Create(ctx context.Context, userID, videoID uuid.UUID, req domain.CommentCreateRequest) (*domain.Comment, error) {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("service: failed to check video: %w", err)
	}

	if req.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.NewNotFoundError("comment", req.ParentCommentID.String())
			}
			return nil, fmt.Errorf("service: failed to check parent comment: %w", err)
		}
		if parent.VideoID != videoID {
			return nil, domain.NewValidationError("parent_comment_id", "parent comment belongs to another video")
		}
		if parent.ParentCommentID != nil {
			return nil, domain.NewValidationError("parent_comment_id", "replies to replies are not allowed")
		}
	}

	comment := &domain.Comment{
		ID:              uuid.New(),
		VideoID:         videoID,
		UserID:          userID,
		ParentCommentID: req.ParentCommentID,
		Content:         req.Content,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service: failed to create comment: %w", err)
	}

	return comment, nil
}

// Update редактирует комментарий. Разрешено только автору.
func (s *commentService) Update(ctx context.Context, principal *domain.Principal, commentID uuid.UUID, req domain.CommentUpdateRequest) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("comment", commentID.String())
		}
		return nil, fmt.Errorf("service: failed to get comment: %w", err)
	}

	if comment.UserID != principal.UserID {
		return nil, domain.ErrUnauthorized
	}

	updated, err := s.commentRepo.Update(ctx, commentID, req.Content)
	if err != nil {
		return nil, fmt.Errorf("service: failed to update comment: %w", err)
	}

	return updated, nil
}

// Delete удаляет комментарий. Разрешено автору комментария, автору видео
// и администраторам.
func (s *commentService) Delete(ctx context.Context, principal *domain.Principal, commentID uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError("comment", commentID.String())
		}
		return fmt.Errorf("service: failed to get comment: %w", err)
	}

	if comment.UserID != principal.UserID && !principal.IsAdmin {
		video, err := s.videoRepo.GetByID(ctx, comment.VideoID)
		if err != nil {
			return fmt.Errorf("service: failed to check video owner: %w", err)
		}
		if video.UploaderID != principal.UserID {
			return domain.ErrUnauthorized
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("service: failed to delete comment: %w", err)
	}

	return nil
}

// ListByVideo возвращает корневые комментарии видео.
func (s *commentService) ListByVideo(ctx context.Context, videoID uuid.UUID, skip, limit int) ([]domain.Comment, error) {
	normalizePage(&skip, &limit)
	comments, err := s.commentRepo.ListByVideo(ctx, videoID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list comments: %w", err)
	}
	return comments, nil
}

// ListReplies возвращает ответы на комментарий.
func (s *commentService) ListReplies(ctx context.Context, parentID uuid.UUID, skip, limit int) ([]domain.Comment, error) {
	normalizePage(&skip, &limit)
	comments, err := s.commentRepo.ListReplies(ctx, parentID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list replies: %w", err)
	}
	return comments, nil
}

// SetPinned закрепляет или открепляет комментарий.
func (s *commentService) SetPinned(ctx context.Context, principal *domain.Principal, commentID uuid.UUID, pinned bool) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError("comment", commentID.String())
		}
		return fmt.Errorf("service: failed to get comment: %w", err)
	}

	if !principal.IsAdmin {
		video, err := s.videoRepo.GetByID(ctx, comment.VideoID)
		if err != nil {
			return fmt.Errorf("service: failed to check video owner: %w", err)
		}
		if video.UploaderID != principal.UserID {
			return domain.ErrUnauthorized
		}
	}

	if err := s.commentRepo.SetPinned(ctx, commentID, pinned); err != nil {
		return fmt.Errorf("service: failed to set pinned flag: %w", err)
	}

	return nil
}
