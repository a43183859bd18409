package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
)

// CommentRepository хранилище комментариев к видео.
type CommentRepository interface {
	// Create сохраняет комментарий; счетчики видео и родительского
	// комментария обновляются в той же транзакции.
	Create(ctx context.Context, comment *domain.Comment) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// Update редактирует текст комментария и выставляет is_edited.
	Update(ctx context.Context, id uuid.UUID, content string) (*domain.Comment, error)

	// Delete удаляет комментарий вместе с ответами и корректирует счетчики.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByVideo возвращает корневые комментарии видео, закрепленные первыми.
	ListByVideo(ctx context.Context, videoID uuid.UUID, skip, limit int) ([]domain.Comment, error)

	// ListReplies возвращает ответы на комментарий, старые первыми.
	ListReplies(ctx context.Context, parentID uuid.UUID, skip, limit int) ([]domain.Comment, error)

	// SetPinned закрепляет или открепляет комментарий.
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error
}
