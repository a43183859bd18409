package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

// postgresCommentRepo реализует CommentRepository для PostgreSQL.
type postgresCommentRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresCommentRepository создает репозиторий комментариев для PostgreSQL.
func NewPostgresCommentRepository(db *sqlx.DB, log *logger.Logger) CommentRepository {
	return &postgresCommentRepo{db: db, log: log}
}

const commentColumns = `id, video_id, user_id, parent_comment_id, content, likes_count, replies_count,
       is_edited, is_pinned, created_at, updated_at`

// Create сохраняет комментарий и двигает счетчики одной транзакцией.
func (r *postgresCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO comments (id, video_id, user_id, parent_comment_id, content, created_at, updated_at)
        VALUES (:id, :video_id, :user_id, :parent_comment_id, :content, :created_at, :updated_at)`

	if _, err := tx.NamedExecContext(ctx, query, comment); err != nil {
		r.log.Errorw("Failed to create comment in DB", "error", err, "videoID", comment.VideoID)
		return fmt.Errorf("repository: failed to create comment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE videos SET comments_count = comments_count + 1 WHERE id = $1`, comment.VideoID,
	); err != nil {
		return fmt.Errorf("repository: failed to increment comments count: %w", err)
	}

	if comment.ParentCommentID != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE comments SET replies_count = replies_count + 1 WHERE id = $1`, *comment.ParentCommentID,
		); err != nil {
			return fmt.Errorf("repository: failed to increment replies count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit comment creation: %w", err)
	}

	r.log.Debugw("Comment created", "commentID", comment.ID, "videoID", comment.VideoID)
	return nil
}

// GetByID возвращает комментарий по идентификатору.
func (r *postgresCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	err := r.db.GetContext(ctx, &comment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to get comment from DB", "error", err, "commentID", id)
		return nil, fmt.Errorf("repository: failed to get comment: %w", err)
	}

	return &comment, nil
}

// Update редактирует текст комментария.
func (r *postgresCommentRepo) Update(ctx context.Context, id uuid.UUID, content string) (*domain.Comment, error) {
	query := `
        UPDATE comments SET content = $2, is_edited = TRUE, updated_at = $3
        WHERE id = $1
        RETURNING ` + commentColumns

	var comment domain.Comment
	err := r.db.GetContext(ctx, &comment, query, id, content, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to update comment in DB", "error", err, "commentID", id)
		return nil, fmt.Errorf("repository: failed to update comment: %w", err)
	}

	return &comment, nil
}

// Delete удаляет комментарий с ответами и корректирует счетчики.
func (r *postgresCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var comment domain.Comment
	err = tx.GetContext(ctx, &comment,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("repository: failed to get comment for deletion: %w", err)
	}

	// Ответы удаляются каскадно по внешнему ключу
	var removed int
	err = tx.GetContext(ctx, &removed, `
        WITH deleted AS (
            DELETE FROM comments WHERE id = $1 OR parent_comment_id = $1 RETURNING 1
        )
        SELECT COUNT(*) FROM deleted`, id)
	if err != nil {
		r.log.Errorw("Failed to delete comment from DB", "error", err, "commentID", id)
		return fmt.Errorf("repository: failed to delete comment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE videos SET comments_count = GREATEST(comments_count - $2, 0) WHERE id = $1`,
		comment.VideoID, removed,
	); err != nil {
		return fmt.Errorf("repository: failed to decrement comments count: %w", err)
	}

	if comment.ParentCommentID != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE comments SET replies_count = GREATEST(replies_count - 1, 0) WHERE id = $1`,
			*comment.ParentCommentID,
		); err != nil {
			return fmt.Errorf("repository: failed to decrement replies count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit comment deletion: %w", err)
	}

	r.log.Debugw("Comment deleted", "commentID", id, "removed", removed)
	return nil
}

// ListByVideo возвращает корневые комментарии, закрепленные первыми.
func (r *postgresCommentRepo) ListByVideo(ctx context.Context, videoID uuid.UUID, skip, limit int) ([]domain.Comment, error) {
	query := `
        SELECT ` + commentColumns + `
        FROM comments
        WHERE video_id = $1 AND parent_comment_id IS NULL
        ORDER BY is_pinned DESC, created_at DESC
        OFFSET $2 LIMIT $3`
	return r.selectComments(ctx, query, videoID, skip, limit)
}

// ListReplies возвращает ответы на комментарий, старые первыми.
func (r *postgresCommentRepo) ListReplies(ctx context.Context, parentID uuid.UUID, skip, limit int) ([]domain.Comment, error) {
	query := `
        SELECT ` + commentColumns + `
        FROM comments
        WHERE parent_comment_id = $1
        ORDER BY created_at ASC
        OFFSET $2 LIMIT $3`
	return r.selectComments(ctx, query, parentID, skip, limit)
}

func (r *postgresCommentRepo) selectComments(ctx context.Context, query string, args ...interface{}) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		r.log.Errorw("Failed to select comments", "error", err)
		return nil, fmt.Errorf("repository: failed to select comments: %w", err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// SetPinned закрепляет или открепляет комментарий.
func (r *postgresCommentRepo) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET is_pinned = $2, updated_at = $3 WHERE id = $1`,
		id, pinned, time.Now(),
	)
	if err != nil {
		r.log.Errorw("Failed to set comment pinned flag", "error", err, "commentID", id)
		return fmt.Errorf("repository: failed to set pinned flag: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}
