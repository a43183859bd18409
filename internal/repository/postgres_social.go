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

// postgresSocialRepo реализует SocialRepository для PostgreSQL.
type postgresSocialRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresSocialRepository создает репозиторий социального графа для PostgreSQL.
func NewPostgresSocialRepository(db *sqlx.DB, log *logger.Logger) SocialRepository {
	return &postgresSocialRepo{db: db, log: log}
}

// Follow создает подписку на автора.
func (r *postgresSocialRepo) Follow(ctx context.Context, follow *domain.Follow) error {
	follow.CreatedAt = time.Now()

	query := `
        INSERT INTO followers (id, follower_id, following_id, notify_on_upload, created_at)
        VALUES (:id, :follower_id, :following_id, :notify_on_upload, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, follow)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Debugw("Already following", "followerID", follow.FollowerID, "followingID", follow.FollowingID)
			return ErrDuplicate
		}
		r.log.Errorw("Failed to create follow in DB", "error", err, "followerID", follow.FollowerID)
		return fmt.Errorf("repository: failed to create follow: %w", err)
	}

	return nil
}

// Unfollow удаляет подписку.
func (r *postgresSocialRepo) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM followers WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID,
	)
	if err != nil {
		r.log.Errorw("Failed to delete follow from DB", "error", err, "followerID", followerID)
		return fmt.Errorf("repository: failed to delete follow: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// IsFollowing проверяет наличие подписки.
func (r *postgresSocialRepo) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM followers WHERE follower_id = $1 AND following_id = $2)`

	if err := r.db.GetContext(ctx, &exists, query, followerID, followingID); err != nil {
		r.log.Errorw("Failed to check follow", "error", err, "followerID", followerID)
		return false, fmt.Errorf("repository: failed to check follow: %w", err)
	}

	return exists, nil
}

// Колонки пользователя с префиксом таблицы для запросов с JOIN.
const userColumnsQualified = `u.id, u.username, u.email, u.hashed_password, u.display_name, u.bio,
       u.profile_picture, u.cover_image, u.role, u.status,
       u.followers_count, u.following_count, u.videos_count, u.created_at, u.updated_at`

// Followers возвращает подписчиков пользователя.
func (r *postgresSocialRepo) Followers(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.User, error) {
	query := `
        SELECT ` + userColumnsQualified + `
        FROM users u
        JOIN followers f ON f.follower_id = u.id
        WHERE f.following_id = $1
        ORDER BY f.created_at DESC
        OFFSET $2 LIMIT $3`
	return r.selectUsers(ctx, query, userID, skip, limit)
}

// Following возвращает авторов, на которых подписан пользователь.
func (r *postgresSocialRepo) Following(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.User, error) {
	query := `
        SELECT ` + userColumnsQualified + `
        FROM users u
        JOIN followers f ON f.following_id = u.id
        WHERE f.follower_id = $1
        ORDER BY f.created_at DESC
        OFFSET $2 LIMIT $3`
	return r.selectUsers(ctx, query, userID, skip, limit)
}

func (r *postgresSocialRepo) selectUsers(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		r.log.Errorw("Failed to select users", "error", err)
		return nil, fmt.Errorf("repository: failed to select users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// ToggleLike ставит, переключает или снимает реакцию одной транзакцией.
func (r *postgresSocialRepo) ToggleLike(ctx context.Context, userID, videoID uuid.UUID, likeType domain.LikeType) (*domain.LikeResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing domain.Like
	err = tx.GetContext(ctx, &existing,
		`SELECT id, user_id, video_id, like_type, created_at FROM likes WHERE user_id = $1 AND video_id = $2 FOR UPDATE`,
		userID, videoID,
	)

	var result domain.LikeResult
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Реакции не было: создаем
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO likes (id, user_id, video_id, like_type, created_at) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), userID, videoID, likeType, time.Now(),
		); err != nil {
			r.log.Errorw("Failed to insert like", "error", err, "videoID", videoID)
			return nil, fmt.Errorf("repository: failed to insert like: %w", err)
		}
		if err := r.adjustLikeCounter(ctx, tx, videoID, likeType, 1); err != nil {
			return nil, err
		}
		result = domain.LikeResult{Action: "created", LikeType: likeType}

	case err != nil:
		r.log.Errorw("Failed to get like", "error", err, "videoID", videoID)
		return nil, fmt.Errorf("repository: failed to get like: %w", err)

	case existing.LikeType == likeType:
		// Повторная та же реакция: снимаем
		if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE id = $1`, existing.ID); err != nil {
			r.log.Errorw("Failed to delete like", "error", err, "videoID", videoID)
			return nil, fmt.Errorf("repository: failed to delete like: %w", err)
		}
		if err := r.adjustLikeCounter(ctx, tx, videoID, likeType, -1); err != nil {
			return nil, err
		}
		result = domain.LikeResult{Action: "removed", LikeType: likeType}

	default:
		// Противоположная реакция: переключаем, счетчики двигаются симметрично
		if _, err := tx.ExecContext(ctx,
			`UPDATE likes SET like_type = $2, created_at = $3 WHERE id = $1`,
			existing.ID, likeType, time.Now(),
		); err != nil {
			r.log.Errorw("Failed to switch like", "error", err, "videoID", videoID)
			return nil, fmt.Errorf("repository: failed to switch like: %w", err)
		}
		if err := r.adjustLikeCounter(ctx, tx, videoID, existing.LikeType, -1); err != nil {
			return nil, err
		}
		if err := r.adjustLikeCounter(ctx, tx, videoID, likeType, 1); err != nil {
			return nil, err
		}
		result = domain.LikeResult{Action: "updated", LikeType: likeType}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("repository: failed to commit like toggle: %w", err)
	}

	r.log.Debugw("Like toggled", "videoID", videoID, "userID", userID, "action", result.Action)
	return &result, nil
}

func (r *postgresSocialRepo) adjustLikeCounter(ctx context.Context, tx *sqlx.Tx, videoID uuid.UUID, likeType domain.LikeType, delta int) error {
	column := "likes"
	if likeType == domain.LikeTypeDislike {
		column = "dislikes"
	}

	query := fmt.Sprintf(`UPDATE videos SET %s = GREATEST(%s + $2, 0) WHERE id = $1`, column, column)
	if _, err := tx.ExecContext(ctx, query, videoID, delta); err != nil {
		r.log.Errorw("Failed to adjust like counter", "error", err, "videoID", videoID, "column", column)
		return fmt.Errorf("repository: failed to adjust %s counter: %w", column, err)
	}

	return nil
}

// LikeStatus возвращает текущую реакцию пользователя на видео.
func (r *postgresSocialRepo) LikeStatus(ctx context.Context, userID, videoID uuid.UUID) (*domain.LikeStatus, error) {
	var likeType domain.LikeType
	err := r.db.GetContext(ctx, &likeType,
		`SELECT like_type FROM likes WHERE user_id = $1 AND video_id = $2`,
		userID, videoID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.LikeStatus{}, nil
		}
		r.log.Errorw("Failed to get like status", "error", err, "videoID", videoID)
		return nil, fmt.Errorf("repository: failed to get like status: %w", err)
	}

	return &domain.LikeStatus{
		Liked:    likeType == domain.LikeTypeLike,
		Disliked: likeType == domain.LikeTypeDislike,
		LikeType: &likeType,
	}, nil
}

// SaveVideo добавляет видео в сохраненные и инкрементирует счетчик.
func (r *postgresSocialRepo) SaveVideo(ctx context.Context, userID, videoID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO saved_videos (id, user_id, video_id, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), userID, videoID, time.Now(),
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.log.Errorw("Failed to save video", "error", err, "videoID", videoID)
		return fmt.Errorf("repository: failed to save video: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE videos SET favorites_count = favorites_count + 1 WHERE id = $1`, videoID,
	); err != nil {
		return fmt.Errorf("repository: failed to increment favorites count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit save: %w", err)
	}

	return nil
}

// UnsaveVideo убирает видео из сохраненных и декрементирует счетчик.
func (r *postgresSocialRepo) UnsaveVideo(ctx context.Context, userID, videoID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM saved_videos WHERE user_id = $1 AND video_id = $2`,
		userID, videoID,
	)
	if err != nil {
		r.log.Errorw("Failed to unsave video", "error", err, "videoID", videoID)
		return fmt.Errorf("repository: failed to unsave video: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE videos SET favorites_count = GREATEST(favorites_count - 1, 0) WHERE id = $1`, videoID,
	); err != nil {
		return fmt.Errorf("repository: failed to decrement favorites count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit unsave: %w", err)
	}

	return nil
}

// SavedVideos возвращает сохраненные видео пользователя.
func (r *postgresSocialRepo) SavedVideos(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	var videos []domain.Video
	query := videoSelect + `
        JOIN saved_videos sv ON sv.video_id = v.id
        WHERE sv.user_id = $1
        ORDER BY sv.created_at DESC
        OFFSET $2 LIMIT $3`

	if err := r.db.SelectContext(ctx, &videos, query, userID, skip, limit); err != nil {
		r.log.Errorw("Failed to list saved videos", "error", err, "userID", userID)
		return nil, fmt.Errorf("repository: failed to list saved videos: %w", err)
	}
	if videos == nil {
		videos = []domain.Video{}
	}

	return videos, nil
}

// IsSaved проверяет, сохранено ли видео пользователем.
func (r *postgresSocialRepo) IsSaved(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM saved_videos WHERE user_id = $1 AND video_id = $2)`

	if err := r.db.GetContext(ctx, &exists, query, userID, videoID); err != nil {
		r.log.Errorw("Failed to check saved video", "error", err, "videoID", videoID)
		return false, fmt.Errorf("repository: failed to check saved video: %w", err)
	}

	return exists, nil
}
