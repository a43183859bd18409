package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

// postgresVideoRepo реализует VideoRepository для PostgreSQL.
type postgresVideoRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresVideoRepository создает репозиторий видео для PostgreSQL.
func NewPostgresVideoRepository(db *sqlx.DB, log *logger.Logger) VideoRepository {
	return &postgresVideoRepo{db: db, log: log}
}

// Выборки всегда включают денормализованные данные автора.
const videoSelect = `
    SELECT v.id, v.uploader_id, v.title, v.description, v.video_url, v.thumbnail_url,
           v.duration, v.width, v.height, v.status, v.is_featured, v.category, v.tags,
           v.views, v.likes, v.dislikes, v.comments_count, v.shares_count, v.favorites_count,
           v.created_at, v.published_at, v.updated_at,
           u.username        AS uploader_username,
           u.display_name    AS uploader_display_name,
           u.profile_picture AS uploader_profile_picture,
           u.followers_count AS uploader_followers_count
    FROM videos v
    JOIN users u ON u.id = v.uploader_id`

// Create сохраняет новую запись видео и инкрементирует счетчик автора.
func (r *postgresVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO videos (
            id, uploader_id, title, description, video_url, thumbnail_url,
            duration, width, height, status, is_featured, category, tags,
            created_at, published_at, updated_at
        ) VALUES (
            :id, :uploader_id, :title, :description, :video_url, :thumbnail_url,
            :duration, :width, :height, :status, :is_featured, :category, :tags,
            :created_at, :published_at, :updated_at
        )`

	if _, err := tx.NamedExecContext(ctx, query, video); err != nil {
		r.log.Errorw("Failed to create video in DB", "error", err, "uploaderID", video.UploaderID)
		return fmt.Errorf("repository: failed to create video: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET videos_count = videos_count + 1 WHERE id = $1`, video.UploaderID,
	); err != nil {
		r.log.Errorw("Failed to increment uploader videos count", "error", err, "uploaderID", video.UploaderID)
		return fmt.Errorf("repository: failed to increment videos count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit video creation: %w", err)
	}

	r.log.Debugw("Video created", "videoID", video.ID, "uploaderID", video.UploaderID)
	return nil
}

// GetByID возвращает видео с данными автора.
func (r *postgresVideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	var video domain.Video
	query := videoSelect + ` WHERE v.id = $1`

	err := r.db.GetContext(ctx, &video, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugw("Video not found", "videoID", id)
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to get video from DB", "error", err, "videoID", id)
		return nil, fmt.Errorf("repository: failed to get video: %w", err)
	}

	return &video, nil
}

// Update обновляет редактируемые поля видео.
func (r *postgresVideoRepo) Update(ctx context.Context, video *domain.Video) error {
	video.UpdatedAt = time.Now()

	query := `
        UPDATE videos SET
            title = :title,
            description = :description,
            thumbnail_url = :thumbnail_url,
            category = :category,
            tags = :tags,
            status = :status,
            is_featured = :is_featured,
            published_at = :published_at,
            updated_at = :updated_at
        WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, video)
	if err != nil {
		r.log.Errorw("Failed to update video in DB", "error", err, "videoID", video.ID)
		return fmt.Errorf("repository: failed to update video: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete удаляет видео и декрементирует счетчик автора.
func (r *postgresVideoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var uploaderID uuid.UUID
	err = tx.GetContext(ctx, &uploaderID, `DELETE FROM videos WHERE id = $1 RETURNING uploader_id`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		r.log.Errorw("Failed to delete video from DB", "error", err, "videoID", id)
		return fmt.Errorf("repository: failed to delete video: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET videos_count = GREATEST(videos_count - 1, 0) WHERE id = $1`, uploaderID,
	); err != nil {
		r.log.Errorw("Failed to decrement uploader videos count", "error", err, "uploaderID", uploaderID)
		return fmt.Errorf("repository: failed to decrement videos count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit video deletion: %w", err)
	}

	r.log.Debugw("Video deleted", "videoID", id)
	return nil
}

// List возвращает страницу опубликованных видео с фильтрами.
func (r *postgresVideoRepo) List(ctx context.Context, q domain.VideoListQuery) ([]domain.Video, error) {
	conditions := []string{`v.status = 'published'`}
	args := []interface{}{}
	arg := 1

	if q.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(v.title ILIKE $%d OR v.description ILIKE $%d)`, arg, arg))
		args = append(args, "%"+q.Search+"%")
		arg++
	}
	if q.Category != "" {
		conditions = append(conditions, fmt.Sprintf(`v.category = $%d`, arg))
		args = append(args, q.Category)
		arg++
	}
	for _, tag := range q.Tags {
		conditions = append(conditions, fmt.Sprintf(`v.tags @> to_jsonb(ARRAY[$%d::text])`, arg))
		args = append(args, tag)
		arg++
	}

	orderBy := `v.published_at DESC NULLS LAST`
	switch q.SortBy {
	case "views":
		orderBy = `v.views DESC`
	case "likes":
		orderBy = `v.likes DESC`
	case "oldest":
		orderBy = `v.published_at ASC NULLS LAST`
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s OFFSET $%d LIMIT $%d`,
		videoSelect, strings.Join(conditions, " AND "), orderBy, arg, arg+1)
	args = append(args, q.Skip, q.Limit)

	var videos []domain.Video
	if err := r.db.SelectContext(ctx, &videos, query, args...); err != nil {
		r.log.Errorw("Failed to list videos", "error", err)
		return nil, fmt.Errorf("repository: failed to list videos: %w", err)
	}
	if videos == nil {
		videos = []domain.Video{}
	}

	return videos, nil
}

// ListByUploader возвращает видео пользователя, новые первыми.
func (r *postgresVideoRepo) ListByUploader(ctx context.Context, uploaderID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	query := videoSelect + ` WHERE v.uploader_id = $1 ORDER BY v.created_at DESC OFFSET $2 LIMIT $3`
	return r.selectVideos(ctx, query, uploaderID, skip, limit)
}

// ListHot возвращает видео по убыванию вовлеченности.
func (r *postgresVideoRepo) ListHot(ctx context.Context, skip, limit int) ([]domain.Video, error) {
	query := videoSelect + `
        WHERE v.status = 'published'
        ORDER BY v.likes + 2 * v.comments_count + 3 * v.shares_count DESC, v.published_at DESC NULLS LAST
        OFFSET $1 LIMIT $2`
	return r.selectVideos(ctx, query, skip, limit)
}

// ListTrending возвращает недавно опубликованные видео по убыванию просмотров.
func (r *postgresVideoRepo) ListTrending(ctx context.Context, since time.Time, skip, limit int) ([]domain.Video, error) {
	query := videoSelect + `
        WHERE v.status = 'published' AND v.published_at >= $1
        ORDER BY v.views DESC, v.published_at DESC
        OFFSET $2 LIMIT $3`
	return r.selectVideos(ctx, query, since, skip, limit)
}

// ListRecommended возвращает непросмотренные видео из категорий, знакомых
// пользователю по истории просмотров.
func (r *postgresVideoRepo) ListRecommended(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	query := videoSelect + `
        WHERE v.status = 'published'
          AND v.category IN (
              SELECT DISTINCT w.category FROM watch_history h
              JOIN videos w ON w.id = h.video_id
              WHERE h.user_id = $1 AND w.category <> ''
          )
          AND v.id NOT IN (SELECT video_id FROM watch_history WHERE user_id = $1)
        ORDER BY v.views DESC, v.published_at DESC NULLS LAST
        OFFSET $2 LIMIT $3`
	return r.selectVideos(ctx, query, userID, skip, limit)
}

// ListFeatured возвращает избранные видео.
func (r *postgresVideoRepo) ListFeatured(ctx context.Context, skip, limit int) ([]domain.Video, error) {
	query := videoSelect + `
        WHERE v.status = 'published' AND v.is_featured
        ORDER BY v.published_at DESC NULLS LAST
        OFFSET $1 LIMIT $2`
	return r.selectVideos(ctx, query, skip, limit)
}

// ListFeed возвращает видео авторов, на которых подписан пользователь.
func (r *postgresVideoRepo) ListFeed(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	query := videoSelect + `
        JOIN followers f ON f.following_id = v.uploader_id
        WHERE f.follower_id = $1 AND v.status = 'published'
        ORDER BY v.published_at DESC NULLS LAST
        OFFSET $2 LIMIT $3`
	return r.selectVideos(ctx, query, userID, skip, limit)
}

func (r *postgresVideoRepo) selectVideos(ctx context.Context, query string, args ...interface{}) ([]domain.Video, error) {
	var videos []domain.Video
	if err := r.db.SelectContext(ctx, &videos, query, args...); err != nil {
		r.log.Errorw("Failed to select videos", "error", err)
		return nil, fmt.Errorf("repository: failed to select videos: %w", err)
	}
	if videos == nil {
		videos = []domain.Video{}
	}
	return videos, nil
}

// RecordView сохраняет просмотр одной транзакцией: запись просмотра,
// инкремент счетчика и история для аутентифицированных пользователей.
func (r *postgresVideoRepo) RecordView(ctx context.Context, view *domain.ViewRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO views (id, video_id, user_id, watch_duration, completion_percentage, is_completed, started_at)
        VALUES (:id, :video_id, :user_id, :watch_duration, :completion_percentage, :is_completed, :started_at)`,
		view,
	); err != nil {
		r.log.Errorw("Failed to insert view record", "error", err, "videoID", view.VideoID)
		return fmt.Errorf("repository: failed to insert view: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE videos SET views = views + 1 WHERE id = $1`, view.VideoID,
	); err != nil {
		r.log.Errorw("Failed to increment video views", "error", err, "videoID", view.VideoID)
		return fmt.Errorf("repository: failed to increment views: %w", err)
	}

	if view.UserID != nil {
		// Повторный просмотр обновляет существующую запись истории
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO watch_history (id, user_id, video_id, watch_duration, watched_at)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (user_id, video_id) DO UPDATE SET
                watch_duration = EXCLUDED.watch_duration,
                watched_at = EXCLUDED.watched_at`,
			uuid.New(), *view.UserID, view.VideoID, view.WatchDuration, view.StartedAt,
		); err != nil {
			r.log.Errorw("Failed to upsert watch history", "error", err, "userID", *view.UserID)
			return fmt.Errorf("repository: failed to upsert watch history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit view: %w", err)
	}

	return nil
}

// ViewStats возвращает агрегированную статистику просмотров видео.
func (r *postgresVideoRepo) ViewStats(ctx context.Context, videoID uuid.UUID) (*domain.VideoViewStats, error) {
	stats := domain.VideoViewStats{VideoID: videoID}
	query := `
        SELECT
            COUNT(*)                                   AS total_views,
            COUNT(DISTINCT user_id)                    AS unique_viewers,
            COALESCE(AVG(watch_duration), 0)           AS avg_watch_duration
        FROM views
        WHERE video_id = $1`

	err := r.db.QueryRowxContext(ctx, query, videoID).Scan(
		&stats.TotalViews, &stats.UniqueViewers, &stats.AvgWatchTime,
	)
	if err != nil {
		r.log.Errorw("Failed to get view stats", "error", err, "videoID", videoID)
		return nil, fmt.Errorf("repository: failed to get view stats: %w", err)
	}

	return &stats, nil
}

// WatchHistory возвращает историю просмотров пользователя, свежие первыми.
func (r *postgresVideoRepo) WatchHistory(ctx context.Context, userID uuid.UUID, skip, limit int) ([]domain.WatchHistoryEntry, error) {
	var entries []domain.WatchHistoryEntry
	query := `
        SELECT id, user_id, video_id, watch_duration, watched_at
        FROM watch_history
        WHERE user_id = $1
        ORDER BY watched_at DESC
        OFFSET $2 LIMIT $3`

	if err := r.db.SelectContext(ctx, &entries, query, userID, skip, limit); err != nil {
		r.log.Errorw("Failed to get watch history", "error", err, "userID", userID)
		return nil, fmt.Errorf("repository: failed to get watch history: %w", err)
	}
	if entries == nil {
		entries = []domain.WatchHistoryEntry{}
	}

	return entries, nil
}
