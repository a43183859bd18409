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

// postgresPlaylistRepo реализует PlaylistRepository для PostgreSQL.
type postgresPlaylistRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresPlaylistRepository создает репозиторий плейлистов для PostgreSQL.
func NewPostgresPlaylistRepository(db *sqlx.DB, log *logger.Logger) PlaylistRepository {
	return &postgresPlaylistRepo{db: db, log: log}
}

const playlistColumns = `id, user_id, title, description, privacy, video_count, views, likes, created_at, updated_at`

// Create сохраняет новый плейлист.
func (r *postgresPlaylistRepo) Create(ctx context.Context, playlist *domain.Playlist) error {
	now := time.Now()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	query := `
        INSERT INTO playlists (id, user_id, title, description, privacy, created_at, updated_at)
        VALUES (:id, :user_id, :title, :description, :privacy, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, playlist); err != nil {
		r.log.Errorw("Failed to create playlist in DB", "error", err, "userID", playlist.UserID)
		return fmt.Errorf("repository: failed to create playlist: %w", err)
	}

	r.log.Debugw("Playlist created", "playlistID", playlist.ID, "userID", playlist.UserID)
	return nil
}

// GetByID возвращает плейлист по идентификатору.
func (r *postgresPlaylistRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Playlist, error) {
	var playlist domain.Playlist
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = $1`

	err := r.db.GetContext(ctx, &playlist, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to get playlist from DB", "error", err, "playlistID", id)
		return nil, fmt.Errorf("repository: failed to get playlist: %w", err)
	}

	return &playlist, nil
}

// Update обновляет метаданные плейлиста.
func (r *postgresPlaylistRepo) Update(ctx context.Context, playlist *domain.Playlist) error {
	playlist.UpdatedAt = time.Now()

	query := `
        UPDATE playlists SET
            title = :title,
            description = :description,
            privacy = :privacy,
            updated_at = :updated_at
        WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, playlist)
	if err != nil {
		r.log.Errorw("Failed to update playlist in DB", "error", err, "playlistID", playlist.ID)
		return fmt.Errorf("repository: failed to update playlist: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete удаляет плейлист. Позиции удаляются каскадно.
func (r *postgresPlaylistRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		r.log.Errorw("Failed to delete playlist from DB", "error", err, "playlistID", id)
		return fmt.Errorf("repository: failed to delete playlist: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByUser возвращает плейлисты пользователя.
func (r *postgresPlaylistRepo) ListByUser(ctx context.Context, userID uuid.UUID, includePrivate bool, skip, limit int) ([]domain.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE user_id = $1`
	if !includePrivate {
		query += ` AND privacy = 'public'`
	}
	query += ` ORDER BY created_at DESC OFFSET $2 LIMIT $3`

	var playlists []domain.Playlist
	if err := r.db.SelectContext(ctx, &playlists, query, userID, skip, limit); err != nil {
		r.log.Errorw("Failed to list playlists", "error", err, "userID", userID)
		return nil, fmt.Errorf("repository: failed to list playlists: %w", err)
	}
	if playlists == nil {
		playlists = []domain.Playlist{}
	}

	return playlists, nil
}

// AddVideo добавляет видео в конец плейлиста.
func (r *postgresPlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO playlist_items (playlist_id, video_id, position, added_at)
        VALUES ($1, $2,
            (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_items WHERE playlist_id = $1),
            $3)`,
		playlistID, videoID, time.Now(),
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.log.Errorw("Failed to add video to playlist", "error", err, "playlistID", playlistID, "videoID", videoID)
		return fmt.Errorf("repository: failed to add video to playlist: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE playlists SET video_count = video_count + 1, updated_at = $2 WHERE id = $1`,
		playlistID, time.Now(),
	); err != nil {
		return fmt.Errorf("repository: failed to increment playlist video count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit playlist addition: %w", err)
	}

	return nil
}

// RemoveVideo убирает видео и уплотняет позиции оставшихся.
func (r *postgresPlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var position int
	err = tx.GetContext(ctx, &position,
		`DELETE FROM playlist_items WHERE playlist_id = $1 AND video_id = $2 RETURNING position`,
		playlistID, videoID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		r.log.Errorw("Failed to remove video from playlist", "error", err, "playlistID", playlistID, "videoID", videoID)
		return fmt.Errorf("repository: failed to remove video from playlist: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE playlist_items SET position = position - 1 WHERE playlist_id = $1 AND position > $2`,
		playlistID, position,
	); err != nil {
		return fmt.Errorf("repository: failed to compact playlist positions: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE playlists SET video_count = GREATEST(video_count - 1, 0), updated_at = $2 WHERE id = $1`,
		playlistID, time.Now(),
	); err != nil {
		return fmt.Errorf("repository: failed to decrement playlist video count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit playlist removal: %w", err)
	}

	return nil
}

// Videos возвращает видео плейлиста в порядке позиций.
func (r *postgresPlaylistRepo) Videos(ctx context.Context, playlistID uuid.UUID, skip, limit int) ([]domain.Video, error) {
	var videos []domain.Video
	query := videoSelect + `
        JOIN playlist_items pi ON pi.video_id = v.id
        WHERE pi.playlist_id = $1
        ORDER BY pi.position
        OFFSET $2 LIMIT $3`

	if err := r.db.SelectContext(ctx, &videos, query, playlistID, skip, limit); err != nil {
		r.log.Errorw("Failed to list playlist videos", "error", err, "playlistID", playlistID)
		return nil, fmt.Errorf("repository: failed to list playlist videos: %w", err)
	}
	if videos == nil {
		videos = []domain.Video{}
	}

	return videos, nil
}
