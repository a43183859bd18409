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

// postgresUserRepo реализует UserRepository для PostgreSQL.
type postgresUserRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresUserRepository создает репозиторий пользователей для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB, log *logger.Logger) UserRepository {
	return &postgresUserRepo{db: db, log: log}
}

const userColumns = `id, username, email, hashed_password, display_name, bio, profile_picture, cover_image,
       role, status, followers_count, following_count, videos_count, created_at, updated_at`

// Create сохраняет нового пользователя.
func (r *postgresUserRepo) Create(ctx context.Context, user *domain.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
        INSERT INTO users (
            id, username, email, hashed_password, display_name, bio,
            profile_picture, cover_image, role, status, created_at, updated_at
        ) VALUES (
            :id, :username, :email, :hashed_password, :display_name, :bio,
            :profile_picture, :cover_image, :role, :status, :created_at, :updated_at
        )`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnw("User with this email or username already exists", "email", user.Email, "username", user.Username)
			return ErrDuplicate
		}
		r.log.Errorw("Failed to create user in DB", "error", err, "email", user.Email)
		return fmt.Errorf("repository: failed to create user: %w", err)
	}

	r.log.Debugw("User created", "userID", user.ID, "username", user.Username)
	return nil
}

// GetByID возвращает пользователя по его идентификатору.
func (r *postgresUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail возвращает пользователя по email.
func (r *postgresUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByUsername возвращает пользователя по имени.
func (r *postgresUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *postgresUserRepo) getBy(ctx context.Context, column string, value interface{}) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	err := r.db.GetContext(ctx, &user, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugw("User not found", column, value)
			return nil, ErrNotFound
		}
		r.log.Errorw("Failed to get user from DB", "error", err, column, value)
		return nil, fmt.Errorf("repository: failed to get user: %w", err)
	}

	return &user, nil
}

// Update обновляет профильные поля пользователя.
func (r *postgresUserRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	query := `
        UPDATE users SET
            display_name = :display_name,
            bio = :bio,
            profile_picture = :profile_picture,
            cover_image = :cover_image,
            updated_at = :updated_at
        WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		r.log.Errorw("Failed to update user in DB", "error", err, "userID", user.ID)
		return fmt.Errorf("repository: failed to update user: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete удаляет пользователя. Связанный контент удаляется каскадно
// внешними ключами (ON DELETE CASCADE).
func (r *postgresUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.log.Errorw("Failed to delete user from DB", "error", err, "userID", id)
		return fmt.Errorf("repository: failed to delete user: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	r.log.Infow("User deleted", "userID", id)
	return nil
}

// SetStatus меняет статус учетной записи.
func (r *postgresUserRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error {
	return r.setField(ctx, id, "status", string(status))
}

// SetRole меняет роль пользователя.
func (r *postgresUserRepo) SetRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error {
	return r.setField(ctx, id, "role", string(role))
}

func (r *postgresUserRepo) setField(ctx context.Context, id uuid.UUID, column, value string) error {
	query := `UPDATE users SET ` + column + ` = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, value, time.Now())
	if err != nil {
		r.log.Errorw("Failed to update user field", "error", err, "userID", id, "field", column)
		return fmt.Errorf("repository: failed to update user %s: %w", column, err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// List возвращает страницу пользователей, новые первыми.
func (r *postgresUserRepo) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	var users []domain.User
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	if err := r.db.SelectContext(ctx, &users, query, skip, limit); err != nil {
		r.log.Errorw("Failed to list users", "error", err)
		return nil, fmt.Errorf("repository: failed to list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}

	return users, nil
}

// AdjustFollowerCounts атомарно сдвигает счетчики подписчиков.
func (r *postgresUserRepo) AdjustFollowerCounts(ctx context.Context, followerID, followingID uuid.UUID, delta int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET followers_count = GREATEST(followers_count + $2, 0) WHERE id = $1`,
		followingID, delta,
	); err != nil {
		r.log.Errorw("Failed to adjust followers count", "error", err, "userID", followingID)
		return fmt.Errorf("repository: failed to adjust followers count: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET following_count = GREATEST(following_count + $2, 0) WHERE id = $1`,
		followerID, delta,
	); err != nil {
		r.log.Errorw("Failed to adjust following count", "error", err, "userID", followerID)
		return fmt.Errorf("repository: failed to adjust following count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit follower counts: %w", err)
	}

	return nil
}

// PlatformStats возвращает сводную статистику для админ-панели.
func (r *postgresUserRepo) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	var stats domain.PlatformStats
	query := `
        SELECT
            (SELECT COUNT(*) FROM users)                                AS total_users,
            (SELECT COUNT(*) FROM users WHERE status = 'banned')        AS banned_users,
            (SELECT COUNT(*) FROM users WHERE role = 'admin')           AS admin_count,
            (SELECT COUNT(*) FROM videos)                               AS total_videos,
            (SELECT COALESCE(SUM(views), 0) FROM videos)                AS total_views`

	err := r.db.QueryRowxContext(ctx, query).Scan(
		&stats.TotalUsers, &stats.BannedUsers, &stats.AdminCount, &stats.TotalVideos, &stats.TotalViews,
	)
	if err != nil {
		r.log.Errorw("Failed to get platform stats", "error", err)
		return nil, fmt.Errorf("repository: failed to get platform stats: %w", err)
	}

	return &stats, nil
}
