package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
)

// UserRepository хранилище учетных записей пользователей.
type UserRepository interface {
	// Create сохраняет нового пользователя. Возвращает ErrDuplicate,
	// если email или username уже заняты.
	Create(ctx context.Context, user *domain.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update обновляет профильные поля пользователя.
	Update(ctx context.Context, user *domain.User) error

	// Delete удаляет пользователя вместе с его контентом (каскадно).
	Delete(ctx context.Context, id uuid.UUID) error

	// SetStatus меняет статус пользователя (active/banned).
	SetStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error

	// SetRole меняет роль пользователя (user/admin).
	SetRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error

	// List возвращает страницу пользователей для админ-панели.
	List(ctx context.Context, skip, limit int) ([]domain.User, error)

	// AdjustFollowerCounts атомарно сдвигает счетчики подписчиков:
	// у following меняется followers_count, у follower — following_count.
	AdjustFollowerCounts(ctx context.Context, followerID, followingID uuid.UUID, delta int) error

	// PlatformStats возвращает сводную статистику платформы.
	PlatformStats(ctx context.Context) (*domain.PlatformStats, error)
}
