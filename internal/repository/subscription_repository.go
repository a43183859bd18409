package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
)

// SubscriptionRepository хранилище записей о подписках пользователей.
// На пользователя существует не более одной записи (user_id — первичный ключ).
type SubscriptionRepository interface {
	// GetByUserID возвращает запись о подписке пользователя или ErrNotFound.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error)

	// Subscribe атомарно создает или продлевает подписку: срок считается
	// от максимума из текущего expires_at и now, чтобы параллельные
	// продления не теряли оплаченное время.
	Subscribe(ctx context.Context, userID uuid.UUID, planID, planName string, durationSeconds int64, now time.Time) (*domain.Subscription, error)

	// SetExpiry напрямую задает срок подписки (админ-операция). Создает
	// запись, если ее нет; план при этом не меняется.
	SetExpiry(ctx context.Context, userID uuid.UUID, expiresAt time.Time, now time.Time) (*domain.Subscription, error)

	// ExtendByDays продлевает существующую подписку на N дней.
	// Возвращает ErrNotFound, если записи о подписке нет.
	ExtendByDays(ctx context.Context, userID uuid.UUID, days int, now time.Time) (*domain.Subscription, error)
}

// PlanRepository каталог тарифных планов.
type PlanRepository interface {
	// Resolve находит активный план по идентификатору: сначала по UUID,
	// затем по legacy-ключу или имени. Возвращает ErrNotFound.
	Resolve(ctx context.Context, key string) (*domain.Plan, error)

	// GetByID возвращает план по UUID независимо от статуса.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error)

	// ListActive возвращает активные планы для публичного листинга.
	ListActive(ctx context.Context) ([]domain.Plan, error)

	// ListAll возвращает все планы, включая неактивные (админ-панель).
	ListAll(ctx context.Context) ([]domain.Plan, error)

	Create(ctx context.Context, plan *domain.Plan) error
	Update(ctx context.Context, plan *domain.Plan) error

	// Deactivate переводит план в статус inactive. Планы не удаляются,
	// чтобы не рвать ссылки из существующих подписок.
	Deactivate(ctx context.Context, id uuid.UUID) error

	Stats(ctx context.Context) (*domain.PlanStats, error)
}
