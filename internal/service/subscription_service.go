package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/kafka"
	"github.com/videohub/videohub-api/internal/metrics"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"
)

// SubscriptionService интерфейс сервиса подписок и каталога планов.
type SubscriptionService interface {
	// GetStatus возвращает текущий статус подписки пользователя.
	// Отсутствие записи — валидное состояние "нет подписки", не ошибка.
	GetStatus(ctx context.Context, userID uuid.UUID) (*domain.SubscriptionStatus, error)

	// Subscribe активирует или продлевает подписку по идентификатору плана
	// и возвращает статус доступа после продления.
	Subscribe(ctx context.Context, userID uuid.UUID, planKey string) (*domain.SubscribeResult, error)

	// ListPlans возвращает активные планы для публичной витрины.
	ListPlans(ctx context.Context) ([]domain.Plan, error)

	// Администрирование каталога планов
	ListAllPlans(ctx context.Context) ([]domain.Plan, error)
	CreatePlan(ctx context.Context, adminID uuid.UUID, req domain.PlanRequest) (*domain.Plan, error)
	UpdatePlan(ctx context.Context, planID uuid.UUID, req domain.PlanRequest) (*domain.Plan, error)
	DeactivatePlan(ctx context.Context, planID uuid.UUID) error
	PlanStats(ctx context.Context) (*domain.PlanStats, error)

	// Администрирование подписок
	AdminSetExpiry(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (*domain.Subscription, error)
	AdminExtendByDays(ctx context.Context, userID uuid.UUID, days int) (*domain.Subscription, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	planRepo         repository.PlanRepository
	cache            *repository.RedisCacheRepository
	producer         kafka.Producer
	metrics          metrics.PlatformMetrics
	log              *logger.Logger

	// Источник времени; в тестах подменяется
	now func() time.Time
}

// NewSubscriptionService создает новый сервис подписок.
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	planRepo repository.PlanRepository,
	cache *repository.RedisCacheRepository,
	producer kafka.Producer,
	platformMetrics metrics.PlatformMetrics,
	log *logger.Logger,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		cache:            cache,
		producer:         producer,
		metrics:          platformMetrics,
		log:              log,
		now:              time.Now,
	}
}

// GetStatus возвращает статус подписки, производный от текущего момента.
func (s *subscriptionService) GetStatus(ctx context.Context, userID uuid.UUID) (*domain.SubscriptionStatus, error) {
	sub, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Подписки никогда не было
			return &domain.SubscriptionStatus{}, nil
		}
		return nil, fmt.Errorf("service: failed to get subscription status: %w", err)
	}

	status := sub.StatusAt(s.now())
	return &status, nil
}

// Subscribe разрешает план и атомарно продлевает подписку. Активная
// подписка продлевается от своего expires_at, истекшая или отсутствующая
// начинается заново от текущего момента.
func (s *subscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, planKey string) (*domain.SubscribeResult, error) {
	plan, err := s.planRepo.Resolve(ctx, planKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warnw("Subscribe attempt with unknown plan", "userID", userID, "planKey", planKey)
			s.metrics.IncSubscriptionDenied("plan_not_found")
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("service: failed to resolve plan: %w", err)
	}

	// План с нулевой длительностью не продлевает ничего
	if plan.DurationSeconds <= 0 {
		s.log.Warnw("Plan has non-positive duration", "planID", plan.ID, "duration", plan.DurationSeconds)
		s.metrics.IncSubscriptionDenied("invalid_duration")
		return nil, domain.ErrPlanNotFound
	}

	now := s.now()
	existing, err := s.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("service: failed to check existing subscription: %w", err)
	}
	isExtension := existing != nil && existing.ExpiresAt.After(now)

	sub, err := s.subscriptionRepo.Subscribe(ctx, userID, plan.ID.String(), plan.Name, plan.DurationSeconds, now)
	if err != nil {
		return nil, fmt.Errorf("service: failed to subscribe: %w", err)
	}

	s.metrics.IncSubscriptionActivated(plan.Name)
	s.metrics.ObserveSubscriptionDuration(plan.Name, float64(plan.DurationSeconds))

	topic := kafka.TopicSubscriptionActivated
	if isExtension {
		topic = kafka.TopicSubscriptionExtended
		s.metrics.IncSubscriptionExtended("self_service")
	}
	if err := s.producer.PublishSubscriptionEvent(ctx, topic, sub); err != nil {
		// Подписка уже записана, событие не роняет операцию
		s.log.Warnw("Failed to publish subscription event", "error", err, "userID", userID, "topic", topic)
	}

	s.log.Infow("Subscription processed", "userID", userID, "plan", plan.Name, "expiresAt", sub.ExpiresAt, "extension", isExtension)
	return &domain.SubscribeResult{
		PlanID:             sub.PlanID,
		PlanName:           sub.PlanName,
		SubscriptionStatus: sub.StatusAt(now),
	}, nil
}

// ListPlans возвращает активные планы, используя кеш.
func (s *subscriptionService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCachedActivePlans(ctx); err != nil {
			s.log.Warnw("Error getting plans from cache", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list plans: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheActivePlans(ctx, plans); err != nil {
			s.log.Warnw("Failed to cache active plans", "error", err)
		}
	}

	return plans, nil
}

// ListAllPlans возвращает все планы для админ-панели.
func (s *subscriptionService) ListAllPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.planRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list all plans: %w", err)
	}
	return plans, nil
}

// CreatePlan валидирует и сохраняет новый план.
func (s *subscriptionService) CreatePlan(ctx context.Context, adminID uuid.UUID, req domain.PlanRequest) (*domain.Plan, error) {
	if err := validatePlanRequest(req); err != nil {
		return nil, err
	}

	status := domain.PlanStatusActive
	if req.Status != "" {
		status = domain.PlanStatus(req.Status)
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	plan := &domain.Plan{
		ID:              uuid.New(),
		Name:            req.Name,
		LegacyKey:       req.LegacyKey,
		DurationSeconds: req.DurationSeconds,
		Price:           req.Price,
		Currency:        currency,
		Tags:            domain.NormalizePlanTags(req.Tags),
		Description:     req.Description,
		Status:          status,
		CreatedBy:       &adminID,
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("service: failed to create plan: %w", err)
	}

	s.invalidatePlansCache(ctx)
	s.log.Infow("Plan created", "planID", plan.ID, "name", plan.Name, "adminID", adminID)
	return plan, nil
}

// UpdatePlan валидирует и обновляет существующий план.
func (s *subscriptionService) UpdatePlan(ctx context.Context, planID uuid.UUID, req domain.PlanRequest) (*domain.Plan, error) {
	if err := validatePlanRequest(req); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("service: failed to get plan: %w", err)
	}

	plan.Name = req.Name
	plan.LegacyKey = req.LegacyKey
	plan.DurationSeconds = req.DurationSeconds
	plan.Price = req.Price
	if req.Currency != "" {
		plan.Currency = req.Currency
	}
	plan.Tags = domain.NormalizePlanTags(req.Tags)
	plan.Description = req.Description
	if req.Status != "" {
		plan.Status = domain.PlanStatus(req.Status)
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.ErrPlanNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("service: failed to update plan: %w", err)
	}

	s.invalidatePlansCache(ctx)
	s.log.Infow("Plan updated", "planID", plan.ID, "name", plan.Name)
	return plan, nil
}

// DeactivatePlan скрывает план из витрины. Существующие подписки не трогаются.
func (s *subscriptionService) DeactivatePlan(ctx context.Context, planID uuid.UUID) error {
	if err := s.planRepo.Deactivate(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrPlanNotFound
		}
		return fmt.Errorf("service: failed to deactivate plan: %w", err)
	}

	s.invalidatePlansCache(ctx)
	s.log.Infow("Plan deactivated", "planID", planID)
	return nil
}

// PlanStats возвращает статистику каталога планов.
func (s *subscriptionService) PlanStats(ctx context.Context) (*domain.PlanStats, error) {
	stats, err := s.planRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get plan stats: %w", err)
	}
	return stats, nil
}

// AdminSetExpiry напрямую перезаписывает срок подписки пользователя.
func (s *subscriptionService) AdminSetExpiry(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (*domain.Subscription, error) {
	sub, err := s.subscriptionRepo.SetExpiry(ctx, userID, expiresAt, s.now())
	if err != nil {
		return nil, fmt.Errorf("service: failed to set subscription expiry: %w", err)
	}

	if err := s.producer.PublishSubscriptionEvent(ctx, kafka.TopicSubscriptionOverride, sub); err != nil {
		s.log.Warnw("Failed to publish subscription override event", "error", err, "userID", userID)
	}

	s.log.Infow("Subscription expiry overridden", "userID", userID, "expiresAt", expiresAt)
	return sub, nil
}

// AdminExtendByDays продлевает существующую подписку на 1-365 дней.
func (s *subscriptionService) AdminExtendByDays(ctx context.Context, userID uuid.UUID, days int) (*domain.Subscription, error) {
	if days < 1 || days > 365 {
		return nil, domain.NewValidationError("days", "must be between 1 and 365")
	}

	sub, err := s.subscriptionRepo.ExtendByDays(ctx, userID, days, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("service: failed to extend subscription: %w", err)
	}

	s.metrics.IncSubscriptionExtended("admin")
	if err := s.producer.PublishSubscriptionEvent(ctx, kafka.TopicSubscriptionExtended, sub); err != nil {
		s.log.Warnw("Failed to publish subscription extension event", "error", err, "userID", userID)
	}

	s.log.Infow("Subscription extended by admin", "userID", userID, "days", days, "expiresAt", sub.ExpiresAt)
	return sub, nil
}

func (s *subscriptionService) invalidatePlansCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateActivePlansCache(ctx); err != nil {
		s.log.Warnw("Failed to invalidate plans cache", "error", err)
	}
}

func validatePlanRequest(req domain.PlanRequest) error {
	if req.DurationSeconds <= 0 {
		return domain.NewValidationError("duration_seconds", "must be positive")
	}
	if req.Price < 0 {
		return domain.NewValidationError("price", "must not be negative")
	}
	return nil
}
