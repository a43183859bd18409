package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/kafka"
	"github.com/videohub/videohub-api/internal/metrics"
	"github.com/videohub/videohub-api/internal/repository"
	"github.com/videohub/videohub-api/pkg/logger"
)

// fakeSubscriptionRepo повторяет семантику SQL-апсерта в памяти.
type fakeSubscriptionRepo struct {
	subs map[uuid.UUID]*domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uuid.UUID]*domain.Subscription)}
}

func (f *fakeSubscriptionRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptionRepo) Subscribe(_ context.Context, userID uuid.UUID, planID, planName string, durationSeconds int64, now time.Time) (*domain.Subscription, error) {
	base := now
	if existing, ok := f.subs[userID]; ok && existing.ExpiresAt.After(now) {
		base = existing.ExpiresAt
	}
	sub, ok := f.subs[userID]
	if !ok {
		sub = &domain.Subscription{UserID: userID, CreatedAt: now}
		f.subs[userID] = sub
	}
	sub.ExpiresAt = base.Add(time.Duration(durationSeconds) * time.Second)
	sub.PlanID = planID
	sub.PlanName = planName
	sub.UpdatedAt = now
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptionRepo) SetExpiry(_ context.Context, userID uuid.UUID, expiresAt time.Time, now time.Time) (*domain.Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok {
		sub = &domain.Subscription{UserID: userID, CreatedAt: now}
		f.subs[userID] = sub
	}
	sub.ExpiresAt = expiresAt
	sub.UpdatedAt = now
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptionRepo) ExtendByDays(_ context.Context, userID uuid.UUID, days int, now time.Time) (*domain.Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	base := sub.ExpiresAt
	if now.After(base) {
		base = now
	}
	sub.ExpiresAt = base.AddDate(0, 0, days)
	sub.UpdatedAt = now
	copied := *sub
	return &copied, nil
}

// fakePlanRepo разрешает планы по UUID, legacy-ключу и имени.
type fakePlanRepo struct {
	plans []domain.Plan
}

func (f *fakePlanRepo) Resolve(_ context.Context, key string) (*domain.Plan, error) {
	for i := range f.plans {
		plan := &f.plans[i]
		if plan.Status != domain.PlanStatusActive {
			continue
		}
		if plan.ID.String() == key || plan.LegacyKey == key || plan.Name == key {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Plan, error) {
	for i := range f.plans {
		if f.plans[i].ID == id {
			copied := f.plans[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) ListActive(_ context.Context) ([]domain.Plan, error) {
	var active []domain.Plan
	for _, plan := range f.plans {
		if plan.Status == domain.PlanStatusActive {
			active = append(active, plan)
		}
	}
	return active, nil
}

func (f *fakePlanRepo) ListAll(_ context.Context) ([]domain.Plan, error) {
	return append([]domain.Plan(nil), f.plans...), nil
}

func (f *fakePlanRepo) Create(_ context.Context, plan *domain.Plan) error {
	for _, existing := range f.plans {
		if existing.Name == plan.Name {
			return repository.ErrDuplicate
		}
	}
	f.plans = append(f.plans, *plan)
	return nil
}

func (f *fakePlanRepo) Update(_ context.Context, plan *domain.Plan) error {
	for i := range f.plans {
		if f.plans[i].ID == plan.ID {
			f.plans[i] = *plan
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakePlanRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	for i := range f.plans {
		if f.plans[i].ID == id {
			f.plans[i].Status = domain.PlanStatusInactive
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakePlanRepo) Stats(_ context.Context) (*domain.PlanStats, error) {
	stats := &domain.PlanStats{TotalPlans: len(f.plans)}
	for _, plan := range f.plans {
		if plan.Status == domain.PlanStatusActive {
			stats.ActivePlans++
			stats.ActivePlansPrice += plan.Price
		} else {
			stats.InactivePlans++
		}
	}
	return stats, nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSubscriptionService(subRepo repository.SubscriptionRepository, planRepo repository.PlanRepository) *subscriptionService {
	svc := NewSubscriptionService(
		subRepo,
		planRepo,
		nil,
		kafka.NopProducer{},
		metrics.NewPlatformMetrics(prometheus.NewRegistry(), logger.NewNop()),
		logger.NewNop(),
	)
	impl := svc.(*subscriptionService)
	impl.now = func() time.Time { return testNow }
	return impl
}

func monthlyPlan() domain.Plan {
	return domain.Plan{
		ID:              uuid.New(),
		Name:            "Monthly",
		LegacyKey:       "monthly",
		DurationSeconds: 30 * 86400,
		Price:           9.99,
		Currency:        "USD",
		Status:          domain.PlanStatusActive,
	}
}

func TestSubscribeFirstTime(t *testing.T) {
	plan := monthlyPlan()
	subRepo := newFakeSubscriptionRepo()
	svc := newTestSubscriptionService(subRepo, &fakePlanRepo{plans: []domain.Plan{plan}})
	userID := uuid.New()

	result, err := svc.Subscribe(context.Background(), userID, plan.ID.String())
	require.NoError(t, err)

	require.NotNil(t, result.ExpiresAt)
	assert.Equal(t, testNow.Add(30*24*time.Hour), *result.ExpiresAt)
	assert.Equal(t, plan.ID.String(), result.PlanID)
	assert.Equal(t, "Monthly", result.PlanName)
	assert.True(t, result.IsActive)
	assert.Equal(t, int64(30*24*3600), result.RemainingSeconds)
}

func TestSubscribeExtendsActiveSubscription(t *testing.T) {
	plan := monthlyPlan()
	subRepo := newFakeSubscriptionRepo()
	svc := newTestSubscriptionService(subRepo, &fakePlanRepo{plans: []domain.Plan{plan}})
	userID := uuid.New()

	// Действующая подписка еще на 10 дней
	existingExpiry := testNow.Add(10 * 24 * time.Hour)
	subRepo.subs[userID] = &domain.Subscription{UserID: userID, ExpiresAt: existingExpiry}

	result, err := svc.Subscribe(context.Background(), userID, plan.ID.String())
	require.NoError(t, err)

	// Продление складывается с остатком, а не перетирает его
	require.NotNil(t, result.ExpiresAt)
	assert.Equal(t, existingExpiry.Add(30*24*time.Hour), *result.ExpiresAt)
	assert.Equal(t, int64(40*24*3600), result.RemainingSeconds)
}

func TestSubscribeRestartsExpiredSubscription(t *testing.T) {
	plan := monthlyPlan()
	subRepo := newFakeSubscriptionRepo()
	svc := newTestSubscriptionService(subRepo, &fakePlanRepo{plans: []domain.Plan{plan}})
	userID := uuid.New()

	subRepo.subs[userID] = &domain.Subscription{UserID: userID, ExpiresAt: testNow.Add(-48 * time.Hour)}

	result, err := svc.Subscribe(context.Background(), userID, plan.ID.String())
	require.NoError(t, err)

	// Истекший остаток не переносится: отсчет от текущего момента
	require.NotNil(t, result.ExpiresAt)
	assert.Equal(t, testNow.Add(30*24*time.Hour), *result.ExpiresAt)
	assert.Equal(t, int64(30*24*3600), result.RemainingSeconds)
}

func TestSubscribeByLegacyKey(t *testing.T) {
	plan := monthlyPlan()
	svc := newTestSubscriptionService(newFakeSubscriptionRepo(), &fakePlanRepo{plans: []domain.Plan{plan}})

	result, err := svc.Subscribe(context.Background(), uuid.New(), "monthly")
	require.NoError(t, err)
	assert.Equal(t, plan.ID.String(), result.PlanID)
}

func TestSubscribeUnknownPlan(t *testing.T) {
	svc := newTestSubscriptionService(newFakeSubscriptionRepo(), &fakePlanRepo{})

	_, err := svc.Subscribe(context.Background(), uuid.New(), "no-such-plan")
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestSubscribeInactivePlanRejected(t *testing.T) {
	plan := monthlyPlan()
	plan.Status = domain.PlanStatusInactive
	svc := newTestSubscriptionService(newFakeSubscriptionRepo(), &fakePlanRepo{plans: []domain.Plan{plan}})

	_, err := svc.Subscribe(context.Background(), uuid.New(), plan.ID.String())
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestSubscribeZeroDurationPlanRejected(t *testing.T) {
	plan := monthlyPlan()
	plan.DurationSeconds = 0
	svc := newTestSubscriptionService(newFakeSubscriptionRepo(), &fakePlanRepo{plans: []domain.Plan{plan}})

	_, err := svc.Subscribe(context.Background(), uuid.New(), plan.ID.String())
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestGetStatus(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	svc := newTestSubscriptionService(subRepo, &fakePlanRepo{})
	userID := uuid.New()

	t.Run("no subscription record", func(t *testing.T) {
		status, err := svc.GetStatus(context.Background(), userID)
		require.NoError(t, err)

		assert.False(t, status.IsActive)
		assert.Zero(t, status.RemainingSeconds)
		assert.Nil(t, status.ExpiresAt)
	})

	t.Run("active subscription", func(t *testing.T) {
		subRepo.subs[userID] = &domain.Subscription{UserID: userID, ExpiresAt: testNow.Add(time.Hour)}

		status, err := svc.GetStatus(context.Background(), userID)
		require.NoError(t, err)

		assert.True(t, status.IsActive)
		assert.Equal(t, int64(3600), status.RemainingSeconds)
	})

	t.Run("expired subscription", func(t *testing.T) {
		subRepo.subs[userID] = &domain.Subscription{UserID: userID, ExpiresAt: testNow.Add(-time.Minute)}

		status, err := svc.GetStatus(context.Background(), userID)
		require.NoError(t, err)

		assert.False(t, status.IsActive)
		assert.Zero(t, status.RemainingSeconds)
		require.NotNil(t, status.ExpiresAt)
	})
}

func TestCreatePlan(t *testing.T) {
	planRepo := &fakePlanRepo{}
	svc := newTestSubscriptionService(newFakeSubscriptionRepo(), planRepo)
	adminID := uuid.New()

	t.Run("defaults and tag normalization", func(t *testing.T) {
		plan, err := svc.CreatePlan(context.Background(), adminID, domain.PlanRequest{
			Name:            "Yearly",
			DurationSeconds: 365 * 86400,
			Price:           99,
			Tags:            []string{"Best Value", "shiny", "best value"},
		})
		require.NoError(t, err)

		assert.Equal(t, "USD", plan.Currency)
		assert.Equal(t, domain.PlanStatusActive, plan.Status)
		assert.Equal(t, domain.StringList{"best value"}, plan.Tags)
		require.NotNil(t, plan.CreatedBy)
		assert.Equal(t, adminID, *plan.CreatedBy)
	})

	t.Run("non-positive duration rejected", func(t *testing.T) {
		_, err := svc.CreatePlan(context.Background(), adminID, domain.PlanRequest{Name: "Broken"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		_, err := svc.CreatePlan(context.Background(), adminID, domain.PlanRequest{
			Name:            "Negative",
			DurationSeconds: 60,
			Price:           -1,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.CreatePlan(context.Background(), adminID, domain.PlanRequest{
			Name:            "Yearly",
			DurationSeconds: 60,
		})
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})
}

func TestAdminExtendByDays(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	svc := newTestSubscriptionService(subRepo, &fakePlanRepo{})
	userID := uuid.New()

	t.Run("days out of range", func(t *testing.T) {
		_, err := svc.AdminExtendByDays(context.Background(), userID, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = svc.AdminExtendByDays(context.Background(), userID, 366)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing subscription", func(t *testing.T) {
		_, err := svc.AdminExtendByDays(context.Background(), userID, 30)
		assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
	})

	t.Run("extends from remaining time", func(t *testing.T) {
		expiry := testNow.Add(5 * 24 * time.Hour)
		subRepo.subs[userID] = &domain.Subscription{UserID: userID, ExpiresAt: expiry}

		sub, err := svc.AdminExtendByDays(context.Background(), userID, 7)
		require.NoError(t, err)
		assert.Equal(t, expiry.AddDate(0, 0, 7), sub.ExpiresAt)
	})

	t.Run("expired subscription extends from now", func(t *testing.T) {
		subRepo.subs[userID] = &domain.Subscription{UserID: userID, ExpiresAt: testNow.Add(-24 * time.Hour)}

		sub, err := svc.AdminExtendByDays(context.Background(), userID, 7)
		require.NoError(t, err)
		assert.Equal(t, testNow.AddDate(0, 0, 7), sub.ExpiresAt)
	})
}

func TestAdminSetExpiry(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	svc := newTestSubscriptionService(subRepo, &fakePlanRepo{})
	userID := uuid.New()

	// Записи не было: прямое назначение срока ее создает
	target := testNow.Add(90 * 24 * time.Hour)
	sub, err := svc.AdminSetExpiry(context.Background(), userID, target)
	require.NoError(t, err)
	assert.Equal(t, target, sub.ExpiresAt)

	// Повторное назначение перезаписывает срок без арифметики
	earlier := testNow.Add(24 * time.Hour)
	sub, err = svc.AdminSetExpiry(context.Background(), userID, earlier)
	require.NoError(t, err)
	assert.Equal(t, earlier, sub.ExpiresAt)
}

func TestDeactivatePlanKeepsSubscriptionsAlive(t *testing.T) {
	plan := monthlyPlan()
	planRepo := &fakePlanRepo{plans: []domain.Plan{plan}}
	subRepo := newFakeSubscriptionRepo()
	svc := newTestSubscriptionService(subRepo, planRepo)
	userID := uuid.New()

	_, err := svc.Subscribe(context.Background(), userID, plan.ID.String())
	require.NoError(t, err)

	require.NoError(t, svc.DeactivatePlan(context.Background(), plan.ID))

	// Подписка оформлена до деактивации и продолжает действовать
	status, err := svc.GetStatus(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, status.IsActive)

	// Но новую подписку на неактивный план оформить нельзя
	_, err = svc.Subscribe(context.Background(), uuid.New(), plan.ID.String())
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}
