package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/pkg/logger"
)

// fakeSubscriptionService фиксированные ответы для проверки HTTP-слоя.
type fakeSubscriptionService struct {
	status       *domain.SubscriptionStatus
	subscribed   *domain.SubscribeResult
	subscription *domain.Subscription
	plans        []domain.Plan
	err          error
}

func (f *fakeSubscriptionService) GetStatus(context.Context, uuid.UUID) (*domain.SubscriptionStatus, error) {
	return f.status, f.err
}

func (f *fakeSubscriptionService) Subscribe(context.Context, uuid.UUID, string) (*domain.SubscribeResult, error) {
	return f.subscribed, f.err
}

func (f *fakeSubscriptionService) ListPlans(context.Context) ([]domain.Plan, error) {
	return f.plans, f.err
}

func (f *fakeSubscriptionService) ListAllPlans(context.Context) ([]domain.Plan, error) {
	return f.plans, f.err
}

func (f *fakeSubscriptionService) CreatePlan(context.Context, uuid.UUID, domain.PlanRequest) (*domain.Plan, error) {
	return nil, f.err
}

func (f *fakeSubscriptionService) UpdatePlan(context.Context, uuid.UUID, domain.PlanRequest) (*domain.Plan, error) {
	return nil, f.err
}

func (f *fakeSubscriptionService) DeactivatePlan(context.Context, uuid.UUID) error { return f.err }

func (f *fakeSubscriptionService) PlanStats(context.Context) (*domain.PlanStats, error) {
	return nil, f.err
}

func (f *fakeSubscriptionService) AdminSetExpiry(context.Context, uuid.UUID, time.Time) (*domain.Subscription, error) {
	return f.subscription, f.err
}

func (f *fakeSubscriptionService) AdminExtendByDays(context.Context, uuid.UUID, int) (*domain.Subscription, error) {
	return f.subscription, f.err
}

func setPrincipal(principal *domain.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(middleware.ContextPrincipalKey), principal)
		c.Next()
	}
}

func newSubscriptionRouter(svc *fakeSubscriptionService, principal *domain.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSubscriptionHandler(svc, logger.NewNop())

	router := gin.New()
	group := router.Group("/api/v1")
	if principal != nil {
		group.Use(setPrincipal(principal))
	}
	group.GET("/subscription/status", h.Status)
	group.POST("/subscription/subscribe", h.Subscribe)
	group.GET("/plans", h.ListPlans)
	return router
}

func TestSubscriptionStatusEndpoint(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).UTC()
	svc := &fakeSubscriptionService{
		status: &domain.SubscriptionStatus{ExpiresAt: &expiresAt, RemainingSeconds: 3600, IsActive: true},
	}
	principal := &domain.Principal{UserID: uuid.New()}
	router := newSubscriptionRouter(svc, principal)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscription/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got domain.SubscriptionStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.IsActive)
	assert.Equal(t, int64(3600), got.RemainingSeconds)
}

func TestSubscriptionStatusRequiresAuth(t *testing.T) {
	router := newSubscriptionRouter(&fakeSubscriptionService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscription/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubscribeEndpoint(t *testing.T) {
	principal := &domain.Principal{UserID: uuid.New()}

	t.Run("success", func(t *testing.T) {
		expiresAt := time.Now().Add(30 * 24 * time.Hour).UTC()
		svc := &fakeSubscriptionService{
			subscribed: &domain.SubscribeResult{
				PlanID:   uuid.NewString(),
				PlanName: "Monthly",
				SubscriptionStatus: domain.SubscriptionStatus{
					ExpiresAt:        &expiresAt,
					RemainingSeconds: 30 * 24 * 3600,
					IsActive:         true,
				},
			},
		}
		router := newSubscriptionRouter(svc, principal)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/subscribe",
			strings.NewReader(`{"plan_id":"monthly"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		// Ответ несет статус доступа после продления, а не сырую запись
		var got map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Contains(t, got, "plan_name")
		assert.Contains(t, got, "expires_at")
		assert.Contains(t, got, "remaining_seconds")
		assert.Contains(t, got, "is_active")

		var result domain.SubscribeResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "Monthly", result.PlanName)
		assert.True(t, result.IsActive)
		assert.Equal(t, int64(30*24*3600), result.RemainingSeconds)
	})

	t.Run("missing plan_id", func(t *testing.T) {
		router := newSubscriptionRouter(&fakeSubscriptionService{}, principal)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/subscribe",
			strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown plan maps to 404", func(t *testing.T) {
		router := newSubscriptionRouter(&fakeSubscriptionService{err: domain.ErrPlanNotFound}, principal)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/subscribe",
			strings.NewReader(`{"plan_id":"ghost"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListPlansEndpoint(t *testing.T) {
	svc := &fakeSubscriptionService{
		plans: []domain.Plan{
			{ID: uuid.New(), Name: "Monthly", Status: domain.PlanStatusActive},
		},
	}
	router := newSubscriptionRouter(svc, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Plans []domain.Plan `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Plans, 1)
	assert.Equal(t, "Monthly", got.Plans[0].Name)
}
