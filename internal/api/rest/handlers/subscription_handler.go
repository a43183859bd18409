package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/internal/service"
	"github.com/videohub/videohub-api/pkg/logger"
	"github.com/videohub/videohub-api/pkg/res"
)

// SubscriptionHandler обрабатывает запросы статуса и оформления подписки.
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	log           *logger.Logger
}

// NewSubscriptionHandler создает новый обработчик подписок.
func NewSubscriptionHandler(subscriptions service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, log: log}
}

// Status возвращает текущий статус подписки аутентифицированного пользователя.
// GET /api/v1/subscription/status
func (h *SubscriptionHandler) Status(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	status, err := h.subscriptions.GetStatus(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// Subscribe активирует или продлевает подписку по выбранному плану.
// POST /api/v1/subscription/subscribe
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.subscriptions.Subscribe(c.Request.Context(), principal.UserID, req.PlanID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("Subscription activated",
		"user_id", principal.UserID,
		"plan", result.PlanName,
		"expires_at", result.ExpiresAt)

	c.JSON(http.StatusOK, result)
}

// ListPlans возвращает активные планы для публичной витрины.
// GET /api/v1/plans
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptions.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}
