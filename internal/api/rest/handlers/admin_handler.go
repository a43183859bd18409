package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/internal/service"
	"github.com/videohub/videohub-api/pkg/logger"
	"github.com/videohub/videohub-api/pkg/res"
)

// AdminHandler обрабатывает административные операции: управление
// пользователями, каталогом планов и подписками.
type AdminHandler struct {
	admin         service.AdminService
	subscriptions service.SubscriptionService
	log           *logger.Logger
}

// NewAdminHandler создает новый административный обработчик.
func NewAdminHandler(admin service.AdminService, subscriptions service.SubscriptionService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, subscriptions: subscriptions, log: log}
}

// Verify подтверждает валидность административного токена.
// GET /api/v1/admin/verify
func (h *AdminHandler) Verify(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  principal.UserID,
		"email":    principal.Email,
		"is_admin": principal.IsAdmin,
	})
}

// ListUsers возвращает страницу пользователей.
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	skip, limit := pageParams(c)

	users, err := h.admin.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// BanUser блокирует пользователя.
// POST /api/v1/admin/users/:id/ban
func (h *AdminHandler) BanUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.admin.BanUser(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("User banned", "user_id", userID)
	res.Message(c, http.StatusOK, "user banned")
}

// UnbanUser снимает блокировку.
// DELETE /api/v1/admin/users/:id/ban
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.admin.UnbanUser(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "user unbanned")
}

// PromoteToAdmin выдает пользователю права администратора.
// POST /api/v1/admin/users/:id/promote
func (h *AdminHandler) PromoteToAdmin(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.admin.PromoteToAdmin(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("User promoted to admin", "user_id", userID)
	res.Message(c, http.StatusOK, "user promoted to admin")
}

// PlatformStats возвращает агрегированную статистику платформы.
// GET /api/v1/admin/stats
func (h *AdminHandler) PlatformStats(c *gin.Context) {
	stats, err := h.admin.PlatformStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListAllPlans возвращает все планы, включая неактивные.
// GET /api/v1/admin/plans
func (h *AdminHandler) ListAllPlans(c *gin.Context) {
	plans, err := h.subscriptions.ListAllPlans(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// CreatePlan добавляет план в каталог.
// POST /api/v1/admin/plans
func (h *AdminHandler) CreatePlan(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	plan, err := h.subscriptions.CreatePlan(c.Request.Context(), principal.UserID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("Plan created", "plan_id", plan.ID, "name", plan.Name, "admin_id", principal.UserID)
	c.JSON(http.StatusCreated, plan)
}

// UpdatePlan изменяет план.
// PUT /api/v1/admin/plans/:id
func (h *AdminHandler) UpdatePlan(c *gin.Context) {
	planID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	plan, err := h.subscriptions.UpdatePlan(c.Request.Context(), planID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DeactivatePlan скрывает план с витрины. Уже оформленные подписки
// продолжают действовать до истечения срока.
// DELETE /api/v1/admin/plans/:id
func (h *AdminHandler) DeactivatePlan(c *gin.Context) {
	planID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.subscriptions.DeactivatePlan(c.Request.Context(), planID); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "plan deactivated")
}

// PlanStats возвращает статистику каталога планов.
// GET /api/v1/admin/plans/stats
func (h *AdminHandler) PlanStats(c *gin.Context) {
	stats, err := h.subscriptions.PlanStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UserSubscription возвращает статус подписки произвольного пользователя.
// GET /api/v1/admin/users/:id/subscription
func (h *AdminHandler) UserSubscription(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	status, err := h.subscriptions.GetStatus(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// SetSubscriptionExpiry напрямую задает срок подписки пользователя.
// Запись создается, если ее не было.
// PUT /api/v1/admin/users/:id/subscription
func (h *AdminHandler) SetSubscriptionExpiry(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.AdminSetExpiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		res.Error(c, http.StatusBadRequest, "expires_at must be an RFC3339 timestamp")
		return
	}

	subscription, err := h.subscriptions.AdminSetExpiry(c.Request.Context(), userID, expiresAt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("Subscription expiry overridden",
		"user_id", userID,
		"expires_at", subscription.ExpiresAt)

	c.JSON(http.StatusOK, subscription)
}

// ExtendSubscription продлевает существующую подписку на N дней.
// POST /api/v1/admin/users/:id/subscription/extend?days=30
func (h *AdminHandler) ExtendSubscription(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		res.Error(c, http.StatusBadRequest, "days must be an integer")
		return
	}

	subscription, err := h.subscriptions.AdminExtendByDays(c.Request.Context(), userID, days)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("Subscription extended by admin",
		"user_id", userID,
		"days", days,
		"expires_at", subscription.ExpiresAt)

	c.JSON(http.StatusOK, subscription)
}
