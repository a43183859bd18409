package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
	"github.com/videohub/videohub-api/pkg/res"
)

// respondError переводит доменные ошибки в HTTP-статусы единым образом
// для всех обработчиков. Неизвестные ошибки логируются и отдаются как 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		res.ErrorWithDetails(c, http.StatusBadRequest, "validation failed", gin.H{
			"field":   validationErr.Field,
			"message": validationErr.Message,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		res.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		res.Error(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrUnauthenticated):
		res.Error(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrUnauthorized):
		res.Error(c, http.StatusForbidden, "operation not permitted")
	case errors.Is(err, domain.ErrPlanNotFound):
		res.Error(c, http.StatusNotFound, "subscription plan not found")
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		res.Error(c, http.StatusNotFound, "subscription not found")
	case errors.Is(err, domain.ErrUserNotFound):
		res.Error(c, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrVideoNotFound):
		res.Error(c, http.StatusNotFound, "video not found")
	case errors.Is(err, domain.ErrNotFound):
		res.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		res.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		res.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrExternalServiceUnavailable):
		log.Errorw("External service failure", "error", err)
		res.Error(c, http.StatusBadGateway, "upstream media service unavailable")
	default:
		log.Errorw("Unhandled error in HTTP handler", "error", err, "path", c.FullPath())
		res.Error(c, http.StatusInternalServerError, "internal server error")
	}
}

// uuidParam извлекает UUID из параметра пути. При невалидном значении
// отвечает 400 и возвращает false.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		res.Error(c, http.StatusBadRequest, "invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

// pageParams читает skip/limit из query-строки. Нормализация границ
// выполняется в сервисном слое.
func pageParams(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return skip, limit
}
