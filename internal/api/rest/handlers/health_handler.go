package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler отвечает на проверки живости сервиса.
type HealthHandler struct {
	version string
}

// NewHealthHandler создает новый обработчик health-чеков.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Check возвращает 200, если процесс жив.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}
