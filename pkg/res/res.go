package res

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse представляет формат JSON-ответа для ошибок.
type ErrorResponse struct {
	Error     string `json:"error"`                // Сообщение об ошибке (для пользователя)
	ErrorCode int    `json:"error_code,omitempty"` // Код ошибки (для программной обработки)
	Details   any    `json:"details,omitempty"`    // Детали ошибки (например, ошибки валидации)
}

// Error отправляет JSON-ответ с ошибкой и заданным статусом.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message, ErrorCode: status})
}

// ErrorWithDetails отправляет ошибку с дополнительными деталями.
func ErrorWithDetails(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, ErrorCode: status, Details: details})
}

// AbortError отправляет ошибку и прерывает обработку запроса (для middleware).
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, ErrorCode: status})
}

// Message отправляет простой ответ с сообщением.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// NoContent отправляет пустой ответ 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
