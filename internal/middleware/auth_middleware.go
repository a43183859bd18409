package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
	"github.com/videohub/videohub-api/pkg/res"
)

// ContextKey тип для ключей контекста во избежание коллизий.
type ContextKey string

const (
	// ContextPrincipalKey ключ для хранения аутентифицированного субъекта в контексте.
	ContextPrincipalKey ContextKey = "principal"
	authHeaderPrefix               = "Bearer "
)

// TokenValidator проверяет строку токена и возвращает его claims.
type TokenValidator interface {
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims полезная нагрузка access-токена.
type TokenClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// JWTMiddleware аутентифицирует запросы по заголовку Authorization.
type JWTMiddleware struct {
	log       *logger.Logger
	validator TokenValidator
}

func NewJWTMiddleware(log *logger.Logger, validator TokenValidator) *JWTMiddleware {
	return &JWTMiddleware{
		log:       log,
		validator: validator,
	}
}

// RequireAuth требует валидный токен и кладет Principal в контекст.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := m.authenticate(c)
		if err != nil {
			m.handleAuthError(c, err.Error())
			return
		}

		c.Set(string(ContextPrincipalKey), principal)
		m.log.Debugw("User authenticated via HTTP", "userID", principal.UserID)
		c.Next()
	}
}

// RequireAdmin требует валидный токен с правами администратора.
func (m *JWTMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := m.authenticate(c)
		if err != nil {
			m.handleAuthError(c, err.Error())
			return
		}

		if !principal.IsAdmin {
			m.log.Warnw("Admin access denied", "userID", principal.UserID, "path", c.Request.URL.Path)
			res.AbortError(c, http.StatusForbidden, "Admin privileges required")
			return
		}

		c.Set(string(ContextPrincipalKey), principal)
		c.Next()
	}
}

// OptionalAuth кладет Principal в контекст, если токен есть и валиден,
// но пропускает запрос и без него.
func (m *JWTMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, err := m.authenticate(c); err == nil {
			c.Set(string(ContextPrincipalKey), principal)
		}
		c.Next()
	}
}

func (m *JWTMiddleware) authenticate(c *gin.Context) (*domain.Principal, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization token")
	}

	tokenString := strings.TrimPrefix(authHeader, authHeaderPrefix)
	claims, err := m.validator.Validate(tokenString)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.New("invalid user ID (sub) in token")
	}

	return &domain.Principal{
		UserID:  userID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}, nil
}

func (m *JWTMiddleware) handleAuthError(c *gin.Context, message string) {
	m.log.Warnw("HTTP authentication failed", "path", c.Request.URL.Path, "error", message)
	res.AbortError(c, http.StatusUnauthorized, message)
}

// PrincipalFromContext извлекает аутентифицированного субъекта из контекста Gin.
func PrincipalFromContext(c *gin.Context) (*domain.Principal, bool) {
	value, ok := c.Get(string(ContextPrincipalKey))
	if !ok {
		return nil, false
	}
	principal, ok := value.(*domain.Principal)
	return principal, ok
}

// DefaultTokenValidator - реализация валидатора по умолчанию.
type DefaultTokenValidator struct {
	Secret []byte
}

func (v *DefaultTokenValidator) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, errors.New("malformed token")
		} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, errors.New("invalid token signature")
		} else if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, errors.New("token expired")
		} else {
			return nil, fmt.Errorf("invalid token: %w", err)
		}
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}
