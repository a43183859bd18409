package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videohub/videohub-api/pkg/logger"
)

var testSecret = []byte("test-secret")

func issueToken(t *testing.T, secret []byte, userID uuid.UUID, isAdmin bool, ttl time.Duration) string {
	t.Helper()
	claims := TokenClaims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	mw := NewJWTMiddleware(logger.NewNop(), &DefaultTokenValidator{Secret: testSecret})

	router := gin.New()
	router.GET("/protected", mw.RequireAuth(), func(c *gin.Context) {
		principal, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID})
	})
	router.GET("/admin", mw.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/optional", mw.OptionalAuth(), func(c *gin.Context) {
		_, authenticated := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})
	return router
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	router := newAuthRouter()

	t.Run("valid token", func(t *testing.T) {
		token := issueToken(t, testSecret, uuid.New(), false, time.Hour)
		assert.Equal(t, http.StatusOK, doRequest(router, "/protected", token).Code)
	})

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/protected", "").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := issueToken(t, testSecret, uuid.New(), false, -time.Minute)
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/protected", token).Code)
	})

	t.Run("wrong signature", func(t *testing.T) {
		token := issueToken(t, []byte("other-secret"), uuid.New(), false, time.Hour)
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/protected", token).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/protected", "not.a.jwt").Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	router := newAuthRouter()

	t.Run("admin allowed", func(t *testing.T) {
		token := issueToken(t, testSecret, uuid.New(), true, time.Hour)
		assert.Equal(t, http.StatusOK, doRequest(router, "/admin", token).Code)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		token := issueToken(t, testSecret, uuid.New(), false, time.Hour)
		assert.Equal(t, http.StatusForbidden, doRequest(router, "/admin", token).Code)
	})

	t.Run("anonymous unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/admin", "").Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	router := newAuthRouter()

	t.Run("with token", func(t *testing.T) {
		token := issueToken(t, testSecret, uuid.New(), false, time.Hour)
		w := doRequest(router, "/optional", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":true`)
	})

	t.Run("without token", func(t *testing.T) {
		w := doRequest(router, "/optional", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("invalid token ignored", func(t *testing.T) {
		w := doRequest(router, "/optional", "broken")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})
}
