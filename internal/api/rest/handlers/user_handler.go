package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/integration/cloudinary"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/internal/service"
	"github.com/videohub/videohub-api/pkg/logger"
	"github.com/videohub/videohub-api/pkg/res"
)

// mediaUploader выгружает файлы на медиа-хост.
type mediaUploader interface {
	UploadMedia(ctx context.Context, file io.Reader, filename, resourceType string) (*cloudinary.UploadResult, error)
}

// UserHandler обрабатывает регистрацию, вход и управление профилем.
type UserHandler struct {
	users    service.UserService
	uploader mediaUploader
	log      *logger.Logger
}

// NewUserHandler создает новый обработчик пользователей.
func NewUserHandler(users service.UserService, uploader mediaUploader, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, uploader: uploader, log: log}
}

// Register создает новую учетную запись.
// POST /api/v1/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("User registered", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusCreated, user)
}

// Login проверяет учетные данные и выдает JWT.
// POST /api/v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me возвращает профиль аутентифицированного пользователя.
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe обновляет поля профиля.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), principal.UserID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadAvatar принимает multipart-файл, выгружает его на медиа-хост
// и сохраняет как аватар пользователя.
// POST /api/v1/users/me/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		res.Error(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		res.Error(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.uploader.UploadMedia(c.Request.Context(), file, fileHeader.Filename, "image")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.users.SetProfilePicture(c.Request.Context(), principal.UserID, result.SecureURL)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteMe удаляет учетную запись вместе с медиафайлами профиля.
// DELETE /api/v1/users/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), principal.UserID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("Account deleted", "user_id", principal.UserID)
	res.NoContent(c)
}

// Get возвращает публичный профиль по идентификатору.
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetByUsername возвращает публичный профиль по имени пользователя.
// GET /api/v1/channels/:username
func (h *UserHandler) GetByUsername(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		res.Error(c, http.StatusBadRequest, "username is required")
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
