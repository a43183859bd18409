package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/internal/service"
	"github.com/videohub/videohub-api/pkg/logger"
	"github.com/videohub/videohub-api/pkg/res"
)

// SocialHandler обрабатывает подписки на авторов, реакции и избранное.
type SocialHandler struct {
	social service.SocialService
	log    *logger.Logger
}

// NewSocialHandler создает новый обработчик социального графа.
func NewSocialHandler(social service.SocialService, log *logger.Logger) *SocialHandler {
	return &SocialHandler{social: social, log: log}
}

// Follow подписывает текущего пользователя на автора.
// POST /api/v1/users/:id/follow?notify=true
func (h *SocialHandler) Follow(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	notify, _ := strconv.ParseBool(c.DefaultQuery("notify", "true"))

	if err := h.social.Follow(c.Request.Context(), principal.UserID, targetID, notify); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "followed")
}

// Unfollow отписывает текущего пользователя от автора.
// DELETE /api/v1/users/:id/follow
func (h *SocialHandler) Unfollow(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.social.Unfollow(c.Request.Context(), principal.UserID, targetID); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "unfollowed")
}

// IsFollowing сообщает, подписан ли текущий пользователь на автора.
// GET /api/v1/users/:id/follow
func (h *SocialHandler) IsFollowing(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	following, err := h.social.IsFollowing(c.Request.Context(), principal.UserID, targetID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following})
}

// Followers возвращает подписчиков пользователя.
// GET /api/v1/users/:id/followers
func (h *SocialHandler) Followers(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(c)

	users, err := h.social.Followers(c.Request.Context(), userID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Following возвращает авторов, на которых подписан пользователь.
// GET /api/v1/users/:id/following
func (h *SocialHandler) Following(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(c)

	users, err := h.social.Following(c.Request.Context(), userID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ToggleLike переключает реакцию на видео: повторная отправка той же
// реакции снимает ее, противоположная — заменяет.
// POST /api/v1/videos/:id/like
func (h *SocialHandler) ToggleLike(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.social.ToggleLike(c.Request.Context(), principal.UserID, videoID, req.LikeType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// LikeStatus возвращает текущую реакцию пользователя на видео.
// GET /api/v1/videos/:id/like
func (h *SocialHandler) LikeStatus(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	status, err := h.social.LikeStatus(c.Request.Context(), principal.UserID, videoID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// SaveVideo добавляет видео в избранное.
// POST /api/v1/videos/:id/save
func (h *SocialHandler) SaveVideo(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.social.SaveVideo(c.Request.Context(), principal.UserID, videoID); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "saved")
}

// UnsaveVideo убирает видео из избранного.
// DELETE /api/v1/videos/:id/save
func (h *SocialHandler) UnsaveVideo(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.social.UnsaveVideo(c.Request.Context(), principal.UserID, videoID); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "removed from saved")
}

// SavedVideos возвращает избранные видео пользователя.
// GET /api/v1/users/me/saved
func (h *SocialHandler) SavedVideos(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	skip, limit := pageParams(c)

	videos, err := h.social.SavedVideos(c.Request.Context(), principal.UserID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// IsSaved сообщает, находится ли видео в избранном пользователя.
// GET /api/v1/videos/:id/save
func (h *SocialHandler) IsSaved(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	saved, err := h.social.IsSaved(c.Request.Context(), principal.UserID, videoID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}
