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

// PlaylistHandler обрабатывает плейлисты и их содержимое.
type PlaylistHandler struct {
	playlists service.PlaylistService
	log       *logger.Logger
}

// NewPlaylistHandler создает новый обработчик плейлистов.
func NewPlaylistHandler(playlists service.PlaylistService, log *logger.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, log: log}
}

// Create создает плейлист.
// POST /api/v1/playlists
func (h *PlaylistHandler) Create(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.PlaylistCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	playlist, err := h.playlists.Create(c.Request.Context(), principal.UserID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, playlist)
}

// Get возвращает плейлист. Приватные видны только владельцу.
// GET /api/v1/playlists/:id
func (h *PlaylistHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// Принципал может отсутствовать: публичные плейлисты доступны всем
	principal, _ := middleware.PrincipalFromContext(c)

	playlist, err := h.playlists.Get(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// Update изменяет атрибуты плейлиста.
// PATCH /api/v1/playlists/:id
func (h *PlaylistHandler) Update(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.PlaylistUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	playlist, err := h.playlists.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// Delete удаляет плейлист.
// DELETE /api/v1/playlists/:id
func (h *PlaylistHandler) Delete(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.playlists.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.NoContent(c)
}

// ListByUser возвращает плейлисты пользователя. Приватные включаются
// только для владельца.
// GET /api/v1/users/:id/playlists
func (h *PlaylistHandler) ListByUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(c)

	principal, _ := middleware.PrincipalFromContext(c)

	playlists, err := h.playlists.ListByUser(c.Request.Context(), principal, userID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"playlists": playlists})
}

// AddVideo добавляет видео в конец плейлиста.
// POST /api/v1/playlists/:id/videos/:videoId
func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	playlistID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	videoID, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}

	if err := h.playlists.AddVideo(c.Request.Context(), principal, playlistID, videoID); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "video added to playlist")
}

// RemoveVideo убирает видео из плейлиста с уплотнением позиций.
// DELETE /api/v1/playlists/:id/videos/:videoId
func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	playlistID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	videoID, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}

	if err := h.playlists.RemoveVideo(c.Request.Context(), principal, playlistID, videoID); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "video removed from playlist")
}

// Videos возвращает содержимое плейлиста в заданном порядке.
// GET /api/v1/playlists/:id/videos
func (h *PlaylistHandler) Videos(c *gin.Context) {
	playlistID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(c)

	principal, _ := middleware.PrincipalFromContext(c)

	videos, err := h.playlists.Videos(c.Request.Context(), principal, playlistID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}
