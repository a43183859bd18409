package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/middleware"
	"github.com/videohub/videohub-api/internal/service"
	"github.com/videohub/videohub-api/pkg/logger"
	"github.com/videohub/videohub-api/pkg/res"
)

// VideoHandler обрабатывает загрузку, каталог и просмотры видео.
type VideoHandler struct {
	videos service.VideoService
	log    *logger.Logger
}

// NewVideoHandler создает новый обработчик видео.
func NewVideoHandler(videos service.VideoService, log *logger.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, log: log}
}

// Upload выгружает медиафайл на хост и возвращает его атрибуты.
// Клиент затем создает запись каталога через Create с полученными URL.
// POST /api/v1/videos/upload
func (h *VideoHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		res.Error(c, http.StatusBadRequest, "file is required")
		return
	}

	resourceType := c.DefaultPostForm("resource_type", "video")
	if resourceType != "video" && resourceType != "image" {
		res.Error(c, http.StatusBadRequest, "resource_type must be video or image")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		res.Error(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.videos.UploadMedia(c.Request.Context(), file, fileHeader.Filename, resourceType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Create добавляет видео в каталог.
// POST /api/v1/videos
func (h *VideoHandler) Create(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.VideoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	video, err := h.videos.Create(c.Request.Context(), principal.UserID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("Video created", "video_id", video.ID, "uploader_id", principal.UserID)
	c.JSON(http.StatusCreated, video)
}

// Get возвращает одно видео.
// GET /api/v1/videos/:id
func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	video, err := h.videos.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// Update изменяет метаданные видео. Статус и признак featured
// доступны только администраторам.
// PATCH /api/v1/videos/:id
func (h *VideoHandler) Update(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.VideoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	video, err := h.videos.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// Delete удаляет видео из каталога и с медиа-хоста.
// DELETE /api/v1/videos/:id
func (h *VideoHandler) Delete(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.videos.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.NoContent(c)
}

// List возвращает страницу каталога с фильтрами.
// GET /api/v1/videos?search=&category=&tags=a,b&sort_by=views
func (h *VideoHandler) List(c *gin.Context) {
	skip, limit := pageParams(c)

	q := domain.VideoListQuery{
		Skip:     skip,
		Limit:    limit,
		Search:   c.Query("search"),
		Category: c.Query("category"),
		SortBy:   c.Query("sort_by"),
	}
	if rawTags := c.Query("tags"); rawTags != "" {
		for _, tag := range strings.Split(rawTags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				q.Tags = append(q.Tags, tag)
			}
		}
	}

	videos, err := h.videos.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// ListHot возвращает видео по убыванию вовлеченности.
// GET /api/v1/videos/hot
func (h *VideoHandler) ListHot(c *gin.Context) {
	skip, limit := pageParams(c)

	videos, err := h.videos.ListHot(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// ListTrending возвращает свежие видео по убыванию просмотров.
// GET /api/v1/videos/trending
func (h *VideoHandler) ListTrending(c *gin.Context) {
	skip, limit := pageParams(c)

	videos, err := h.videos.ListTrending(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// ListFeatured возвращает видео, отмеченные редакцией.
// GET /api/v1/videos/featured
func (h *VideoHandler) ListFeatured(c *gin.Context) {
	skip, limit := pageParams(c)

	videos, err := h.videos.ListFeatured(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// ListByUploader возвращает видео конкретного автора.
// GET /api/v1/videos/uploader/:id
func (h *VideoHandler) ListByUploader(c *gin.Context) {
	uploaderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(c)

	videos, err := h.videos.ListByUploader(c.Request.Context(), uploaderID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// Feed возвращает ленту из видео авторов, на которых подписан пользователь.
// GET /api/v1/videos/feed
func (h *VideoHandler) Feed(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	skip, limit := pageParams(c)

	videos, err := h.videos.ListFeed(c.Request.Context(), principal.UserID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// Recommendations возвращает подборку по истории просмотров пользователя.
// GET /api/v1/videos/recommendations
func (h *VideoHandler) Recommendations(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	skip, limit := pageParams(c)

	videos, err := h.videos.ListRecommended(c.Request.Context(), principal.UserID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// RecordView регистрирует просмотр. Доступно и анонимным пользователям:
// при наличии токена просмотр попадает также в историю.
// POST /api/v1/videos/:id/view
func (h *VideoHandler) RecordView(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var userID *uuid.UUID
	if principal, authenticated := middleware.PrincipalFromContext(c); authenticated {
		userID = &principal.UserID
	}

	if err := h.videos.RecordView(c.Request.Context(), id, userID, req.WatchDuration); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.Message(c, http.StatusOK, "view recorded")
}

// ViewStats возвращает агрегированную статистику просмотров видео.
// GET /api/v1/videos/:id/stats
func (h *VideoHandler) ViewStats(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.videos.ViewStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// WatchHistory возвращает историю просмотров пользователя.
// GET /api/v1/users/me/history
func (h *VideoHandler) WatchHistory(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	skip, limit := pageParams(c)

	history, err := h.videos.WatchHistory(c.Request.Context(), principal.UserID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
