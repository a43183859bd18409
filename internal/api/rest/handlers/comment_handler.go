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

// CommentHandler обрабатывает комментарии и ответы.
type CommentHandler struct {
	comments service.CommentService
	log      *logger.Logger
}

// NewCommentHandler создает новый обработчик комментариев.
func NewCommentHandler(comments service.CommentService, log *logger.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

// Create добавляет комментарий или ответ к видео.
// POST /api/v1/videos/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	videoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), principal.UserID, videoID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Update редактирует текст комментария. Разрешено только автору.
// PATCH /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	commentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), principal, commentID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete удаляет комментарий вместе с ответами.
// DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	commentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), principal, commentID); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.NoContent(c)
}

// ListByVideo возвращает корневые комментарии видео.
// GET /api/v1/videos/:id/comments
func (h *CommentHandler) ListByVideo(c *gin.Context) {
	videoID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(c)

	comments, err := h.comments.ListByVideo(c.Request.Context(), videoID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// ListReplies возвращает ответы на комментарий.
// GET /api/v1/comments/:id/replies
func (h *CommentHandler) ListReplies(c *gin.Context) {
	parentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(c)

	replies, err := h.comments.ListReplies(c.Request.Context(), parentID, skip, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

// Pin закрепляет комментарий под видео.
// POST /api/v1/comments/:id/pin
func (h *CommentHandler) Pin(c *gin.Context) {
	h.setPinned(c, true)
}

// Unpin снимает закрепление комментария.
// DELETE /api/v1/comments/:id/pin
func (h *CommentHandler) Unpin(c *gin.Context) {
	h.setPinned(c, false)
}

func (h *CommentHandler) setPinned(c *gin.Context, pinned bool) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		res.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	commentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.comments.SetPinned(c.Request.Context(), principal, commentID, pinned); err != nil {
		respondError(c, h.log, err)
		return
	}

	if pinned {
		res.Message(c, http.StatusOK, "comment pinned")
		return
	}
	res.Message(c, http.StatusOK, "comment unpinned")
}
