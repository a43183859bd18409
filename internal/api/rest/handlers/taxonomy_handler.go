package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/internal/service"
	"github.com/videohub/videohub-api/pkg/logger"
	"github.com/videohub/videohub-api/pkg/res"
)

// TaxonomyHandler обрабатывает категории и теги каталога.
type TaxonomyHandler struct {
	taxonomy service.TaxonomyService
	log      *logger.Logger
}

// NewTaxonomyHandler создает новый обработчик таксономии.
func NewTaxonomyHandler(taxonomy service.TaxonomyService, log *logger.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy, log: log}
}

// ListCategories возвращает активные категории каталога.
// GET /api/v1/categories
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))

	categories, err := h.taxonomy.ListCategories(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory возвращает категорию по slug.
// GET /api/v1/categories/:slug
func (h *TaxonomyHandler) GetCategory(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		res.Error(c, http.StatusBadRequest, "slug is required")
		return
	}

	category, err := h.taxonomy.GetCategoryBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateCategory создает категорию.
// POST /api/v1/admin/categories
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var req domain.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	category, err := h.taxonomy.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory обновляет категорию.
// PUT /api/v1/admin/categories/:id
func (h *TaxonomyHandler) UpdateCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req domain.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	category, err := h.taxonomy.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory удаляет категорию.
// DELETE /api/v1/admin/categories/:id
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.taxonomy.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.NoContent(c)
}

// ListTags возвращает теги по убыванию популярности.
// GET /api/v1/tags?limit=50
func (h *TaxonomyHandler) ListTags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	tags, err := h.taxonomy.ListTags(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// CreateTag создает тег.
// POST /api/v1/admin/tags
func (h *TaxonomyHandler) CreateTag(c *gin.Context) {
	var req domain.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tag, err := h.taxonomy.CreateTag(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, tag)
}

// DeleteTag удаляет тег.
// DELETE /api/v1/admin/tags/:id
func (h *TaxonomyHandler) DeleteTag(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.taxonomy.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	res.NoContent(c)
}
