package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shotbox/shotbox/internal/domain/dto"
	"github.com/shotbox/shotbox/internal/domain/services"
)

// TagHandler handles HTTP requests for tag operations
type TagHandler struct {
	*BaseHandler
	tagService *services.TagService
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{
		BaseHandler: NewBaseHandler(),
		tagService:  tagService,
	}
}

// RegisterRoutes registers all tag routes
func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.POST("", h.CreateTag)
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
		tags.PUT("/:id", h.UpdateTag)
		tags.DELETE("/:id", h.DeleteTag)
	}
}

// CreateTag creates a new tag
// @Summary Create tag
// @Accept json
// @Produce json
// @Success 201 {object} models.Tag
// @Failure 409 {object} ErrorResponse "Name already in use"
// @Router /api/v1/tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid tag data", err.Error())
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), userCtx.UserID, req.Name, req.Color, req.IsSystemTag)
	if h.RespondServiceError(c, err) {
		return
	}

	h.RespondCreated(c, tag)
}

// ListTags lists the caller's tags with screenshot counts
// @Summary List tags
// @Produce json
// @Success 200 {object} []repositories.TagWithCount
// @Router /api/v1/tags [get]
func (h *TagHandler) ListTags(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	tags, err := h.tagService.ListTags(c.Request.Context(), userCtx.UserID)
	if h.RespondServiceError(c, err) {
		return
	}

	h.RespondSuccess(c, gin.H{"data": tags})
}

// GetTag retrieves a specific tag
// @Summary Get tag by ID
// @Produce json
// @Param id path string true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tags/{id} [get]
func (h *TagHandler) GetTag(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	tagID, ok := h.ValidateUUID(c, "tag ID", c.Param("id"))
	if !ok {
		return
	}

	tag, err := h.tagService.GetTag(c.Request.Context(), userCtx.UserID, tagID)
	if h.RespondServiceError(c, err) {
		return
	}

	h.RespondSuccess(c, tag)
}

// UpdateTag renames or recolors a tag
// @Summary Update tag
// @Accept json
// @Produce json
// @Param id path string true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Name already in use"
// @Router /api/v1/tags/{id} [put]
func (h *TagHandler) UpdateTag(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	tagID, ok := h.ValidateUUID(c, "tag ID", c.Param("id"))
	if !ok {
		return
	}

	var req dto.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid tag data", err.Error())
		return
	}

	tag, err := h.tagService.UpdateTag(c.Request.Context(), userCtx.UserID, tagID, req.Name, req.Color)
	if h.RespondServiceError(c, err) {
		return
	}

	h.RespondSuccess(c, tag)
}

// DeleteTag removes a tag and its associations
// @Summary Delete tag
// @Param id path string true "Tag ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tags/{id} [delete]
func (h *TagHandler) DeleteTag(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	tagID, ok := h.ValidateUUID(c, "tag ID", c.Param("id"))
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(c.Request.Context(), userCtx.UserID, tagID); h.RespondServiceError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}
