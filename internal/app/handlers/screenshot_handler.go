package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shotbox/shotbox/internal/app/middleware"
	"github.com/shotbox/shotbox/internal/domain/dto"
	"github.com/shotbox/shotbox/internal/domain/services"
	"github.com/shotbox/shotbox/internal/infrastructure/database/models"
)

// ScreenshotHandler handles HTTP requests for screenshot operations
type ScreenshotHandler struct {
	*BaseHandler
	screenshotService *services.ScreenshotService
	ocrService        *services.OcrService
}

// NewScreenshotHandler creates a new screenshot handler
func NewScreenshotHandler(screenshotService *services.ScreenshotService, ocrService *services.OcrService) *ScreenshotHandler {
	return &ScreenshotHandler{
		BaseHandler:       NewBaseHandler(),
		screenshotService: screenshotService,
		ocrService:        ocrService,
	}
}

// RegisterRoutes registers all screenshot routes
func (h *ScreenshotHandler) RegisterRoutes(router *gin.RouterGroup) {
	screenshots := router.Group("/screenshots")
	{
		screenshots.POST("/upload", h.UploadScreenshot)
		screenshots.GET("", h.ListScreenshots)
		screenshots.GET("/:id", h.GetScreenshot)
		screenshots.DELETE("/:id", h.DeleteScreenshot)
		screenshots.POST("/:id/ocr", h.TriggerOcr)
		screenshots.POST("/:id/tags", h.AttachTags)
		screenshots.DELETE("/:id/tags/:tagId", h.DetachTag)
	}
}

// UploadScreenshot handles screenshot upload
// @Summary Upload a screenshot
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} dto.ScreenshotResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse "File too large"
// @Router /api/v1/screenshots/upload [post]
func (h *ScreenshotHandler) UploadScreenshot(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.RespondBadRequest(c, "No file uploaded or invalid file", err.Error())
		return
	}
	defer file.Close()

	var req dto.CreateScreenshotRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RespondBadRequest(c, "Invalid form data", err.Error())
		return
	}

	params := services.CreateScreenshotParams{
		UserID:     userCtx.UserID,
		FileName:   header.Filename,
		FileReader: file,
		FileSize:   header.Size,
		DeviceType: req.DeviceType,
		SourceApp:  req.SourceApp,
	}

	if req.TakenAt != "" {
		takenAt, err := parseDate(req.TakenAt)
		if err != nil {
			h.RespondBadRequest(c, "taken_at must be an RFC 3339 timestamp")
			return
		}
		params.TakenAt = &takenAt
	}

	screenshot, err := h.screenshotService.CreateScreenshot(c.Request.Context(), params)
	if h.RespondServiceError(c, err) {
		return
	}

	h.RespondCreated(c, dto.NewScreenshotResponse(screenshot))
}

// ListScreenshots lists screenshots with filtering and pagination
// @Summary List screenshots
// @Produce json
// @Param q query string false "Text to match against extracted OCR text"
// @Param tags query string false "Comma-separated tag IDs, matched as OR"
// @Param date_from query string false "RFC 3339 lower bound"
// @Param date_to query string false "RFC 3339 upper bound"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} PaginatedResponse
// @Router /api/v1/screenshots [get]
func (h *ScreenshotHandler) ListScreenshots(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	query := dto.ScreenshotQuery{
		Query:     c.Query("q"),
		Tags:      getStringArrayParam(c, "tags"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		Limit:     getIntParam(c, "limit", 0),
		Offset:    getIntParam(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	filter, err := services.NewScreenshotFilter(query)
	if h.RespondServiceError(c, err) {
		return
	}

	result, err := h.screenshotService.Search(c.Request.Context(), userCtx.UserID, filter)
	if h.RespondServiceError(c, err) {
		return
	}

	h.RespondSuccess(c, PaginatedResponse{
		Data: dto.NewScreenshotResponses(result.Screenshots),
		Pagination: Pagination{
			Total:   result.Total,
			Limit:   filter.Limit,
			Offset:  filter.Offset,
			HasMore: result.HasMore,
		},
	})
}

// GetScreenshot retrieves a specific screenshot
// @Summary Get screenshot by ID
// @Produce json
// @Param id path string true "Screenshot ID"
// @Success 200 {object} dto.ScreenshotResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/screenshots/{id} [get]
func (h *ScreenshotHandler) GetScreenshot(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	screenshot, ok := h.ownedScreenshot(c, userCtx)
	if !ok {
		return
	}

	h.RespondSuccess(c, dto.NewScreenshotResponse(screenshot))
}

// DeleteScreenshot soft-deletes a screenshot
// @Summary Delete screenshot
// @Param id path string true "Screenshot ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/screenshots/{id} [delete]
func (h *ScreenshotHandler) DeleteScreenshot(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	screenshot, ok := h.ownedScreenshot(c, userCtx)
	if !ok {
		return
	}

	if err := h.screenshotService.DeleteScreenshot(c.Request.Context(), screenshot.ID); h.RespondServiceError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// TriggerOcr runs OCR for a screenshot
// @Summary Trigger OCR processing
// @Accept json
// @Produce json
// @Param id path string true "Screenshot ID"
// @Success 200 {object} models.OcrContent
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "OCR engine failure"
// @Router /api/v1/screenshots/{id}/ocr [post]
func (h *ScreenshotHandler) TriggerOcr(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	screenshot, ok := h.ownedScreenshot(c, userCtx)
	if !ok {
		return
	}

	var req dto.TriggerOcrRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.RespondBadRequest(c, "Invalid request body", err.Error())
			return
		}
	}

	content, err := h.ocrService.Trigger(c.Request.Context(), screenshot.ID, req.Force)
	if h.RespondServiceError(c, err) {
		return
	}

	h.RespondSuccess(c, content)
}

// AttachTags attaches tags to a screenshot
// @Summary Attach tags
// @Accept json
// @Param id path string true "Screenshot ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/screenshots/{id}/tags [post]
func (h *ScreenshotHandler) AttachTags(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	screenshot, ok := h.ownedScreenshot(c, userCtx)
	if !ok {
		return
	}

	var req dto.AttachTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "tag_ids must be a non-empty list of UUIDs", err.Error())
		return
	}

	// Binding has already validated each entry as a UUID.
	tagIDs := parseUUIDs(req.TagIDs)

	if err := h.screenshotService.AttachTags(c.Request.Context(), screenshot.ID, tagIDs); h.RespondServiceError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// DetachTag removes one tag from a screenshot
// @Summary Detach a tag
// @Param id path string true "Screenshot ID"
// @Param tagId path string true "Tag ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/screenshots/{id}/tags/{tagId} [delete]
func (h *ScreenshotHandler) DetachTag(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	screenshot, ok := h.ownedScreenshot(c, userCtx)
	if !ok {
		return
	}

	tagID, ok := h.ValidateUUID(c, "tag ID", c.Param("tagId"))
	if !ok {
		return
	}

	if err := h.screenshotService.DetachTag(c.Request.Context(), screenshot.ID, tagID); h.RespondServiceError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// ownedScreenshot resolves the :id path parameter to a screenshot the
// caller owns. A screenshot belonging to another user reads as not
// found rather than forbidden.
func (h *ScreenshotHandler) ownedScreenshot(c *gin.Context, userCtx *middleware.UserContext) (*models.Screenshot, bool) {
	screenshotID, ok := h.ValidateUUID(c, "screenshot ID", c.Param("id"))
	if !ok {
		return nil, false
	}

	screenshot, err := h.screenshotService.GetScreenshot(c.Request.Context(), screenshotID)
	if err != nil {
		h.RespondServiceError(c, err)
		return nil, false
	}
	if screenshot.UserID != userCtx.UserID {
		h.RespondNotFound(c, "Screenshot not found")
		return nil, false
	}

	return screenshot, true
}
