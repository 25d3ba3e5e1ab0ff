package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shotbox/shotbox/internal/app/middleware"
	"github.com/shotbox/shotbox/internal/domain/services"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	config *HandlerConfig
}

// NewBaseHandler creates a new base handler
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{
		config: NewHandlerConfig(),
	}
}

// AuthenticateUser extracts and validates user context
func (b *BaseHandler) AuthenticateUser(c *gin.Context) (*middleware.UserContext, bool) {
	userCtx := middleware.GetUserContext(c)
	if userCtx == nil {
		b.RespondUnauthorized(c, "User identification required")
		return nil, false
	}
	return userCtx, true
}

// RespondError sends a standardized error response
func (b *BaseHandler) RespondError(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	response := ErrorResponse{
		Error:   errorCode,
		Message: message,
		Status:  statusCode,
	}

	if len(details) > 0 && b.config.EnableDebugErrors {
		response.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// RespondUnauthorized sends a standardized unauthorized response
func (b *BaseHandler) RespondUnauthorized(c *gin.Context, message string) {
	b.RespondError(c, http.StatusUnauthorized, "unauthorized", message)
}

// RespondBadRequest sends a standardized bad request response
func (b *BaseHandler) RespondBadRequest(c *gin.Context, message string, details ...string) {
	b.RespondError(c, http.StatusBadRequest, "invalid_request", message, details...)
}

// RespondNotFound sends a standardized not found response
func (b *BaseHandler) RespondNotFound(c *gin.Context, message string) {
	b.RespondError(c, http.StatusNotFound, "not_found", message)
}

// RespondConflict sends a standardized conflict response
func (b *BaseHandler) RespondConflict(c *gin.Context, message string) {
	b.RespondError(c, http.StatusConflict, "conflict", message)
}

// RespondInternalError sends a standardized internal server error response
func (b *BaseHandler) RespondInternalError(c *gin.Context, message string, details ...string) {
	b.RespondError(c, http.StatusInternalServerError, "internal_error", message, details...)
}

// RespondSuccess sends a standardized success response
func (b *BaseHandler) RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a standardized created response
func (b *BaseHandler) RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// ValidateUUID validates UUID parameter and responds with error if invalid
func (b *BaseHandler) ValidateUUID(c *gin.Context, paramName, uuidStr string) (uuid.UUID, bool) {
	id, err := uuid.Parse(uuidStr)
	if err != nil {
		b.RespondBadRequest(c, "Invalid "+paramName+" format")
		return uuid.Nil, false
	}
	return id, true
}

// RespondServiceError maps domain errors onto HTTP responses. It
// returns false when err was nil and nothing was written.
func (b *BaseHandler) RespondServiceError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		b.RespondBadRequest(c, ve.Error())
	case errors.Is(err, services.ErrScreenshotNotFound):
		b.RespondNotFound(c, "Screenshot not found")
	case errors.Is(err, services.ErrTagNotFound):
		b.RespondNotFound(c, err.Error())
	case errors.Is(err, services.ErrAssociationNotFound):
		b.RespondNotFound(c, "Tag is not attached to this screenshot")
	case errors.Is(err, services.ErrTagExists):
		b.RespondConflict(c, "A tag with this name already exists")
	case errors.Is(err, services.ErrFileTooLarge):
		b.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error())
	case errors.Is(err, services.ErrUnsupportedFormat):
		b.RespondError(c, http.StatusUnsupportedMediaType, "unsupported_format", err.Error())
	case errors.Is(err, services.ErrOcrFailed):
		b.RespondError(c, http.StatusBadGateway, "ocr_failed", "OCR processing failed")
	default:
		b.RespondInternalError(c, "Request failed", err.Error())
	}
	return true
}
