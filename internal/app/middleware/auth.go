package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserContext holds the caller identity for the request.
type UserContext struct {
	UserID uuid.UUID `json:"user_id"`
}

// UserIDHeader identifies the caller. There is no credential check
// behind it; deployments that need real authentication terminate it at
// the proxy and inject this header.
const UserIDHeader = "X-User-ID"

// UserIdentityMiddleware extracts the caller's user id from the
// X-User-ID header and stores it in the gin context.
func UserIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(UserIDHeader)
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_user_id",
				"message": "X-User-ID header is required",
			})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(header)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_user_id",
				"message": "X-User-ID header must be a valid UUID",
			})
			c.Abort()
			return
		}

		userCtx := &UserContext{UserID: userID}
		c.Set("user", userCtx)
		c.Set("user_id", userID)

		c.Next()
	}
}

// GetUserContext retrieves user context from gin context
func GetUserContext(c *gin.Context) *UserContext {
	if userCtx, exists := c.Get("user"); exists {
		if user, ok := userCtx.(*UserContext); ok {
			return user
		}
	}
	return nil
}

// GetUserID retrieves user ID from gin context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}
