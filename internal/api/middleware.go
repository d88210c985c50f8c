package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/service"
	"github.com/rongwang/expense-tracker/internal/session"
)

// AuthMiddleware returns a Gin middleware for authentication.
// A valid token attaches its session to the request context.
func AuthMiddleware(svc service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the JWT token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authentication required")
			return
		}

		// Check if the Authorization header starts with "Bearer "
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Invalid token format")
			return
		}

		sess, err := svc.ValidateSession(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, common.ErrInvalidSession) {
				unauthorized(c, "Invalid token")
				return
			}
			respondError(c, err)
			c.Abort()
			return
		}

		// Set the session on the request context and the user ID for logging
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess))
		c.Set("userId", sess.UserID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Status:  "error",
		Code:    "UNAUTHORIZED",
		Message: message,
	})
	c.Abort()
}
