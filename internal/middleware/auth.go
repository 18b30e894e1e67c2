package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"patient-studies-server/internal/accounts"
	"patient-studies-server/internal/models"
	"patient-studies-server/internal/utils"
)

const userContextKey = "user"

// AuthMiddleware creates a middleware for opaque token authentication.
// Accepts "Token <key>" and "Bearer <key>".
func AuthMiddleware(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 {
			utils.Unauthorized(c, "Invalid token header.")
			c.Abort()
			return
		}
		scheme := strings.ToLower(parts[0])
		if scheme != "token" && scheme != "bearer" {
			utils.Unauthorized(c, "Invalid token header.")
			c.Abort()
			return
		}

		user, err := svc.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			utils.Unauthorized(c, "Invalid token.")
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set(userContextKey, user)
		c.Next()
	}
}

// StaffOnly rejects authenticated users that are not staff.
// It should be used *after* AuthMiddleware.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			utils.InternalServerError(c, "User not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}
		if !user.IsStaff && !user.IsSuperuser {
			utils.Forbidden(c, "You do not have permission to perform this action.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserFromContext returns the authenticated user, if any.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
