package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// RequireRole restricts access to specific roles.
// It MUST be used AFTER RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role context missing"})
			return
		}

		roleStr, _ := userRole.(string)

		// Admin overrides everything
		if roleStr == RoleAdmin {
			c.Next()
			return
		}

		for _, role := range allowedRoles {
			if roleStr == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Forbidden: You lack the required permissions.",
		})
	}
}
