package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tableease/contracts/api"
	"tableease/pkg/rbac"
)

// RequireCapability gates a route on the caller's role capability.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": api.MsgNotAuthenticated})
			c.Abort()
			return
		}

		if err := rbac.CheckCapability(role, capability); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": api.MsgForbidden})
			c.Abort()
			return
		}

		c.Next()
	}
}
