package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
	"github.com/sanumxxx/timetable-api/pkg/response"
)

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowedRoles[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Editors allows anyone able to mutate the timetable.
func Editors() gin.HandlerFunc {
	return RBAC(models.RoleAdmin, models.RoleEditor)
}

// Admins allows administrators only.
func Admins() gin.HandlerFunc {
	return RBAC(models.RoleAdmin)
}
