package middleware

import (
	"github.com/gin-gonic/gin"

	"marketplace/internal/apperror"
	"marketplace/internal/models"
)

func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			AbortWithError(c, apperror.NewUnauthenticated("Please authenticate", nil))
			return
		}

		if _, ok := roleSet[identity.Role]; !ok {
			AbortWithError(c, apperror.NewForbidden("Access denied"))
			return
		}

		c.Next()
	}
}
