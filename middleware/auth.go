package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/retreat/auth"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/utils"
)

// Context keys set by JWTAuth.
const (
	KeySubject  = "sub"
	KeyRole     = "role"
	KeyUsername = "username"
)

func JWTAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			utils.RespondError(c, &models.Error{Kind: models.KindUnauthorized, Message: "missing bearer token"})
			return
		}
		claims, err := issuer.ParseValidate(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			utils.RespondError(c, &models.Error{Kind: models.KindUnauthorized, Message: "invalid or expired token"})
			return
		}
		c.Set(KeySubject, claims.Sub)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyUsername, claims.Username)
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(KeyRole)
		if _, ok := allowed[role]; !ok {
			utils.RespondError(c, &models.Error{Kind: models.KindForbidden, Message: "role " + strings.Join(roles, " or ") + " required"})
			return
		}
		c.Next()
	}
}
