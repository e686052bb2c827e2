package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/logger"
	"eveningmall/internal/models"
	"eveningmall/internal/security"
)

// IdentityKey is the gin context key holding the caller's security.Identity.
const IdentityKey = "identity"

// AuthGuard validates the bearer token and, when roles are given, requires
// the token's role to be one of them.
func AuthGuard(secret string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, secret, allowedRoles); !ok {
			return
		}
		c.Next()
	}
}

// authenticate aborts the request and returns false when the token is missing,
// invalid or carries a role outside allowedRoles.
func authenticate(c *gin.Context, secret string, allowedRoles []string) (security.Identity, bool) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return security.Identity{}, false
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return security.Identity{}, false
	}

	id, err := security.ParseToken(secret, parts[1])
	if err != nil {
		logger.Get("auth").WithError(err).Debug("token rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return security.Identity{}, false
	}

	if len(allowedRoles) > 0 {
		match := false
		for _, r := range allowedRoles {
			if id.Role == r {
				match = true
				break
			}
		}
		if !match {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return security.Identity{}, false
		}
	}

	c.Set(IdentityKey, id)
	return id, true
}

func AdminAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret, models.RoleAdmin)
}

// IdentityFrom returns the identity set by AuthGuard.
func IdentityFrom(c *gin.Context) (security.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return security.Identity{}, false
	}
	id, ok := v.(security.Identity)
	return id, ok
}
