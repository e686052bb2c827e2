package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserAuth requires a token that belongs to a shopper profile (usid > 0).
func UserAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := authenticate(c, secret, nil)
		if !ok {
			return
		}
		if id.USID <= 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user profile required"})
			return
		}
		c.Next()
	}
}

// OptionalAuth records the caller's identity when a valid token is present
// and lets anonymous requests through.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticate(c, secret, nil)
		if c.IsAborted() {
			return
		}
		c.Next()
	}
}
