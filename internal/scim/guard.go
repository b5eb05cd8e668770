package scim

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth validates the shared-secret bearer token on every SCIM
// request. A missing header and a mismatched token produce the same 401
// body, so an unauthenticated probe learns nothing about which check
// failed.
func BearerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorUnauthorized("Unauthorized"))
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorUnauthorized("Unauthorized"))
			return
		}

		c.Next()
	}
}
